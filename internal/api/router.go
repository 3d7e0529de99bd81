package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/command-deck/engine/internal/api/handlers"
	mw "github.com/command-deck/engine/internal/api/middleware"
	"github.com/command-deck/engine/internal/auth"
)

type Dependencies struct {
	Sessions    *auth.Sessions
	Profiles    mw.ProfileChecker
	RateLimiter *mw.RateLimiter
	// SiteURL is the dashboard origin. CORS allows it with credentials and every
	// redirect targets it.
	SiteURL string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP. Enable
	// only behind a proxy that sets those headers itself.
	TrustProxy bool

	HealthHandler    *handlers.HealthHandler
	AuthHandler      *handlers.AuthHandler
	InviteHandler    *handlers.InviteHandler
	AIHandler        *handlers.AIHandler
	ProjectsHandler  *handlers.ProjectsHandler
	DocumentsHandler *handlers.DocumentsHandler
	ProfileHandler   *handlers.ProfileHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	if dep.TrustProxy {
		r.Use(chimid.RealIP)
	}
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS(dep.SiteURL))
	if dep.RateLimiter != nil {
		r.Use(dep.RateLimiter.Handler)
	}
	r.Use(chimid.Compress(5))

	r.Get("/healthz", dep.HealthHandler.Liveness)
	r.Get("/readyz", dep.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/auth/callback", dep.AuthHandler.Callback)

	r.Group(func(ai chi.Router) {
		ai.Use(mw.Auth(dep.Sessions))
		ai.Post("/api/ai/generate", dep.AIHandler.Generate)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/invites", dep.InviteHandler.Request)

		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/forgot-password", dep.AuthHandler.ForgotPassword)

			ar.Group(func(signed chi.Router) {
				signed.Use(mw.Auth(dep.Sessions))
				signed.Post("/password", dep.AuthHandler.UpdatePassword)
				signed.Post("/logout", dep.AuthHandler.Logout)
			})
		})

		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.Sessions))

			// Reachable before a profile exists.
			protected.Get("/profile", dep.ProfileHandler.Get)
			protected.Put("/profile", dep.ProfileHandler.Save)

			protected.Group(func(pr chi.Router) {
				pr.Use(mw.RequireProfile(dep.Profiles, dep.SiteURL))

				pr.Get("/shell", dep.ProfileHandler.Shell)
				pr.Get("/documents/{docID}", dep.DocumentsHandler.Get)

				pr.Route("/projects", func(p chi.Router) {
					p.Get("/", dep.ProjectsHandler.List)
					p.Post("/", dep.ProjectsHandler.Create)

					p.Route("/{id}", func(one chi.Router) {
						one.Get("/", dep.ProjectsHandler.Get)
						one.Patch("/", dep.ProjectsHandler.Update)
						one.Put("/stage", dep.ProjectsHandler.SetStage)
						one.Post("/advance", dep.ProjectsHandler.Advance)
						one.Post("/complete", dep.ProjectsHandler.Complete)
						one.Get("/history", dep.ProjectsHandler.History)
						one.Get("/stages/{stage}", dep.ProfileHandler.StagePage)

						one.Get("/blueprints", dep.ProjectsHandler.ListBlueprints)
						one.Post("/blueprints", dep.ProjectsHandler.CreateBlueprint)
						one.Get("/blueprints/{version}", dep.ProjectsHandler.GetBlueprint)

						one.Get("/audits", dep.ProjectsHandler.ListAudits)
						one.Post("/audits", dep.ProjectsHandler.CreateAudit)

						one.Get("/design-session", dep.ProjectsHandler.GetDesignSession)
						one.Put("/design-session", dep.ProjectsHandler.SaveDesignSession)

						one.Get("/documents", dep.DocumentsHandler.List)
						one.Post("/documents", dep.DocumentsHandler.Create)
						one.Post("/documents/generate", dep.DocumentsHandler.Generate)
					})
				})
			})
		})
	})

	return r
}
