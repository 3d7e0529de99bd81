package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/command-deck/engine/internal/api/handlers"
	mw "github.com/command-deck/engine/internal/api/middleware"
	"github.com/command-deck/engine/internal/auth"
	"github.com/command-deck/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.UseNop()
	os.Exit(m.Run())
}

type noProfiles struct{}

func (noProfiles) HasProfile(context.Context, uuid.UUID) (bool, error) { return false, nil }

func TestRouterGuards(t *testing.T) {
	sessions := auth.NewSessions([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	r := NewRouter(Dependencies{
		Sessions:      sessions,
		Profiles:      noProfiles{},
		SiteURL:       "https://deck.example.com",
		HealthHandler: handlers.NewHealthHandler(nil),
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/ai/generate", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	tok, _, err := sessions.Issue(uuid.New())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "https://deck.example.com/setup-profile", rr.Header().Get("Location"))
}

func TestRouterClientIdentity(t *testing.T) {
	hit := func(trustProxy bool) *mw.RateLimiter {
		limiter := mw.NewRateLimiter(1, 1)
		r := NewRouter(Dependencies{
			RateLimiter:   limiter,
			TrustProxy:    trustProxy,
			HealthHandler: handlers.NewHealthHandler(nil),
		})
		for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.RemoteAddr = "192.0.2.10:443"
			req.Header.Set("X-Forwarded-For", ip)
			r.ServeHTTP(httptest.NewRecorder(), req)
		}
		return limiter
	}

	assert.Equal(t, 1, hit(false).Buckets(), "forwarding headers ignored by default")
	assert.Equal(t, 3, hit(true).Buckets(), "proxy-reported clients get their own bucket")
}
