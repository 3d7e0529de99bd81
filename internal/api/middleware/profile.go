package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/command-deck/engine/pkg/logger"
)

// SetupProfilePath is where users without a profile are sent.
const SetupProfilePath = "/setup-profile"

// ProfileChecker reports whether a user has completed their profile.
type ProfileChecker interface {
	HasProfile(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequireProfile redirects users without a profile row to siteURL+SetupProfilePath.
// The lookup runs on every request. Must be mounted after Auth.
func RequireProfile(profiles ProfileChecker, siteURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := GetUserID(r.Context())
			if uid == uuid.Nil {
				unauthorized(w)
				return
			}
			ok, err := profiles.HasProfile(r.Context(), uid)
			if err != nil {
				logger.L().Error("profile lookup failed", zap.String("user_id", uid.String()), zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !ok {
				http.Redirect(w, r, siteURL+SetupProfilePath, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
