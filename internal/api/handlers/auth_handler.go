package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/api/types"
	"github.com/command-deck/engine/internal/auth"
	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/services"
	appErr "github.com/command-deck/engine/pkg/errors"
	"github.com/command-deck/engine/pkg/logger"
)

const (
	// DefaultNextPath is where a successful auth callback lands without ?next.
	DefaultNextPath = "/dashboard"
	// AuthErrorPath is where a failed auth callback lands.
	AuthErrorPath = "/auth/auth-code-error"
)

type AuthHandler struct {
	auth    services.AuthService
	siteURL string
	secure  bool
}

// NewAuthHandler builds auth endpoints. siteURL is the public origin redirects
// point at; cookies are marked Secure when it is https.
func NewAuthHandler(svc services.AuthService, siteURL string) *AuthHandler {
	return &AuthHandler{auth: svc, siteURL: siteURL, secure: strings.HasPrefix(siteURL, "https://")}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"id": u.ID, "email": u.Email})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.setSessionCookie(w, sess.AccessToken, sess.ExpiresAt)
	writeOK(w, http.StatusOK, sess)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context(), userID(r))
	h.setSessionCookie(w, "", time.Unix(0, 0))
	writeOK(w, http.StatusOK, nil)
}

// ForgotPassword answers {success:true} or {error}.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req types.ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, types.ActionResult{Error: "Invalid request body"})
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		writeJSON(w, appErr.HTTPStatus(err), types.ActionResult{Error: actionMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, types.ActionResult{Success: true})
}

// UpdatePassword answers {success:true} or {error} for the signed-in user.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req types.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, types.ActionResult{Error: "Invalid request body"})
		return
	}
	if err := h.auth.UpdatePassword(r.Context(), userID(r), req.Password); err != nil {
		writeJSON(w, appErr.HTTPStatus(err), types.ActionResult{Error: actionMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, types.ActionResult{Success: true})
}

func actionMessage(err error) string {
	if ae := types.FromAppError(err); ae != nil && ae.Code != string(appErr.CodeUnknown) {
		return ae.Message
	}
	return err.Error()
}

// Callback redeems ?code= or ?token_hash=&type= and redirects to ?next on success
// or to the auth error page on failure.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	next := safeNext(q.Get("next"))

	var (
		sess *services.Session
		err  error
	)
	switch {
	case q.Get("code") != "":
		sess, err = h.auth.ExchangeCode(r.Context(), q.Get("code"))
	case q.Get("token_hash") != "" && q.Get("type") != "":
		sess, err = h.auth.VerifyOTP(r.Context(), q.Get("token_hash"), models.AuthTokenKind(q.Get("type")))
	default:
		err = appErr.New(appErr.CodeInvalid, "missing code")
	}
	if err != nil {
		logger.L().Info("auth callback rejected", zap.Error(err))
		http.Redirect(w, r, h.siteURL+AuthErrorPath, http.StatusTemporaryRedirect)
		return
	}

	h.setSessionCookie(w, sess.AccessToken, sess.ExpiresAt)
	http.Redirect(w, r, h.siteURL+next, http.StatusTemporaryRedirect)
}

// safeNext keeps redirects on this site: only absolute local paths are accepted.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return DefaultNextPath
	}
	if u, err := url.Parse(next); err != nil || u.IsAbs() || u.Host != "" {
		return DefaultNextPath
	}
	return next
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string, expires time.Time) {
	c := &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}
