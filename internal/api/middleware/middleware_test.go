package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/command-deck/engine/internal/auth"
	"github.com/command-deck/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.UseNop()
	os.Exit(m.Run())
}

type stubProfiles struct {
	has   map[uuid.UUID]bool
	err   error
	calls int
}

func (s *stubProfiles) HasProfile(_ context.Context, id uuid.UUID) (bool, error) {
	s.calls++
	return s.has[id], s.err
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(GetUserID(r.Context()).String()))
}

func TestAuthAcceptsBearerAndCookie(t *testing.T) {
	sessions := auth.NewSessions([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	uid := uuid.New()
	tok, _, err := sessions.Issue(uid)
	require.NoError(t, err)
	h := Auth(sessions)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, uid.String(), rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: tok})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireProfile(t *testing.T) {
	withProfile := uuid.New()
	without := uuid.New()
	profiles := &stubProfiles{has: map[uuid.UUID]bool{withProfile: true}}
	h := RequireProfile(profiles, "https://deck.example.com")(http.HandlerFunc(okHandler))

	serve := func(uid uuid.UUID) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req = req.WithContext(WithUserID(req.Context(), uid))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	rr := serve(without)
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "https://deck.example.com/setup-profile", rr.Header().Get("Location"))

	rr = serve(withProfile)
	assert.Equal(t, http.StatusOK, rr.Code)

	serve(withProfile)
	assert.Equal(t, 3, profiles.calls, "checked on every request")

	profiles.err = errors.New("db down")
	rr = serve(withProfile)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	h := l.Handler(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	l.idle = 0
	l.Sweep()
	assert.Empty(t, l.visitors)
}

func TestRateLimiterIgnoresForwardedFor(t *testing.T) {
	l := NewRateLimiter(1, 1)
	h := l.Handler(http.HandlerFunc(okHandler))

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
	assert.Equal(t, 1, l.Buckets())
}

func TestRecoveryAndRequestID(t *testing.T) {
	h := RequestID(Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}
