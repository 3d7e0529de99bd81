package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/command-deck/engine/internal/auth"
	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/repository"
	appErr "github.com/command-deck/engine/pkg/errors"
	"github.com/command-deck/engine/pkg/logger"
	"github.com/command-deck/engine/pkg/utils"
)

const (
	MinPasswordLength = 8

	signupTokenTTL   = 24 * time.Hour
	recoveryTokenTTL = time.Hour
	tokenBytes       = 32
)

var errInvalidCredentials = appErr.New(appErr.CodeUnauthorized, "Invalid login credentials")

// Session is an issued login.
type Session struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// AuthService covers sign-up, sign-in, one-time link tokens and password changes.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, userID uuid.UUID)
	ForgotPassword(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, password string) error
	// ExchangeCode redeems a one-time code of any kind for a session.
	ExchangeCode(ctx context.Context, code string) (*Session, error)
	// VerifyOTP redeems a one-time token of the given kind for a session.
	VerifyOTP(ctx context.Context, tokenHash string, kind models.AuthTokenKind) (*Session, error)
}

type AuthConfig struct {
	// SiteURL is the public origin used to build links in emails.
	SiteURL string
}

type authService struct {
	users    repository.UserRepository
	tokens   repository.AuthTokenRepository
	sessions *auth.Sessions
	events   auth.Publisher
	mailer   Mailer
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.AuthTokenRepository,
	sessions *auth.Sessions,
	events auth.Publisher,
	mailer Mailer,
	cfg AuthConfig,
) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		events:   events,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
	}
}

var _ AuthService = (*authService)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return appErr.New(appErr.CodeInvalid, fmt.Sprintf("Password should be at least %d characters.", MinPasswordLength))
	}
	return nil
}

func (s *authService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, appErr.New(appErr.CodeInvalid, "Invalid email address.")
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	var existing models.User
	err := s.users.GetByEmail(ctx, email, &existing)
	if err == nil {
		return nil, appErr.New(appErr.CodeConflict, "User already registered")
	}
	if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}

	ph, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}
	user := &models.User{Email: email, PasswordHash: string(ph)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	raw, err := s.issueToken(ctx, user.ID, models.TokenSignup, signupTokenTTL)
	if err != nil {
		return nil, err
	}
	link := s.callbackURL(url.Values{"token_hash": {raw}, "type": {string(models.TokenSignup)}})
	if err := s.mailer.Send(ctx, Message{To: email, Subject: "Confirm your signup", Link: link}); err != nil {
		logger.L().Error("send signup email failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	logger.L().Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	var user models.User
	if err := s.users.GetByEmail(ctx, normalizeEmail(email), &user); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return s.startSession(&user)
}

func (s *authService) Logout(_ context.Context, userID uuid.UUID) {
	s.events.Publish(auth.Event{Type: auth.EventSignedOut, UserID: userID})
}

// ForgotPassword emails a recovery link. Unknown addresses are not reported, so the
// caller cannot probe which emails are registered.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return appErr.New(appErr.CodeInvalid, "Email is required.")
	}

	var user models.User
	if err := s.users.GetByEmail(ctx, email, &user); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			logger.L().Info("password recovery requested for unknown email")
			return nil
		}
		return err
	}

	raw, err := s.issueToken(ctx, user.ID, models.TokenRecovery, recoveryTokenTTL)
	if err != nil {
		return err
	}
	link := s.callbackURL(url.Values{"code": {raw}, "next": {"/update-password"}})
	if err := s.mailer.Send(ctx, Message{To: email, Subject: "Reset your password", Link: link}); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "Could not send recovery email")
	}
	logger.L().Info("password recovery issued", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) UpdatePassword(ctx context.Context, userID uuid.UUID, password string) error {
	if err := checkPassword(password); err != nil {
		return err
	}
	ph, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}
	if err := s.users.UpdatePassword(ctx, userID, string(ph)); err != nil {
		return err
	}
	s.events.Publish(auth.Event{Type: auth.EventUserUpdated, UserID: userID})
	logger.L().Info("password updated", zap.String("user_id", userID.String()))
	return nil
}

func (s *authService) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	return s.redeem(ctx, code, "")
}

func (s *authService) VerifyOTP(ctx context.Context, tokenHash string, kind models.AuthTokenKind) (*Session, error) {
	switch kind {
	case models.TokenSignup, models.TokenRecovery, models.TokenMagicLink:
	default:
		return nil, appErr.New(appErr.CodeInvalid, "unsupported token type")
	}
	return s.redeem(ctx, tokenHash, kind)
}

func (s *authService) redeem(ctx context.Context, raw string, kind models.AuthTokenKind) (*Session, error) {
	if raw == "" {
		return nil, repository.ErrTokenUnusable
	}
	now := s.now().UTC()
	tok, err := s.tokens.Consume(ctx, utils.HashToken(raw), kind, now)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.users.GetByID(ctx, tok.UserID, &user); err != nil {
		return nil, err
	}

	switch tok.Kind {
	case models.TokenSignup:
		if user.EmailConfirmedAt == nil {
			if err := s.users.ConfirmEmail(ctx, user.ID, now); err != nil {
				return nil, err
			}
			user.EmailConfirmedAt = &now
		}
	case models.TokenRecovery:
		s.events.Publish(auth.Event{Type: auth.EventPasswordRecovery, UserID: user.ID, At: now})
	}
	return s.startSession(&user)
}

func (s *authService) startSession(user *models.User) (*Session, error) {
	token, exp, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "sign session failed")
	}
	s.events.Publish(auth.Event{Type: auth.EventSignedIn, UserID: user.ID})
	return &Session{AccessToken: token, TokenType: "Bearer", ExpiresAt: exp, User: user}, nil
}

// issueToken stores the hash of a fresh random token and returns the raw value.
func (s *authService) issueToken(ctx context.Context, userID uuid.UUID, kind models.AuthTokenKind, ttl time.Duration) (string, error) {
	raw, err := utils.NewToken(tokenBytes)
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "generate token failed")
	}
	t := &models.AuthToken{
		UserID:    userID,
		Kind:      kind,
		TokenHash: utils.HashToken(raw),
		ExpiresAt: s.now().UTC().Add(ttl),
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return "", err
	}
	return raw, nil
}

func (s *authService) callbackURL(q url.Values) string {
	return s.cfg.SiteURL + "/auth/callback?" + q.Encode()
}
