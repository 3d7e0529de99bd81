package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/repository"
	"github.com/command-deck/engine/pkg/logger"
	"github.com/command-deck/engine/pkg/metrics"
)

// Invite outcomes, also used as the metric label.
const (
	InviteCreated   = "created"
	InviteDuplicate = "duplicate"
	InviteInvalid   = "invalid"
	InviteFailed    = "failed"
)

const (
	MsgInviteInvalid   = "Invalid email address."
	MsgInviteCreated   = "Thanks! Your invite request has been received."
	MsgInviteDuplicate = "Your invite request has already been received."
	MsgInviteFailed    = "Could not submit your request. Please try again."
	MsgSystemError     = "A system error occurred. Please try again later."
)

// InviteResult is the body returned to the invite form.
type InviteResult struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Outcome string `json:"-"`
}

// InviteService records waitlist requests.
type InviteService interface {
	RequestInvite(ctx context.Context, email string) InviteResult
}

type inviteService struct {
	repo repository.InviteRepository
}

func NewInviteService(repo repository.InviteRepository) InviteService {
	return &inviteService{repo: repo}
}

// RequestInvite stores email on the waitlist. The only check is that it contains
// "@". A repeat submission is reported as success.
func (s *inviteService) RequestInvite(ctx context.Context, email string) InviteResult {
	res := s.requestInvite(ctx, strings.TrimSpace(email))
	metrics.InviteRequestsTotal.WithLabelValues(res.Outcome).Inc()
	return res
}

func (s *inviteService) requestInvite(ctx context.Context, email string) InviteResult {
	if email == "" || !strings.Contains(email, "@") {
		return InviteResult{Message: MsgInviteInvalid, Outcome: InviteInvalid}
	}

	created, err := s.repo.InsertIgnore(ctx, email)
	if err != nil {
		logger.L().Error("invite insert failed", zap.Error(err))
		return InviteResult{Message: MsgInviteFailed, Outcome: InviteFailed}
	}
	if !created {
		logger.L().Info("duplicate invite request")
		return InviteResult{Message: MsgInviteDuplicate, Success: true, Outcome: InviteDuplicate}
	}
	logger.L().Info("invite request stored")
	return InviteResult{Message: MsgInviteCreated, Success: true, Outcome: InviteCreated}
}
