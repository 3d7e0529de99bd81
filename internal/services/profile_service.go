package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/auth"
	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/repository"
	"github.com/command-deck/engine/internal/validators"
	"github.com/command-deck/engine/pkg/logger"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	SaveProfile(ctx context.Context, userID uuid.UUID, input *ProfileInput) (*models.Profile, error)
	// HasProfile is checked on every guarded request; the answer is never cached.
	HasProfile(ctx context.Context, userID uuid.UUID) (bool, error)
}

type ProfileInput struct {
	FullName  string `validate:"required,max=120"`
	Role      string `validate:"max=64"`
	Company   string `validate:"max=120"`
	AvatarURL string `validate:"omitempty,url"`
}

type profileService struct {
	repo   repository.ProfileRepository
	events auth.Publisher
}

func NewProfileService(repo repository.ProfileRepository, events auth.Publisher) ProfileService {
	return &profileService{repo: repo, events: events}
}

func (s *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := s.repo.GetByID(ctx, userID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *profileService) SaveProfile(ctx context.Context, userID uuid.UUID, input *ProfileInput) (*models.Profile, error) {
	if err := validators.New().Struct(input); err != nil {
		return nil, invalid(err)
	}
	p := &models.Profile{
		ID:        userID,
		FullName:  input.FullName,
		Role:      input.Role,
		Company:   input.Company,
		AvatarURL: input.AvatarURL,
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.events.Publish(auth.Event{Type: auth.EventUserUpdated, UserID: userID})
	logger.L().Info("profile saved", zap.String("user_id", userID.String()))
	return s.GetProfile(ctx, userID)
}

func (s *profileService) HasProfile(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, userID)
}
