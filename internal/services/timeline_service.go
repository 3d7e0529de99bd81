package services

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/repository"
	"github.com/command-deck/engine/pkg/logger"
)

// TimelineService builds a project's history feed from its blueprints and audits.
type TimelineService interface {
	ProjectHistory(ctx context.Context, projectID, userID uuid.UUID) ([]models.TimelineEvent, error)
}

type timelineService struct {
	projectRepo   repository.ProjectRepository
	blueprintRepo repository.BlueprintRepository
	auditRepo     repository.AuditLogRepository
}

func NewTimelineService(projectRepo repository.ProjectRepository, blueprintRepo repository.BlueprintRepository, auditRepo repository.AuditLogRepository) TimelineService {
	return &timelineService{projectRepo: projectRepo, blueprintRepo: blueprintRepo, auditRepo: auditRepo}
}

var _ TimelineService = (*timelineService)(nil)

// ProjectHistory returns every blueprint and audit of the project as one feed,
// newest first. A failed read aborts the whole call. The two reads are separate
// queries, so a record written between them may be missing from the feed.
func (s *timelineService) ProjectHistory(ctx context.Context, projectID, userID uuid.UUID) ([]models.TimelineEvent, error) {
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}

	blueprints, err := s.blueprintRepo.ListByProject(ctx, projectID)
	if err != nil {
		logger.L().Error("history: list blueprints failed", zap.String("project_id", projectID.String()), zap.Error(err))
		return nil, err
	}
	audits, err := s.auditRepo.ListByProject(ctx, projectID)
	if err != nil {
		logger.L().Error("history: list audits failed", zap.String("project_id", projectID.String()), zap.Error(err))
		return nil, err
	}

	return MergeTimeline(blueprints, audits), nil
}

// MergeTimeline projects both record sets onto timeline events and stable-sorts
// them by date, newest first. Input order does not matter.
func MergeTimeline(blueprints []models.Blueprint, audits []models.AuditLog) []models.TimelineEvent {
	events := make([]models.TimelineEvent, 0, len(blueprints)+len(audits))
	for _, b := range blueprints {
		events = append(events, models.BlueprintEvent(b))
	}
	for _, a := range audits {
		events = append(events, models.AuditEvent(a))
	}
	slices.SortStableFunc(events, func(x, y models.TimelineEvent) int {
		return y.Date.Compare(x.Date)
	})
	return events
}
