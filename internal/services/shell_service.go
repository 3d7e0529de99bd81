package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/repository"
	"github.com/command-deck/engine/internal/workflow"
	appErr "github.com/command-deck/engine/pkg/errors"
	"github.com/command-deck/engine/pkg/logger"
)

// Shell is what the dashboard frame renders: the header's user summary and the
// sidebar's stage navigation.
type Shell struct {
	Profile    *models.Profile    `json:"profile"`
	Project    *models.Project    `json:"project,omitempty"`
	Navigation []workflow.NavItem `json:"navigation"`
}

// StageView is one stage page of a project.
type StageView struct {
	Page      workflow.StagePage `json:"page"`
	Project   *models.Project    `json:"project"`
	Unlocked  bool               `json:"unlocked"`
	Documents []models.Document  `json:"documents"`
	// Sprints summarizes the newest BACKLOG document, when the stage shows one.
	Sprints []SprintSummary `json:"sprints,omitempty"`
}

type SprintSummary struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Status   models.SprintStatus `json:"status"`
	Tasks    int                 `json:"tasks"`
	Progress float64             `json:"progress"`
}

type ShellService interface {
	// Shell builds the frame for userID. With a project id, navigation reflects that
	// project's current stage.
	Shell(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) (*Shell, error)
	StagePage(ctx context.Context, projectID, userID uuid.UUID, stage workflow.Stage) (*StageView, error)
}

type shellService struct {
	profiles repository.ProfileRepository
	projects repository.ProjectRepository
	docs     repository.DocumentRepository
}

func NewShellService(profiles repository.ProfileRepository, projects repository.ProjectRepository, docs repository.DocumentRepository) ShellService {
	return &shellService{profiles: profiles, projects: projects, docs: docs}
}

func (s *shellService) Shell(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) (*Shell, error) {
	var prof models.Profile
	if err := s.profiles.GetByID(ctx, userID, &prof); err != nil {
		return nil, err
	}
	out := &Shell{Profile: &prof}

	current := workflow.First()
	if projectID != nil {
		p, err := ownedProject(ctx, s.projects, *projectID, userID)
		if err != nil {
			return nil, err
		}
		out.Project = p
		current = p.CurrentStage
	}
	out.Navigation = workflow.Navigation(current)
	return out, nil
}

func (s *shellService) StagePage(ctx context.Context, projectID, userID uuid.UUID, stage workflow.Stage) (*StageView, error) {
	page, ok := workflow.Page(stage)
	if !ok {
		return nil, appErr.New(appErr.CodeNotFound, "stage not found")
	}
	p, err := ownedProject(ctx, s.projects, projectID, userID)
	if err != nil {
		return nil, err
	}

	view := &StageView{
		Page:      page,
		Project:   p,
		Unlocked:  !p.CurrentStage.Before(stage),
		Documents: []models.Document{},
	}
	if len(page.DocumentTypes) > 0 {
		types := make([]models.DocumentType, 0, len(page.DocumentTypes))
		for _, t := range page.DocumentTypes {
			types = append(types, models.DocumentType(t))
		}
		docs, err := s.docs.ListByProject(ctx, projectID, types...)
		if err != nil {
			return nil, err
		}
		view.Documents = docs
		view.Sprints = backlogSummary(docs)
	}
	return view, nil
}

// backlogSummary reads the first BACKLOG document in docs (newest first).
func backlogSummary(docs []models.Document) []SprintSummary {
	for _, d := range docs {
		if d.Type != models.DocBacklog {
			continue
		}
		sprints, err := models.DecodeBacklog(d.Content)
		if err != nil {
			logger.L().Warn("stored backlog unreadable", zap.String("document_id", d.ID.String()), zap.Error(err))
			return nil
		}
		out := make([]SprintSummary, 0, len(sprints))
		for _, sp := range sprints {
			out = append(out, SprintSummary{
				ID:       sp.ID,
				Name:     sp.Name,
				Status:   sp.Status,
				Tasks:    len(sp.Tasks),
				Progress: sp.Progress(),
			})
		}
		return out
	}
	return nil
}
