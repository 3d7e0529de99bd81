package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/repository"
	"github.com/command-deck/engine/internal/validators"
	"github.com/command-deck/engine/internal/workflow"
	appErr "github.com/command-deck/engine/pkg/errors"
	"github.com/command-deck/engine/pkg/logger"
)

// ProjectService owns projects, their lifecycle stage and their design artifacts.
type ProjectService interface {
	// Project CRUD
	CreateProject(ctx context.Context, userID uuid.UUID, input *CreateProjectInput) (*models.Project, error)
	GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	UpdateProject(ctx context.Context, projectID, userID uuid.UUID, updates *UpdateProjectInput) (*models.Project, error)

	// Lifecycle
	SetStage(ctx context.Context, projectID, userID uuid.UUID, stage workflow.Stage) (*models.Project, error)
	AdvanceStage(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error)
	CompleteProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error)

	// Blueprints
	SaveBlueprint(ctx context.Context, projectID, userID uuid.UUID, content json.RawMessage) (*models.Blueprint, error)
	GetLatestBlueprint(ctx context.Context, projectID, userID uuid.UUID) (*models.Blueprint, error)
	GetBlueprintVersion(ctx context.Context, projectID, userID uuid.UUID, version int) (*models.Blueprint, error)
	ListBlueprints(ctx context.Context, projectID, userID uuid.UUID) ([]models.Blueprint, error)

	// Audits
	RecordAudit(ctx context.Context, projectID, userID uuid.UUID, input *RecordAuditInput) (*models.AuditLog, error)
	ListAudits(ctx context.Context, projectID, userID uuid.UUID) ([]models.AuditLog, error)

	// Design session
	GetDesignSession(ctx context.Context, projectID, userID uuid.UUID) (*models.DesignSession, error)
	SaveDesignSession(ctx context.Context, projectID, userID uuid.UUID, input *DesignSessionInput) (*models.DesignSession, error)
}

type CreateProjectInput struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=5000"`
}

type UpdateProjectInput struct {
	Name        *string `validate:"omitempty,min=1,max=200"`
	Description *string `validate:"omitempty,max=5000"`
}

type RecordAuditInput struct {
	Findings  json.RawMessage
	RiskScore int `validate:"gte=0,lte=100"`
}

type DesignSessionInput struct {
	CurrentDesignDoc string
	CurrentStep      int `validate:"gte=0"`
}

type projectService struct {
	projectRepo   repository.ProjectRepository
	blueprintRepo repository.BlueprintRepository
	auditRepo     repository.AuditLogRepository
	sessionRepo   repository.DesignSessionRepository
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	blueprintRepo repository.BlueprintRepository,
	auditRepo repository.AuditLogRepository,
	sessionRepo repository.DesignSessionRepository,
) ProjectService {
	return &projectService{
		projectRepo:   projectRepo,
		blueprintRepo: blueprintRepo,
		auditRepo:     auditRepo,
		sessionRepo:   sessionRepo,
	}
}

// Ensure interfaces are satisfied at compile time
var _ ProjectService = (*projectService)(nil)

// ownedProject loads a project and checks it belongs to userID.
func ownedProject(ctx context.Context, repo repository.ProjectRepository, projectID, userID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := repo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	return &p, nil
}

func invalid(err error) error {
	return appErr.New(appErr.CodeInvalid, validators.Message(err))
}

// CreateProject creates a new project for the given user at the first stage.
func (s *projectService) CreateProject(ctx context.Context, userID uuid.UUID, input *CreateProjectInput) (*models.Project, error) {
	logger.L().Info("create project called", zap.String("user_id", userID.String()), zap.String("name", input.Name))
	if err := validators.New().Struct(input); err != nil {
		return nil, invalid(err)
	}

	p := &models.Project{
		UserID:       userID,
		Name:         input.Name,
		Description:  input.Description,
		CurrentStage: workflow.First(),
	}
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.L().Info("project created", zap.String("project_id", p.ID.String()), zap.String("user_id", userID.String()))
	return p, nil
}

func (s *projectService) GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	logger.L().Debug("get project", zap.String("project_id", projectID.String()), zap.String("user_id", userID.String()))
	return ownedProject(ctx, s.projectRepo, projectID, userID)
}

func (s *projectService) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	logger.L().Debug("list projects", zap.String("user_id", userID.String()))
	return s.projectRepo.ListByUser(ctx, userID)
}

func (s *projectService) UpdateProject(ctx context.Context, projectID, userID uuid.UUID, updates *UpdateProjectInput) (*models.Project, error) {
	logger.L().Info("update project", zap.String("project_id", projectID.String()), zap.String("user_id", userID.String()))
	if err := validators.New().Struct(updates); err != nil {
		return nil, invalid(err)
	}
	p, err := ownedProject(ctx, s.projectRepo, projectID, userID)
	if err != nil {
		return nil, err
	}

	if updates.Name != nil {
		p.Name = *updates.Name
	}
	if updates.Description != nil {
		p.Description = *updates.Description
	}
	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetStage moves the project to any stage. Completed projects may still move;
// whether that is allowed is decided outside this service.
func (s *projectService) SetStage(ctx context.Context, projectID, userID uuid.UUID, stage workflow.Stage) (*models.Project, error) {
	if !stage.Valid() {
		return nil, appErr.New(appErr.CodeInvalid, "unknown stage")
	}
	p, err := ownedProject(ctx, s.projectRepo, projectID, userID)
	if err != nil {
		return nil, err
	}
	return s.moveTo(ctx, p, stage)
}

// AdvanceStage moves the project to the stage after its current one.
func (s *projectService) AdvanceStage(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	p, err := ownedProject(ctx, s.projectRepo, projectID, userID)
	if err != nil {
		return nil, err
	}
	next, ok := p.CurrentStage.Next()
	if !ok {
		return nil, appErr.New(appErr.CodeInvalid, "project is already at the final stage").
			WithMeta("stage", string(p.CurrentStage))
	}
	return s.moveTo(ctx, p, next)
}

func (s *projectService) moveTo(ctx context.Context, p *models.Project, stage workflow.Stage) (*models.Project, error) {
	from := p.CurrentStage
	if err := s.projectRepo.UpdateStage(ctx, p.ID, stage); err != nil {
		return nil, err
	}
	p.CurrentStage = stage
	logger.L().Info("project stage changed",
		zap.String("project_id", p.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(stage)))
	return p, nil
}

func (s *projectService) CompleteProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	p, err := ownedProject(ctx, s.projectRepo, projectID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.MarkCompleted(ctx, p.ID); err != nil {
		return nil, err
	}
	p.IsCompleted = true
	logger.L().Info("project completed", zap.String("project_id", p.ID.String()))
	return p, nil
}
