package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/generation"
	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/repository"
	appErr "github.com/command-deck/engine/pkg/errors"
	"github.com/command-deck/engine/pkg/logger"
)

// GenerationEnqueuer schedules background document generation and returns the job id.
type GenerationEnqueuer interface {
	EnqueueDocumentGeneration(ctx context.Context, projectID uuid.UUID, docType models.DocumentType) (string, error)
}

// DocumentService stores project documents and produces generated ones.
type DocumentService interface {
	CreateDocument(ctx context.Context, projectID, userID uuid.UUID, input *CreateDocumentInput) (*models.Document, error)
	GetDocument(ctx context.Context, documentID, userID uuid.UUID) (*models.Document, error)
	ListDocuments(ctx context.Context, projectID, userID uuid.UUID, types ...models.DocumentType) ([]models.Document, error)

	// RequestGeneration queues generation of a TECH_SPEC or USER_GUIDE document.
	RequestGeneration(ctx context.Context, projectID, userID uuid.UUID, docType models.DocumentType) (string, error)
	// GenerateDocument runs generation now. Called by the worker.
	GenerateDocument(ctx context.Context, projectID uuid.UUID, docType models.DocumentType) (*models.Document, error)
}

type CreateDocumentInput struct {
	Type    models.DocumentType
	Title   string
	Summary string
	Content string
}

type documentService struct {
	projectRepo   repository.ProjectRepository
	blueprintRepo repository.BlueprintRepository
	docRepo       repository.DocumentRepository
	generator     generation.Generator
	enqueuer      GenerationEnqueuer
}

func NewDocumentService(
	projectRepo repository.ProjectRepository,
	blueprintRepo repository.BlueprintRepository,
	docRepo repository.DocumentRepository,
	generator generation.Generator,
	enqueuer GenerationEnqueuer,
) DocumentService {
	return &documentService{
		projectRepo:   projectRepo,
		blueprintRepo: blueprintRepo,
		docRepo:       docRepo,
		generator:     generator,
		enqueuer:      enqueuer,
	}
}

var _ DocumentService = (*documentService)(nil)

func (s *documentService) CreateDocument(ctx context.Context, projectID, userID uuid.UUID, input *CreateDocumentInput) (*models.Document, error) {
	logger.L().Info("create document", zap.String("project_id", projectID.String()), zap.String("type", string(input.Type)))
	if !input.Type.Valid() {
		return nil, appErr.New(appErr.CodeInvalid, "unknown document type")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, appErr.New(appErr.CodeInvalid, "title is required")
	}
	if err := models.ValidateDocumentContent(input.Type, input.Content); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid document content")
	}
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}

	d := &models.Document{
		ProjectID: projectID,
		Type:      input.Type,
		Title:     input.Title,
		Summary:   input.Summary,
		Content:   input.Content,
	}
	if err := s.docRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *documentService) GetDocument(ctx context.Context, documentID, userID uuid.UUID) (*models.Document, error) {
	var d models.Document
	if err := s.docRepo.GetByID(ctx, documentID, &d); err != nil {
		return nil, err
	}
	if _, err := ownedProject(ctx, s.projectRepo, d.ProjectID, userID); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *documentService) ListDocuments(ctx context.Context, projectID, userID uuid.UUID, types ...models.DocumentType) ([]models.Document, error) {
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}
	return s.docRepo.ListByProject(ctx, projectID, types...)
}

func (s *documentService) RequestGeneration(ctx context.Context, projectID, userID uuid.UUID, docType models.DocumentType) (string, error) {
	logger.L().Info("document generation requested", zap.String("project_id", projectID.String()), zap.String("type", string(docType)))
	if !docType.Generated() {
		return "", appErr.New(appErr.CodeInvalid, "only TECH_SPEC and USER_GUIDE documents can be generated")
	}
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return "", err
	}
	if s.enqueuer == nil {
		return "", appErr.New(appErr.CodeUnavailable, "document generation queue is not configured")
	}

	id, err := s.enqueuer.EnqueueDocumentGeneration(ctx, projectID, docType)
	if err != nil {
		logger.L().Error("enqueue document generation failed", zap.String("project_id", projectID.String()), zap.Error(err))
		return "", appErr.Wrap(err, appErr.CodeInternal, "enqueue document generation failed")
	}
	return id, nil
}

// GenerateDocument feeds the latest blueprint, or failing that the latest PRD, to
// the model and stores the answer as a new document.
func (s *documentService) GenerateDocument(ctx context.Context, projectID uuid.UUID, docType models.DocumentType) (*models.Document, error) {
	if !docType.Generated() {
		return nil, appErr.New(appErr.CodeInvalid, "only TECH_SPEC and USER_GUIDE documents can be generated")
	}
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}

	source, label, err := s.generationContext(ctx, &p)
	if err != nil {
		return nil, err
	}

	var content, title string
	switch docType {
	case models.DocTechSpec:
		content, err = s.generator.GenerateTechnicalSpec(ctx, source)
		title = p.Name + " Technical Specification"
	case models.DocUserGuide:
		content, err = s.generator.GenerateUserGuide(ctx, source)
		title = p.Name + " User Guide"
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, appErr.New(appErr.CodeUnavailable, "model returned empty content")
	}

	d := &models.Document{
		ProjectID: projectID,
		Type:      docType,
		Title:     title,
		Summary:   "Generated from " + label,
		Content:   content,
	}
	if err := s.docRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	logger.L().Info("document generated",
		zap.String("project_id", projectID.String()),
		zap.String("document_id", d.ID.String()),
		zap.String("type", string(docType)))
	return d, nil
}

func (s *documentService) generationContext(ctx context.Context, p *models.Project) (string, string, error) {
	var b models.Blueprint
	err := s.blueprintRepo.GetLatestByProject(ctx, p.ID, &b)
	if err == nil {
		return fmt.Sprintf("Project: %s\nDescription: %s\nBlueprint v%d:\n%s", p.Name, p.Description, b.Version, string(b.Content)),
			fmt.Sprintf("blueprint v%d", b.Version), nil
	}
	if !appErr.IsCode(err, appErr.CodeNotFound) {
		return "", "", err
	}

	var prd models.Document
	err = s.docRepo.GetLatestByType(ctx, p.ID, models.DocPRD, &prd)
	if err == nil {
		return fmt.Sprintf("Project: %s\nDescription: %s\nPRD:\n%s", p.Name, p.Description, prd.Content), "PRD", nil
	}
	if appErr.IsCode(err, appErr.CodeNotFound) {
		return "", "", appErr.New(appErr.CodeInvalid, "project has no blueprint or PRD to generate from")
	}
	return "", "", err
}
