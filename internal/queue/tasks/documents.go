package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/services"
	"github.com/command-deck/engine/pkg/logger"
	"github.com/command-deck/engine/pkg/metrics"
)

const (
	// TypeGenerateDocument asks the worker to generate a TECH_SPEC or USER_GUIDE document.
	TypeGenerateDocument = "document:generate"

	// QueueDocuments is the asynq queue generation tasks are placed on.
	QueueDocuments = "documents"

	// generateTimeout caps a single generation job, model call included.
	generateTimeout = 5 * time.Minute
)

// GenerateDocumentPayload is the task payload for document generation.
type GenerateDocumentPayload struct {
	ProjectID    string `json:"project_id"`
	DocumentType string `json:"document_type"`
}

// NewGenerateDocumentTask builds a generation task. Generation is never retried.
func NewGenerateDocumentTask(projectID uuid.UUID, docType models.DocumentType) (*asynq.Task, error) {
	pb, err := json.Marshal(GenerateDocumentPayload{ProjectID: projectID.String(), DocumentType: string(docType)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGenerateDocument, pb,
		asynq.MaxRetry(0),
		asynq.Queue(QueueDocuments),
		asynq.Timeout(generateTimeout),
	), nil
}

// Enqueuer puts generation tasks on the queue.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

var _ services.GenerationEnqueuer = (*Enqueuer)(nil)

func (e *Enqueuer) EnqueueDocumentGeneration(ctx context.Context, projectID uuid.UUID, docType models.DocumentType) (string, error) {
	task, err := NewGenerateDocumentTask(projectID, docType)
	if err != nil {
		return "", err
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", err
	}
	logger.L().Info("document generation enqueued",
		zap.String("task_id", info.ID),
		zap.String("project_id", projectID.String()),
		zap.String("type", string(docType)))
	return info.ID, nil
}

// DocumentTaskHandler runs document generation tasks.
type DocumentTaskHandler struct {
	docs services.DocumentService
}

func NewDocumentTaskHandler(docs services.DocumentService) *DocumentTaskHandler {
	return &DocumentTaskHandler{docs: docs}
}

// Register mounts the handler's task types on mux.
func (h *DocumentTaskHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeGenerateDocument, h.HandleGenerateDocument)
}

func (h *DocumentTaskHandler) HandleGenerateDocument(ctx context.Context, t *asynq.Task) (err error) {
	var docType models.DocumentType
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.QueueJobsProcessed.WithLabelValues(string(docType), status).Inc()
	}()

	var p GenerateDocumentPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid generate task payload", zap.Error(err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	projectID, err := uuid.Parse(p.ProjectID)
	if err != nil {
		logger.L().Error("invalid project id in task", zap.Error(err))
		return fmt.Errorf("project id: %v: %w", err, asynq.SkipRetry)
	}
	docType, err = models.ParseDocumentType(p.DocumentType)
	if err != nil {
		logger.L().Error("invalid document type in task", zap.Error(err))
		return fmt.Errorf("document type: %v: %w", err, asynq.SkipRetry)
	}

	logger.L().Info("handling generate task", zap.String("project_id", projectID.String()), zap.String("type", string(docType)))
	doc, err := h.docs.GenerateDocument(ctx, projectID, docType)
	if err != nil {
		logger.L().Error("document generation failed", zap.String("project_id", projectID.String()), zap.Error(err))
		return err
	}

	logger.L().Info("generate task completed", zap.String("document_id", doc.ID.String()))
	return nil
}
