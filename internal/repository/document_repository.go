package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/command-deck/engine/internal/models"
	appErr "github.com/command-deck/engine/pkg/errors"
)

type DocumentRepository interface {
	Create(ctx context.Context, d *models.Document) error
	GetByID(ctx context.Context, id any, dest *models.Document) error
	// ListByProject returns documents newest first, optionally restricted to types.
	ListByProject(ctx context.Context, projectID uuid.UUID, types ...models.DocumentType) ([]models.Document, error)
	GetLatestByType(ctx context.Context, projectID uuid.UUID, t models.DocumentType, dest *models.Document) error
}

type documentRepository struct {
	BaseRepository[models.Document]
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{BaseRepository: NewBaseRepository[models.Document](db, "document"), db: db}
}

func (r *documentRepository) ListByProject(ctx context.Context, projectID uuid.UUID, types ...models.DocumentType) ([]models.Document, error) {
	q := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if len(types) > 0 {
		q = q.Where("type IN ?", types)
	}
	var out []models.Document
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list documents failed")
	}
	return out, nil
}

func (r *documentRepository) GetLatestByType(ctx context.Context, projectID uuid.UUID, t models.DocumentType, dest *models.Document) error {
	if err := r.db.WithContext(ctx).Where("project_id = ? AND type = ?", projectID, t).Order("created_at DESC").First(dest).Error; err != nil {
		return notFoundOr(err, "document")
	}
	return nil
}
