package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/command-deck/engine/internal/models"
	appErr "github.com/command-deck/engine/pkg/errors"
)

type AuditLogRepository interface {
	Create(ctx context.Context, a *models.AuditLog) error
	// ListByProject returns audit logs newest first.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.AuditLog, error)
}

type auditLogRepository struct {
	BaseRepository[models.AuditLog]
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{BaseRepository: NewBaseRepository[models.AuditLog](db, "audit log"), db: db}
}

func (r *auditLogRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.AuditLog, error) {
	var out []models.AuditLog
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list audit logs failed")
	}
	return out, nil
}
