package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/command-deck/engine/internal/models"
	appErr "github.com/command-deck/engine/pkg/errors"
)

type BlueprintRepository interface {
	// CreateNextVersion stores b as max(version)+1 for its project and sets b.Version.
	CreateNextVersion(ctx context.Context, b *models.Blueprint) error
	GetLatestByProject(ctx context.Context, projectID uuid.UUID, dest *models.Blueprint) error
	GetByVersion(ctx context.Context, projectID uuid.UUID, version int, dest *models.Blueprint) error
	// ListByProject returns blueprints newest first.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Blueprint, error)
}

type blueprintRepository struct {
	db *gorm.DB
}

func NewBlueprintRepository(db *gorm.DB) BlueprintRepository {
	return &blueprintRepository{db: db}
}

func (r *blueprintRepository) CreateNextVersion(ctx context.Context, b *models.Blueprint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxVersion int
		if err := tx.Model(&models.Blueprint{}).Where("project_id = ?", b.ProjectID).
			Select("COALESCE(MAX(version),0)").Scan(&maxVersion).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "compute blueprint version failed")
		}
		b.Version = maxVersion + 1
		if err := tx.Create(b).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "create blueprint failed")
		}
		return nil
	})
	if err != nil {
		if _, ok := err.(*appErr.AppError); ok {
			return err
		}
		return appErr.Wrap(err, appErr.CodeInternal, "blueprint transaction failed")
	}
	return nil
}

func (r *blueprintRepository) GetLatestByProject(ctx context.Context, projectID uuid.UUID, dest *models.Blueprint) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("version DESC").First(dest).Error; err != nil {
		return notFoundOr(err, "blueprint")
	}
	return nil
}

func (r *blueprintRepository) GetByVersion(ctx context.Context, projectID uuid.UUID, version int, dest *models.Blueprint) error {
	if err := r.db.WithContext(ctx).Where("project_id = ? AND version = ?", projectID, version).First(dest).Error; err != nil {
		return notFoundOr(err, "blueprint version")
	}
	return nil
}

func (r *blueprintRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Blueprint, error) {
	var out []models.Blueprint
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list blueprints failed")
	}
	return out, nil
}
