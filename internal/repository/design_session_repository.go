package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/command-deck/engine/internal/models"
	appErr "github.com/command-deck/engine/pkg/errors"
)

type DesignSessionRepository interface {
	GetByProject(ctx context.Context, projectID uuid.UUID, dest *models.DesignSession) error
	Upsert(ctx context.Context, s *models.DesignSession) error
}

type designSessionRepository struct {
	db *gorm.DB
}

func NewDesignSessionRepository(db *gorm.DB) DesignSessionRepository {
	return &designSessionRepository{db: db}
}

func (r *designSessionRepository) GetByProject(ctx context.Context, projectID uuid.UUID, dest *models.DesignSession) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(dest).Error; err != nil {
		return notFoundOr(err, "design session")
	}
	return nil
}

func (r *designSessionRepository) Upsert(ctx context.Context, s *models.DesignSession) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_design_doc", "current_step", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "save design session failed")
	}
	return nil
}
