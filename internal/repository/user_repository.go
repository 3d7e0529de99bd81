package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/command-deck/engine/internal/models"
	appErr "github.com/command-deck/engine/pkg/errors"
)

type UserRepository interface {
	BaseRepository[models.User]
	GetByEmail(ctx context.Context, email string, dest *models.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error
	ConfirmEmail(ctx context.Context, userID uuid.UUID, at time.Time) error
}

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db, "user"), db: db}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string, dest *models.User) error {
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(dest).Error; err != nil {
		return notFoundOr(err, "user")
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error {
	return r.updateColumn(ctx, userID, "password_hash", hash)
}

func (r *userRepository) ConfirmEmail(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.updateColumn(ctx, userID, "email_confirmed_at", at)
}

func (r *userRepository) updateColumn(ctx context.Context, userID uuid.UUID, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update(column, value)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update user failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "user not found")
	}
	return nil
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id any, dest *models.Profile) error
	// Exists reports whether a profile row exists for the user.
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
	Upsert(ctx context.Context, p *models.Profile) error
}

type profileRepository struct {
	BaseRepository[models.Profile]
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{BaseRepository: NewBaseRepository[models.Profile](db, "profile"), db: db}
}

func (r *profileRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", userID).Limit(1).Count(&n).Error; err != nil {
		return false, appErr.Wrap(err, appErr.CodeInternal, "lookup profile failed")
	}
	return n > 0, nil
}

func (r *profileRepository) Upsert(ctx context.Context, p *models.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "role", "company", "avatar_url", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "save profile failed")
	}
	return nil
}
