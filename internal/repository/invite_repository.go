package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/command-deck/engine/internal/models"
	appErr "github.com/command-deck/engine/pkg/errors"
)

type InviteRepository interface {
	// InsertIgnore stores the email unless it is already present. created is false
	// when the unique constraint absorbed a duplicate.
	InsertIgnore(ctx context.Context, email string) (created bool, err error)
}

type inviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &inviteRepository{db: db}
}

func (r *inviteRepository) InsertIgnore(ctx context.Context, email string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&models.InviteRequest{Email: email})
	if res.Error != nil {
		return false, appErr.Wrap(res.Error, appErr.CodeInternal, "insert invite request failed")
	}
	return res.RowsAffected == 1, nil
}
