package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/command-deck/engine/internal/models"
	appErr "github.com/command-deck/engine/pkg/errors"
)

// ErrTokenUnusable is returned when a token is unknown, expired, of the wrong kind or already used.
var ErrTokenUnusable = appErr.New(appErr.CodeUnauthorized, "token is invalid or has expired")

type AuthTokenRepository interface {
	Create(ctx context.Context, t *models.AuthToken) error
	// Consume marks the token with the given hash as used and returns it. kind may be
	// empty to accept any kind.
	Consume(ctx context.Context, hash string, kind models.AuthTokenKind, now time.Time) (*models.AuthToken, error)
}

type authTokenRepository struct {
	BaseRepository[models.AuthToken]
	db *gorm.DB
}

func NewAuthTokenRepository(db *gorm.DB) AuthTokenRepository {
	return &authTokenRepository{BaseRepository: NewBaseRepository[models.AuthToken](db, "auth token"), db: db}
}

func (r *authTokenRepository) Consume(ctx context.Context, hash string, kind models.AuthTokenKind, now time.Time) (*models.AuthToken, error) {
	var tok models.AuthToken
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("token_hash = ?", hash)
		if kind != "" {
			q = q.Where("kind = ?", kind)
		}
		if err := q.First(&tok).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenUnusable
			}
			return appErr.Wrap(err, appErr.CodeInternal, "lookup auth token failed")
		}
		if !tok.Usable(now) {
			return ErrTokenUnusable
		}
		// conditional update so two concurrent exchanges cannot both succeed
		res := tx.Model(&models.AuthToken{}).Where("id = ? AND consumed_at IS NULL", tok.ID).Update("consumed_at", now)
		if res.Error != nil {
			return appErr.Wrap(res.Error, appErr.CodeInternal, "consume auth token failed")
		}
		if res.RowsAffected == 0 {
			return ErrTokenUnusable
		}
		tok.ConsumedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tok, nil
}
