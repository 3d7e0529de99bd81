package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that can sign in to the dashboard.
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error { assignID(&u.ID); return nil }

// Profile holds the details a user fills in on first sign-in. Its ID is the user's ID.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `gorm:"not null" json:"full_name" validate:"required,max=120"`
	Role      string    `gorm:"type:varchar(64)" json:"role" validate:"max=64"`
	Company   string    `gorm:"type:varchar(120)" json:"company" validate:"max=120"`
	AvatarURL string    `gorm:"type:text" json:"avatar_url" validate:"omitempty,url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthTokenKind distinguishes what a one-time token may be exchanged for.
type AuthTokenKind string

const (
	TokenSignup    AuthTokenKind = "signup"
	TokenRecovery  AuthTokenKind = "recovery"
	TokenMagicLink AuthTokenKind = "magiclink"
)

// AuthToken is a single-use credential delivered by link. Only the SHA-256 of the
// raw token is stored.
type AuthToken struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID     `gorm:"type:uuid;index;not null" json:"user_id"`
	Kind       AuthTokenKind `gorm:"type:varchar(16);not null" json:"kind"`
	TokenHash  string        `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	ExpiresAt  time.Time     `gorm:"not null" json:"expires_at"`
	ConsumedAt *time.Time    `json:"consumed_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (t *AuthToken) BeforeCreate(*gorm.DB) error { assignID(&t.ID); return nil }

// Usable reports whether the token can still be exchanged at now.
func (t *AuthToken) Usable(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}

// InviteRequest is a waitlist entry. Email is unique so repeat submissions are ignored.
type InviteRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *InviteRequest) BeforeCreate(*gorm.DB) error { assignID(&i.ID); return nil }

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
