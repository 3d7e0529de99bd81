package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/command-deck/engine/internal/workflow"
)

// Project is the root aggregate: it owns blueprints, documents and audit logs.
type Project struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id" validate:"required"`
	Name         string         `gorm:"not null" json:"name" validate:"required,max=200"`
	Description  string         `gorm:"type:text" json:"description"`
	CurrentStage workflow.Stage `gorm:"type:varchar(32);not null;index" json:"current_stage" validate:"required,stage"`
	IsCompleted  bool           `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	if p.CurrentStage == "" {
		p.CurrentStage = workflow.First()
	}
	return nil
}

// Blueprint is an immutable, versioned design snapshot of a project.
type Blueprint struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;index:idx_blueprints_project_version;not null" json:"project_id"`
	Content   datatypes.JSON `gorm:"type:jsonb;not null" json:"content"`
	Version   int            `gorm:"not null;index:idx_blueprints_project_version" json:"version"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (b *Blueprint) BeforeCreate(*gorm.DB) error { assignID(&b.ID); return nil }

// AuditLog records one audit run. RiskScore is 0..100; higher is riskier.
type AuditLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	Findings  datatypes.JSON `gorm:"type:jsonb;not null" json:"findings"`
	RiskScore int            `gorm:"not null" json:"risk_score" validate:"gte=0,lte=100"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error { assignID(&a.ID); return nil }

// DisplayScore is the health score shown to users.
func (a *AuditLog) DisplayScore() int { return 100 - a.RiskScore }

// DesignSession tracks an in-progress design conversation, one per project.
type DesignSession struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"project_id"`
	CurrentDesignDoc string    `gorm:"type:text" json:"current_design_doc"`
	CurrentStep      int       `gorm:"not null;default:0" json:"current_step" validate:"gte=0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (d *DesignSession) BeforeCreate(*gorm.DB) error { assignID(&d.ID); return nil }
