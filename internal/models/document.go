package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentType is the closed set of artifact kinds a project can hold.
type DocumentType string

const (
	DocPRD          DocumentType = "PRD"
	DocStrategy     DocumentType = "STRATEGY"
	DocDesign       DocumentType = "DESIGN"
	DocSchema       DocumentType = "SCHEMA"
	DocTechSpec     DocumentType = "TECH_SPEC"
	DocUserGuide    DocumentType = "USER_GUIDE"
	DocInstructions DocumentType = "INSTRUCTIONS"
	DocBacklog      DocumentType = "BACKLOG"
)

var documentTypes = []DocumentType{
	DocPRD, DocStrategy, DocDesign, DocSchema, DocTechSpec, DocUserGuide, DocInstructions, DocBacklog,
}

// DocumentTypes returns every known document type.
func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(documentTypes))
	copy(out, documentTypes)
	return out
}

// Valid reports whether t is a known type.
func (t DocumentType) Valid() bool {
	for _, dt := range documentTypes {
		if dt == t {
			return true
		}
	}
	return false
}

// ParseDocumentType accepts a type name in any case.
func ParseDocumentType(v string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(v)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type %q", v)
	}
	return t, nil
}

// Generated reports whether documents of this type come from the model API.
func (t DocumentType) Generated() bool {
	return t == DocTechSpec || t == DocUserGuide
}

// Document is an immutable text artifact attached to a project.
type Document struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID    `gorm:"type:uuid;index;not null" json:"project_id"`
	Type      DocumentType `gorm:"type:varchar(32);index;not null" json:"type"`
	Title     string       `gorm:"not null" json:"title"`
	Summary   string       `gorm:"type:text" json:"summary"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`
}

func (d *Document) BeforeCreate(*gorm.DB) error { assignID(&d.ID); return nil }
