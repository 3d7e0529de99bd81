package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/command-deck/engine/internal/validators"
)

// BlueprintContent is the stored shape of a blueprint snapshot.
type BlueprintContent struct {
	Summary      string               `json:"summary" validate:"required"`
	Architecture string               `json:"architecture"`
	Components   []BlueprintComponent `json:"components" validate:"required,min=1,dive"`
	DataEntities []DataEntity         `json:"data_entities,omitempty" validate:"dive"`
	Risks        []string             `json:"risks,omitempty"`
}

type BlueprintComponent struct {
	Name           string `json:"name" validate:"required"`
	Responsibility string `json:"responsibility" validate:"required"`
}

type DataEntity struct {
	Name   string   `json:"name" validate:"required"`
	Fields []string `json:"fields,omitempty"`
}

// AuditFinding is one issue raised by an audit run.
type AuditFinding struct {
	Severity string `json:"severity" validate:"required,oneof=low medium high critical"`
	Title    string `json:"title" validate:"required"`
	Detail   string `json:"detail"`
}

// DecodeBlueprintContent parses and validates raw blueprint JSON. Unknown fields are rejected.
func DecodeBlueprintContent(raw []byte) (*BlueprintContent, error) {
	var c BlueprintContent
	if err := decodeStrict(raw, &c); err != nil {
		return nil, fmt.Errorf("blueprint content: %w", err)
	}
	if err := validators.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("blueprint content: %s", validators.Message(err))
	}
	return &c, nil
}

// DecodeAuditFindings parses and validates raw findings JSON.
func DecodeAuditFindings(raw []byte) ([]AuditFinding, error) {
	var out []AuditFinding
	if err := decodeStrict(raw, &out); err != nil {
		return nil, fmt.Errorf("audit findings: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("audit findings: must be a JSON array")
	}
	if err := validators.New().Var(out, "dive"); err != nil {
		return nil, fmt.Errorf("audit findings: %s", validators.Message(err))
	}
	return out, nil
}

// DecodeBacklog parses and validates the sprints held in a BACKLOG document.
func DecodeBacklog(content string) ([]Sprint, error) {
	var out []Sprint
	if err := decodeStrict([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("backlog: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("backlog: must be a JSON array of sprints")
	}
	if err := validators.New().Var(out, "dive"); err != nil {
		return nil, fmt.Errorf("backlog: %s", validators.Message(err))
	}
	return out, nil
}

// ValidateDocumentContent checks content against the schema of its document type.
// SCHEMA documents must be a JSON object, BACKLOG documents a list of sprints, the
// rest are free text and only need to be non-empty.
func ValidateDocumentContent(t DocumentType, content string) error {
	if len(bytes.TrimSpace([]byte(content))) == 0 {
		return fmt.Errorf("content is required")
	}
	switch t {
	case DocSchema:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(content), &obj); err != nil {
			return fmt.Errorf("schema: content must be a JSON object")
		}
	case DocBacklog:
		if _, err := DecodeBacklog(content); err != nil {
			return err
		}
	}
	return nil
}

func decodeStrict(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected trailing data")
	}
	return nil
}
