package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/validators"
	appErr "github.com/command-deck/engine/pkg/errors"
	"github.com/command-deck/engine/pkg/logger"
)

// SaveBlueprint validates content and stores it as the project's next blueprint version.
func (s *projectService) SaveBlueprint(ctx context.Context, projectID, userID uuid.UUID, content json.RawMessage) (*models.Blueprint, error) {
	logger.L().Info("save blueprint start", zap.String("project_id", projectID.String()), zap.String("user_id", userID.String()))
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}

	decoded, err := models.DecodeBlueprintContent(content)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid blueprint content")
	}
	normalized, err := json.Marshal(decoded)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "encode blueprint content failed")
	}

	b := &models.Blueprint{ProjectID: projectID, Content: datatypes.JSON(normalized)}
	if err := s.blueprintRepo.CreateNextVersion(ctx, b); err != nil {
		return nil, err
	}

	logger.L().Info("blueprint saved", zap.String("project_id", projectID.String()), zap.Int("version", b.Version))
	return b, nil
}

func (s *projectService) GetLatestBlueprint(ctx context.Context, projectID, userID uuid.UUID) (*models.Blueprint, error) {
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}
	var b models.Blueprint
	if err := s.blueprintRepo.GetLatestByProject(ctx, projectID, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *projectService) GetBlueprintVersion(ctx context.Context, projectID, userID uuid.UUID, version int) (*models.Blueprint, error) {
	if version < 1 {
		return nil, appErr.New(appErr.CodeInvalid, "version must be at least 1")
	}
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}
	var b models.Blueprint
	if err := s.blueprintRepo.GetByVersion(ctx, projectID, version, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *projectService) ListBlueprints(ctx context.Context, projectID, userID uuid.UUID) ([]models.Blueprint, error) {
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}
	return s.blueprintRepo.ListByProject(ctx, projectID)
}

// RecordAudit stores the result of an audit run after validating its findings.
func (s *projectService) RecordAudit(ctx context.Context, projectID, userID uuid.UUID, input *RecordAuditInput) (*models.AuditLog, error) {
	logger.L().Info("record audit", zap.String("project_id", projectID.String()), zap.Int("risk_score", input.RiskScore))
	if err := validators.New().Struct(input); err != nil {
		return nil, invalid(err)
	}
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}

	findings, err := models.DecodeAuditFindings(input.Findings)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid audit findings")
	}
	raw, err := json.Marshal(findings)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "encode audit findings failed")
	}

	a := &models.AuditLog{ProjectID: projectID, Findings: datatypes.JSON(raw), RiskScore: input.RiskScore}
	if err := s.auditRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *projectService) ListAudits(ctx context.Context, projectID, userID uuid.UUID) ([]models.AuditLog, error) {
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByProject(ctx, projectID)
}

// GetDesignSession returns the project's design session, or an unsaved session at
// step 0 when none has been stored yet.
func (s *projectService) GetDesignSession(ctx context.Context, projectID, userID uuid.UUID) (*models.DesignSession, error) {
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}
	var ds models.DesignSession
	err := s.sessionRepo.GetByProject(ctx, projectID, &ds)
	if appErr.IsCode(err, appErr.CodeNotFound) {
		return &models.DesignSession{ProjectID: projectID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

func (s *projectService) SaveDesignSession(ctx context.Context, projectID, userID uuid.UUID, input *DesignSessionInput) (*models.DesignSession, error) {
	if err := validators.New().Struct(input); err != nil {
		return nil, invalid(err)
	}
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}
	ds := &models.DesignSession{
		ProjectID:        projectID,
		CurrentDesignDoc: input.CurrentDesignDoc,
		CurrentStep:      input.CurrentStep,
	}
	if err := s.sessionRepo.Upsert(ctx, ds); err != nil {
		return nil, err
	}
	// reload: on conflict the stored row keeps its original id
	var saved models.DesignSession
	if err := s.sessionRepo.GetByProject(ctx, projectID, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}
