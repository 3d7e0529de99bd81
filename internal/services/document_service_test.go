package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/repository"
	appErr "github.com/command-deck/engine/pkg/errors"
)

func TestDocumentGeneration(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := uuid.New()
	projects := newProjectService(db)
	gen := &mockGenerator{}
	queue := &mockEnqueuer{}
	svc := NewDocumentService(
		repository.NewProjectRepository(db),
		repository.NewBlueprintRepository(db),
		repository.NewDocumentRepository(db),
		gen,
		queue,
	)

	p, err := projects.CreateProject(ctx, owner, &CreateProjectInput{Name: "Deck"})
	require.NoError(t, err)

	_, err = svc.GenerateDocument(ctx, p.ID, models.DocTechSpec)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid), "nothing to generate from")

	_, err = svc.CreateDocument(ctx, p.ID, owner, &CreateDocumentInput{Type: models.DocPRD, Title: "PRD", Content: "# Build a deck"})
	require.NoError(t, err)

	gen.On("GenerateUserGuide", mock.Anything, mock.MatchedBy(func(c string) bool {
		return strings.Contains(c, "# Build a deck")
	})).Return("# Guide", nil).Once()
	guide, err := svc.GenerateDocument(ctx, p.ID, models.DocUserGuide)
	require.NoError(t, err)
	assert.Equal(t, "# Guide", guide.Content)
	assert.Equal(t, "Generated from PRD", guide.Summary)

	_, err = projects.SaveBlueprint(ctx, p.ID, owner, json.RawMessage(`{"summary":"s","components":[{"name":"api","responsibility":"serve"}]}`))
	require.NoError(t, err)
	gen.On("GenerateTechnicalSpec", mock.Anything, mock.MatchedBy(func(c string) bool {
		return strings.Contains(c, "Blueprint v1") && strings.Contains(c, `"api"`)
	})).Return("# Spec", nil).Once()
	spec, err := svc.GenerateDocument(ctx, p.ID, models.DocTechSpec)
	require.NoError(t, err)
	assert.Equal(t, "Deck Technical Specification", spec.Title)

	gen.On("GenerateTechnicalSpec", mock.Anything, mock.Anything).Return("", errors.New("quota exhausted")).Once()
	_, err = svc.GenerateDocument(ctx, p.ID, models.DocTechSpec)
	assert.EqualError(t, err, "quota exhausted")

	docs, err := svc.ListDocuments(ctx, p.ID, owner, models.DocTechSpec, models.DocUserGuide)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	got, err := svc.GetDocument(ctx, spec.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "# Spec", got.Content)
	_, err = svc.GetDocument(ctx, spec.ID, uuid.New())
	assert.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))

	gen.AssertExpectations(t)
}

func TestRequestGeneration(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := uuid.New()
	queue := &mockEnqueuer{}
	svc := NewDocumentService(
		repository.NewProjectRepository(db),
		repository.NewBlueprintRepository(db),
		repository.NewDocumentRepository(db),
		&mockGenerator{},
		queue,
	)
	p, err := newProjectService(db).CreateProject(ctx, owner, &CreateProjectInput{Name: "Deck"})
	require.NoError(t, err)

	_, err = svc.RequestGeneration(ctx, p.ID, owner, models.DocSchema)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	queue.On("EnqueueDocumentGeneration", mock.Anything, p.ID, models.DocTechSpec).Return("task-1", nil).Once()
	id, err := svc.RequestGeneration(ctx, p.ID, owner, models.DocTechSpec)
	require.NoError(t, err)
	assert.Equal(t, "task-1", id)

	queue.On("EnqueueDocumentGeneration", mock.Anything, p.ID, models.DocUserGuide).Return("", errors.New("redis down")).Once()
	_, err = svc.RequestGeneration(ctx, p.ID, owner, models.DocUserGuide)
	assert.True(t, appErr.IsCode(err, appErr.CodeInternal))
	queue.AssertExpectations(t)
}

func TestCreateDocumentValidatesContent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := uuid.New()
	svc := NewDocumentService(repository.NewProjectRepository(db), repository.NewBlueprintRepository(db), repository.NewDocumentRepository(db), &mockGenerator{}, nil)
	p, err := newProjectService(db).CreateProject(ctx, owner, &CreateProjectInput{Name: "Deck"})
	require.NoError(t, err)

	_, err = svc.CreateDocument(ctx, p.ID, owner, &CreateDocumentInput{Type: models.DocSchema, Title: "Schema", Content: "not json"})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = svc.CreateDocument(ctx, p.ID, owner, &CreateDocumentInput{Type: "MEMO", Title: "x", Content: "x"})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = svc.RequestGeneration(ctx, p.ID, owner, models.DocTechSpec)
	assert.True(t, appErr.IsCode(err, appErr.CodeUnavailable), "no queue configured")
}
