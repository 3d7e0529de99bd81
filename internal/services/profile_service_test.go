package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/command-deck/engine/internal/auth"
	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/repository"
	"github.com/command-deck/engine/internal/workflow"
	appErr "github.com/command-deck/engine/pkg/errors"
)

func TestProfileAndShell(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := uuid.New()
	events := &recordingPublisher{}
	profiles := NewProfileService(repository.NewProfileRepository(db), events)
	shell := NewShellService(repository.NewProfileRepository(db), repository.NewProjectRepository(db), repository.NewDocumentRepository(db))

	has, err := profiles.HasProfile(ctx, owner)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = shell.Shell(ctx, owner, nil)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	_, err = profiles.SaveProfile(ctx, owner, &ProfileInput{})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	prof, err := profiles.SaveProfile(ctx, owner, &ProfileInput{FullName: "Ada Lovelace", Role: "CTO"})
	require.NoError(t, err)
	assert.Equal(t, owner, prof.ID)
	assert.Equal(t, []auth.EventType{auth.EventUserUpdated}, events.types())

	has, err = profiles.HasProfile(ctx, owner)
	require.NoError(t, err)
	assert.True(t, has)

	p, err := newProjectService(db).CreateProject(ctx, owner, &CreateProjectInput{Name: "Deck"})
	require.NoError(t, err)
	_, err = newProjectService(db).SetStage(ctx, p.ID, owner, workflow.StageDesign)
	require.NoError(t, err)

	frame, err := shell.Shell(ctx, owner, &p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", frame.Profile.FullName)
	require.Len(t, frame.Navigation, len(workflow.Stages()))
	assert.True(t, frame.Navigation[workflow.StageDesign.Index()].Current)
	assert.False(t, frame.Navigation[workflow.StageAudit.Index()].Unlocked)

	view, err := shell.StagePage(ctx, p.ID, owner, workflow.StageHandover)
	require.NoError(t, err)
	assert.False(t, view.Unlocked)
	assert.Empty(t, view.Documents)

	_, err = shell.StagePage(ctx, p.ID, owner, workflow.Stage("LAUNCH"))
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestStagePageSummarizesBacklog(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := uuid.New()
	docs := NewDocumentService(repository.NewProjectRepository(db), repository.NewBlueprintRepository(db), repository.NewDocumentRepository(db), &mockGenerator{}, nil)
	shell := NewShellService(repository.NewProfileRepository(db), repository.NewProjectRepository(db), repository.NewDocumentRepository(db))

	p, err := newProjectService(db).CreateProject(ctx, owner, &CreateProjectInput{Name: "Deck"})
	require.NoError(t, err)

	view, err := shell.StagePage(ctx, p.ID, owner, workflow.StageConstruction)
	require.NoError(t, err)
	assert.Nil(t, view.Sprints)

	backlog := `[
		{"id":"s1","name":"Sprint 1","status":"ACTIVE","tasks":[
			{"id":"t1","title":"Login","priority":"P0","status":"DONE"},
			{"id":"t2","title":"Invites","priority":"P1","status":"DONE"},
			{"id":"t3","title":"Shell","priority":"P1","status":"IN_PROGRESS"},
			{"id":"t4","title":"Audit","priority":"P2","status":"TODO"}]},
		{"id":"s2","name":"Sprint 2","status":"PLANNING","tasks":[]}
	]`
	_, err = docs.CreateDocument(ctx, p.ID, owner, &CreateDocumentInput{Type: models.DocBacklog, Title: "Backlog", Content: backlog})
	require.NoError(t, err)

	view, err = shell.StagePage(ctx, p.ID, owner, workflow.StageConstruction)
	require.NoError(t, err)
	require.Len(t, view.Sprints, 2)
	assert.Equal(t, SprintSummary{ID: "s1", Name: "Sprint 1", Status: models.SprintActive, Tasks: 4, Progress: 0.5}, view.Sprints[0])
	assert.Equal(t, 0.0, view.Sprints[1].Progress)

	view, err = shell.StagePage(ctx, p.ID, owner, workflow.StageHandover)
	require.NoError(t, err)
	assert.Nil(t, view.Sprints)
}
