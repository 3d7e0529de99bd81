package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/command-deck/engine/internal/workflow"
	appErr "github.com/command-deck/engine/pkg/errors"
)

func TestProjectLifecycle(t *testing.T) {
	svc := newProjectService(newTestDB(t))
	ctx := context.Background()
	owner := uuid.New()

	p, err := svc.CreateProject(ctx, owner, &CreateProjectInput{Name: "Deck", Description: "ops"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StageDiscovery, p.CurrentStage)

	_, err = svc.CreateProject(ctx, owner, &CreateProjectInput{})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = svc.GetProject(ctx, p.ID, uuid.New())
	assert.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))

	for _, want := range workflow.Stages()[1:] {
		p, err = svc.AdvanceStage(ctx, p.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, want, p.CurrentStage)
	}
	_, err = svc.AdvanceStage(ctx, p.ID, owner)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid), "no stage after maintenance")

	p, err = svc.CompleteProject(ctx, p.ID, owner)
	require.NoError(t, err)
	assert.True(t, p.IsCompleted)

	p, err = svc.SetStage(ctx, p.ID, owner, workflow.StageAudit)
	require.NoError(t, err, "completed projects can still move")
	assert.Equal(t, workflow.StageAudit, p.CurrentStage)

	_, err = svc.SetStage(ctx, p.ID, owner, workflow.Stage("LAUNCH"))
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	name := "Deck 2"
	p, err = svc.UpdateProject(ctx, p.ID, owner, &UpdateProjectInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Deck 2", p.Name)

	list, err := svc.ListProjects(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBlueprintsAndAudits(t *testing.T) {
	svc := newProjectService(newTestDB(t))
	ctx := context.Background()
	owner := uuid.New()
	p, err := svc.CreateProject(ctx, owner, &CreateProjectInput{Name: "Deck"})
	require.NoError(t, err)

	content := json.RawMessage(`{"summary":"v","components":[{"name":"api","responsibility":"serve"}]}`)
	b1, err := svc.SaveBlueprint(ctx, p.ID, owner, content)
	require.NoError(t, err)
	b2, err := svc.SaveBlueprint(ctx, p.ID, owner, content)
	require.NoError(t, err)
	assert.Equal(t, 1, b1.Version)
	assert.Equal(t, 2, b2.Version)

	_, err = svc.SaveBlueprint(ctx, p.ID, owner, json.RawMessage(`{"summary":"v"}`))
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	latest, err := svc.GetLatestBlueprint(ctx, p.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)

	_, err = svc.GetBlueprintVersion(ctx, p.ID, owner, 9)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	a, err := svc.RecordAudit(ctx, p.ID, owner, &RecordAuditInput{
		Findings:  json.RawMessage(`[{"severity":"critical","title":"secrets in repo"}]`),
		RiskScore: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, 70, a.DisplayScore())

	_, err = svc.RecordAudit(ctx, p.ID, owner, &RecordAuditInput{Findings: json.RawMessage(`[]`), RiskScore: 101})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	audits, err := svc.ListAudits(ctx, p.ID, owner)
	require.NoError(t, err)
	assert.Len(t, audits, 1)
}

func TestDesignSession(t *testing.T) {
	svc := newProjectService(newTestDB(t))
	ctx := context.Background()
	owner := uuid.New()
	p, err := svc.CreateProject(ctx, owner, &CreateProjectInput{Name: "Deck"})
	require.NoError(t, err)

	ds, err := svc.GetDesignSession(ctx, p.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.CurrentStep)
	assert.Equal(t, uuid.Nil, ds.ID)

	first, err := svc.SaveDesignSession(ctx, p.ID, owner, &DesignSessionInput{CurrentDesignDoc: "# draft", CurrentStep: 1})
	require.NoError(t, err)
	second, err := svc.SaveDesignSession(ctx, p.ID, owner, &DesignSessionInput{CurrentDesignDoc: "# final", CurrentStep: 2})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.CurrentStep)

	_, err = svc.SaveDesignSession(ctx, p.ID, owner, &DesignSessionInput{CurrentStep: -1})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}
