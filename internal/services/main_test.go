package services

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/command-deck/engine/internal/auth"
	"github.com/command-deck/engine/internal/generation"
	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/repository"
	"github.com/command-deck/engine/pkg/database"
	"github.com/command-deck/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.UseNop()
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newProjectService(db *gorm.DB) ProjectService {
	return NewProjectService(
		repository.NewProjectRepository(db),
		repository.NewBlueprintRepository(db),
		repository.NewAuditLogRepository(db),
		repository.NewDesignSessionRepository(db),
	)
}

// recordingPublisher keeps every published auth event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []auth.Event
}

func (p *recordingPublisher) Publish(e auth.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []auth.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]auth.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// captureMailer keeps sent messages instead of delivering them.
type captureMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) last() Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type mockGenerator struct {
	mock.Mock
}

var _ generation.Generator = (*mockGenerator)(nil)

func (m *mockGenerator) Generate(ctx context.Context, req generation.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) GenerateTechnicalSpec(ctx context.Context, c string) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) GenerateUserGuide(ctx context.Context, c string) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueDocumentGeneration(ctx context.Context, projectID uuid.UUID, docType models.DocumentType) (string, error) {
	args := m.Called(ctx, projectID, docType)
	return args.String(0), args.Error(1)
}
