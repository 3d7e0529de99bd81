package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/api/middleware"
	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/repository"
	"github.com/command-deck/engine/internal/services"
	"github.com/command-deck/engine/pkg/database"
)

// projectsRouter mounts the project routes over an in-memory database. Requests
// run as whoever *current holds at the time.
func projectsRouter(t *testing.T, current *uuid.UUID) http.Handler {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	projectRepo := repository.NewProjectRepository(db)
	blueprintRepo := repository.NewBlueprintRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	projects := services.NewProjectService(projectRepo, blueprintRepo, auditRepo, repository.NewDesignSessionRepository(db))
	timeline := services.NewTimelineService(projectRepo, blueprintRepo, auditRepo)
	docs := services.NewDocumentService(projectRepo, blueprintRepo, repository.NewDocumentRepository(db), new(mockGenerator), nil)

	ph := NewProjectsHandler(projects, timeline)
	dh := NewDocumentsHandler(docs)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), *current)))
		})
	})
	r.Get("/projects", ph.List)
	r.Post("/projects", ph.Create)
	r.Get("/projects/{id}", ph.Get)
	r.Post("/projects/{id}/advance", ph.Advance)
	r.Put("/projects/{id}/stage", ph.SetStage)
	r.Post("/projects/{id}/blueprints", ph.CreateBlueprint)
	r.Get("/projects/{id}/blueprints/{version}", ph.GetBlueprint)
	r.Post("/projects/{id}/audits", ph.CreateAudit)
	r.Get("/projects/{id}/history", ph.History)
	r.Post("/projects/{id}/documents/generate", dh.Generate)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, strings.NewReader(body)))
	var out map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	return rr, out
}

func createProject(t *testing.T, h http.Handler) string {
	t.Helper()
	rr, body := do(t, h, http.MethodPost, "/projects", `{"name":"Atlas","description":"ops console"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	data := body["data"].(map[string]any)
	assert.Equal(t, "DISCOVERY", data["current_stage"])
	return data["id"].(string)
}

func TestProjectLifecycle(t *testing.T) {
	user := uuid.New()
	h := projectsRouter(t, &user)
	id := createProject(t, h)

	rr, body := do(t, h, http.MethodPost, "/projects/"+id+"/advance", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "STRATEGY", body["data"].(map[string]any)["current_stage"])

	rr, _ = do(t, h, http.MethodPut, "/projects/"+id+"/stage", `{"stage":"LAUNCH"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, body = do(t, h, http.MethodPut, "/projects/"+id+"/stage", `{"stage":"MAINTENANCE"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MAINTENANCE", body["data"].(map[string]any)["current_stage"])

	rr, _ = do(t, h, http.MethodPost, "/projects/"+id+"/advance", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, body = do(t, h, http.MethodGet, "/projects?page=1&page_size=10", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, body["data"], 1)
	assert.EqualValues(t, 1, body["meta"].(map[string]any)["total"])

	rr, body = do(t, h, http.MethodGet, "/projects?page=9223372036854775807&page_size=20", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, body["data"])
	assert.EqualValues(t, 1, body["meta"].(map[string]any)["total"])
}

func TestProjectsAreScopedToOwner(t *testing.T) {
	user := uuid.New()
	h := projectsRouter(t, &user)
	id := createProject(t, h)

	rr, _ := do(t, h, http.MethodGet, "/projects/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = do(t, h, http.MethodGet, "/projects/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	user = uuid.New()
	rr, body := do(t, h, http.MethodGet, "/projects/"+id, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "user does not own project", body["error"].(map[string]any)["message"])

	rr, body = do(t, h, http.MethodGet, "/projects", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, body["data"])
}

func blueprintJSON(summary string) string {
	return `{"content":{"summary":"` + summary + `","components":[{"name":"api","responsibility":"serves the deck"}]}}`
}

func TestBlueprintsAndHistory(t *testing.T) {
	user := uuid.New()
	h := projectsRouter(t, &user)
	id := createProject(t, h)

	rr, body := do(t, h, http.MethodPost, "/projects/"+id+"/blueprints", blueprintJSON("v1"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.EqualValues(t, 1, body["data"].(map[string]any)["version"])

	rr, body = do(t, h, http.MethodPost, "/projects/"+id+"/blueprints", blueprintJSON("v2"))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.EqualValues(t, 2, body["data"].(map[string]any)["version"])

	rr, body = do(t, h, http.MethodGet, "/projects/"+id+"/blueprints/latest", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 2, body["data"].(map[string]any)["version"])

	rr, _ = do(t, h, http.MethodPost, "/projects/"+id+"/blueprints", `{"content":{"summary":"no components"}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = do(t, h, http.MethodGet, "/projects/"+id+"/blueprints/first", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = do(t, h, http.MethodPost, "/projects/"+id+"/audits", `{"findings":[],"risk_score":101}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = do(t, h, http.MethodPost, "/projects/"+id+"/audits", `{"findings":[],"risk_score":0}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr, body = do(t, h, http.MethodGet, "/projects/"+id+"/history", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, body["data"], 3)
}

func TestGenerateWithoutQueueIsUnavailable(t *testing.T) {
	user := uuid.New()
	h := projectsRouter(t, &user)
	id := createProject(t, h)

	rr, _ := do(t, h, http.MethodPost, "/projects/"+id+"/documents/generate", `{"type":"PRD"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = do(t, h, http.MethodPost, "/projects/"+id+"/documents/generate", `{"type":"TECH_SPEC"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
