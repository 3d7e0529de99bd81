package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/command-deck/engine/internal/api/types"
	"github.com/command-deck/engine/internal/services"
	"github.com/command-deck/engine/internal/workflow"
	appErr "github.com/command-deck/engine/pkg/errors"
)

type ProjectsHandler struct {
	projects services.ProjectService
	timeline services.TimelineService
}

func NewProjectsHandler(projects services.ProjectService, timeline services.TimelineService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, timeline: timeline}
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.projects.ListProjects(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, meta := paginate(r, items)
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: page, Meta: meta})
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.ProjectCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.projects.CreateProject(r.Context(), userID(r), &services.CreateProjectInput{Name: req.Name, Description: req.Description})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, p)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.projects.GetProject(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, p)
}

func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.ProjectUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.projects.UpdateProject(r.Context(), id, userID(r), &services.UpdateProjectInput{Name: req.Name, Description: req.Description})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, p)
}

func (h *ProjectsHandler) SetStage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.StageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	stage, err := workflow.ParseStage(req.Stage)
	if err != nil {
		writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, "unknown stage"))
		return
	}
	p, err := h.projects.SetStage(r.Context(), id, userID(r), stage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, p)
}

func (h *ProjectsHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.projects.AdvanceStage(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, p)
}

func (h *ProjectsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.projects.CompleteProject(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, p)
}

// History returns the project's blueprint and audit timeline, newest first.
func (h *ProjectsHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	events, err := h.timeline.ProjectHistory(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, events)
}

func (h *ProjectsHandler) ListBlueprints(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.projects.ListBlueprints(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, items)
}

func (h *ProjectsHandler) CreateBlueprint(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.BlueprintCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.projects.SaveBlueprint(r.Context(), id, userID(r), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, b)
}

// GetBlueprint serves /blueprints/latest or /blueprints/{version}.
func (h *ProjectsHandler) GetBlueprint(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ref := chi.URLParam(r, "version")
	if ref == "latest" {
		b, err := h.projects.GetLatestBlueprint(r.Context(), id, userID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, http.StatusOK, b)
		return
	}
	version, err := strconv.Atoi(ref)
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "version must be a number or latest")
		return
	}
	b, err := h.projects.GetBlueprintVersion(r.Context(), id, userID(r), version)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, b)
}

func (h *ProjectsHandler) ListAudits(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.projects.ListAudits(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, items)
}

func (h *ProjectsHandler) CreateAudit(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.AuditCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.projects.RecordAudit(r.Context(), id, userID(r), &services.RecordAuditInput{Findings: req.Findings, RiskScore: *req.RiskScore})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, a)
}

func (h *ProjectsHandler) GetDesignSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ds, err := h.projects.GetDesignSession(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, ds)
}

func (h *ProjectsHandler) SaveDesignSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.DesignSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ds, err := h.projects.SaveDesignSession(r.Context(), id, userID(r), &services.DesignSessionInput{
		CurrentDesignDoc: req.CurrentDesignDoc,
		CurrentStep:      req.CurrentStep,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, ds)
}
