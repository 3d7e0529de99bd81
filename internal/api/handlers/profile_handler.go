package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/command-deck/engine/internal/api/types"
	"github.com/command-deck/engine/internal/services"
	"github.com/command-deck/engine/internal/workflow"
	appErr "github.com/command-deck/engine/pkg/errors"
)

type ProfileHandler struct {
	profiles services.ProfileService
	shell    services.ShellService
}

func NewProfileHandler(profiles services.ProfileService, shell services.ShellService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, shell: shell}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetProfile(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, p)
}

func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req types.ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.profiles.SaveProfile(r.Context(), userID(r), &services.ProfileInput{
		FullName:  req.FullName,
		Role:      req.Role,
		Company:   req.Company,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, p)
}

// Shell returns the dashboard frame. ?project_id selects the project whose stage
// drives the navigation.
func (h *ProfileHandler) Shell(w http.ResponseWriter, r *http.Request) {
	var projectID *uuid.UUID
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, appErr.New(appErr.CodeInvalid, "invalid project_id"))
			return
		}
		projectID = &id
	}
	sh, err := h.shell.Shell(r.Context(), userID(r), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, sh)
}

func (h *ProfileHandler) StagePage(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	stage, err := workflow.ParseStage(chi.URLParam(r, "stage"))
	if err != nil {
		writeError(w, r, appErr.Wrap(err, appErr.CodeNotFound, "unknown stage"))
		return
	}
	view, err := h.shell.StagePage(r.Context(), projectID, userID(r), stage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, view)
}
