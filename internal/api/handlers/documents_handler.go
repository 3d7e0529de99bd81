package handlers

import (
	"net/http"
	"strings"

	"github.com/command-deck/engine/internal/api/types"
	"github.com/command-deck/engine/internal/models"
	"github.com/command-deck/engine/internal/services"
	appErr "github.com/command-deck/engine/pkg/errors"
)

type DocumentsHandler struct {
	docs services.DocumentService
}

func NewDocumentsHandler(docs services.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{docs: docs}
}

// List returns a project's documents. ?type=PRD,DESIGN narrows by type.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var filter []models.DocumentType
	if raw := r.URL.Query().Get("type"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			t, err := models.ParseDocumentType(part)
			if err != nil {
				writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, "unknown document type"))
				return
			}
			filter = append(filter, t)
		}
	}
	items, err := h.docs.ListDocuments(r.Context(), projectID, userID(r), filter...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, meta := paginate(r, items)
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: page, Meta: meta})
}

func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.DocumentCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := models.ParseDocumentType(req.Type)
	if err != nil {
		writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, "unknown document type"))
		return
	}
	doc, err := h.docs.CreateDocument(r.Context(), projectID, userID(r), &services.CreateDocumentInput{
		Type:    t,
		Title:   req.Title,
		Summary: req.Summary,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, doc)
}

func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "docID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := h.docs.GetDocument(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, doc)
}

// Generate queues a TECH_SPEC or USER_GUIDE build and answers 202 with the job id.
func (h *DocumentsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.GenerateDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	taskID, err := h.docs.RequestGeneration(r.Context(), projectID, userID(r), models.DocumentType(req.Type))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusAccepted, types.TaskAccepted{TaskID: taskID})
}
