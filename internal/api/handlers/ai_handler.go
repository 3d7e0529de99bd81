package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/api/types"
	"github.com/command-deck/engine/internal/generation"
	"github.com/command-deck/engine/pkg/logger"
)

// AIHandler forwards prompts to the generation service.
type AIHandler struct {
	gen generation.Generator
}

func NewAIHandler(gen generation.Generator) *AIHandler {
	return &AIHandler{gen: gen}
}

// Generate answers 400 when prompt or systemPrompt is missing and 500 with the
// error's message when generation fails.
func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, types.GenerateResponse{Error: "Invalid JSON body"})
		return
	}
	if req.Prompt == "" || req.SystemPrompt == "" {
		writeJSON(w, http.StatusBadRequest, types.GenerateResponse{Error: "Missing prompt or systemPrompt"})
		return
	}

	out, err := h.gen.Generate(r.Context(), generation.Request{
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
		JSONMode:     req.JSONMode,
	})
	if err != nil {
		logger.L().Error("ai proxy generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, types.GenerateResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, types.GenerateResponse{Result: out})
}
