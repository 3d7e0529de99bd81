package handlers

import (
	"encoding/json"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/api/types"
	"github.com/command-deck/engine/internal/services"
	"github.com/command-deck/engine/pkg/logger"
)

type InviteHandler struct {
	invites services.InviteService
}

func NewInviteHandler(invites services.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

// Request accepts an email as a form field or JSON body and always answers with
// {message, success}.
func (h *InviteHandler) Request(w http.ResponseWriter, r *http.Request) {
	email, err := inviteEmail(w, r)
	if err != nil {
		logger.L().Error("invite request unreadable", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, services.InviteResult{Message: services.MsgSystemError})
		return
	}

	res := h.invites.RequestInvite(r.Context(), email)
	status := http.StatusOK
	switch res.Outcome {
	case services.InviteInvalid:
		status = http.StatusBadRequest
	case services.InviteFailed:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}

func inviteEmail(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var req types.InviteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return req.Email, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostForm.Get("email"), nil
}
