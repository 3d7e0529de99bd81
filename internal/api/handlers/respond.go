package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/api/middleware"
	"github.com/command-deck/engine/internal/api/types"
	"github.com/command-deck/engine/internal/validators"
	appErr "github.com/command-deck/engine/pkg/errors"
	"github.com/command-deck/engine/pkg/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.APIResponse{Success: true, Data: data})
}

// writeError renders err with the status its code maps to.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := appErr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, types.APIResponse{Success: false, Error: types.FromAppError(err)})
}

func writeErrorStr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: &types.APIError{Code: "invalid", Message: msg}})
}

// decodeJSON reads a JSON body into dst and validates it when it carries validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return appErr.New(appErr.CodeInvalid, "request body is required")
		}
		return appErr.Wrap(err, appErr.CodeInvalid, "invalid json")
	}
	if err := validators.New().Struct(dst); err != nil {
		return appErr.New(appErr.CodeInvalid, validators.Message(err))
	}
	return nil
}

func userID(r *http.Request) uuid.UUID {
	return middleware.GetUserID(r.Context())
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, appErr.New(appErr.CodeInvalid, "invalid "+name)
	}
	return id, nil
}

// paginate slices items per the page and page_size query params.
func paginate[T any](r *http.Request, items []T) ([]T, *types.Meta) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	// pages past the end are empty; the bound is checked before multiplying so a
	// huge page number cannot overflow the offset
	start := len(items)
	if page-1 <= len(items)/size {
		start = min((page-1)*size, len(items))
	}
	end := min(start+size, len(items))
	return items[start:end], &types.Meta{
		RequestID: middleware.GetRequestID(r.Context()),
		Page:      page,
		PageSize:  size,
		Total:     int64(len(items)),
	}
}
