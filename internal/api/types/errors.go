package types

import (
	"errors"

	appErr "github.com/command-deck/engine/pkg/errors"
)

func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var e *appErr.AppError
	if errors.As(err, &e) {
		apiErr := &APIError{Code: string(e.Code), Message: e.Message}
		// internal details stay in the logs
		if e.Err != nil && e.Code == appErr.CodeInvalid {
			apiErr.Details = e.Err.Error()
		}
		return apiErr
	}
	return &APIError{Code: string(appErr.CodeUnknown), Message: err.Error()}
}
