// Package validators holds the shared struct validator and its custom tags.
package validators

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/command-deck/engine/internal/workflow"
)

var (
	once sync.Once
	v    *validator.Validate
)

// New returns the process-wide validator with custom tags registered:
//
//	stage        a lifecycle stage name
//	has_at       string contains "@"
func New() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("stage", func(fl validator.FieldLevel) bool {
			_, err := workflow.ParseStage(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("has_at", func(fl validator.FieldLevel) bool {
			return strings.Contains(fl.Field().String(), "@")
		})
	})
	return v
}

// Message flattens validation errors into one human readable line.
func Message(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "min", "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max", "lte":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
