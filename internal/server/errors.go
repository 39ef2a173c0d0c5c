// Package server provides the HTTP REST API for consultant matching.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/consultant-match/internal/pipeline"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var notFound *ErrNotFound

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, pipeline.ErrAssignmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrNoStore), errors.Is(err, pipeline.ErrLettersUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
