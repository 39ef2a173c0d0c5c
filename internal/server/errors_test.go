package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/consultant-match/internal/pipeline"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: &ErrValidation{Field: "assignment", Message: "is required"}, want: http.StatusBadRequest},
		{name: "wrapped validation", err: fmt.Errorf("decode: %w", &ErrValidation{Message: "bad"}), want: http.StatusBadRequest},
		{name: "not found", err: &ErrNotFound{Resource: "assignment", ID: "x"}, want: http.StatusNotFound},
		{name: "assignment not found", err: fmt.Errorf("%w: x", pipeline.ErrAssignmentNotFound), want: http.StatusNotFound},
		{name: "no store", err: pipeline.ErrNoStore, want: http.StatusServiceUnavailable},
		{name: "letters unavailable", err: pipeline.ErrLettersUnavailable, want: http.StatusServiceUnavailable},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "validation error: seed - must be positive", (&ErrValidation{Field: "seed", Message: "must be positive"}).Error())
	assert.Equal(t, "validation error: body is empty", (&ErrValidation{Message: "body is empty"}).Error())
	assert.Equal(t, "assignment not found: 42", (&ErrNotFound{Resource: "assignment", ID: "42"}).Error())
}
