package letters

import (
	"errors"
	"fmt"
)

// ErrEmptyLetter is returned when the model answers with no text
var ErrEmptyLetter = errors.New("model returned an empty letter")

var errNilConsultant = errors.New("consultant record is nil")

// GenerationError wraps a failed letter generation for one consultant
type GenerationError struct {
	ConsultantID string
	Cause        error
}

func (e *GenerationError) Error() string {
	if e.ConsultantID != "" {
		return fmt.Sprintf("letter generation failed for consultant %s: %v", e.ConsultantID, e.Cause)
	}
	return fmt.Sprintf("letter generation failed: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
