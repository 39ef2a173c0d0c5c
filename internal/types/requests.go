package types

import (
	"github.com/go-playground/validator/v10"
)

// MaxConsultantsPerRequest bounds the batch size accepted by the API.
const MaxConsultantsPerRequest = 5000

// MatchRequest is the body of an in-memory scoring request.
type MatchRequest struct {
	Assignment  *Assignment   `json:"assignment" validate:"required"`
	Consultants []*Consultant `json:"consultants" validate:"max=5000"`
	Letters     bool          `json:"letters,omitempty"`
	Seed        *uint64       `json:"seed,omitempty"`
}

// StoredMatchRequest is the body of a scoring request for a persisted assignment.
type StoredMatchRequest struct {
	Letters bool    `json:"letters,omitempty"`
	Persist *bool   `json:"persist,omitempty"`
	Seed    *uint64 `json:"seed,omitempty"`
	Limit   int     `json:"limit,omitempty" validate:"omitempty,min=1,max=5000"`
}

// Validate validates the MatchRequest using the validator.
func (r *MatchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates an assignment on its own, as when it is stored.
func (a *Assignment) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}

// Validate validates the StoredMatchRequest using the validator.
func (r *StoredMatchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ShouldPersist reports whether results should be stored, defaulting to true.
func (r *StoredMatchRequest) ShouldPersist() bool {
	return r.Persist == nil || *r.Persist
}
