package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/consultant-match/internal/db"
	"github.com/jonathan/consultant-match/internal/pipeline"
	"github.com/jonathan/consultant-match/internal/records"
	"github.com/jonathan/consultant-match/internal/server/middleware"
	"github.com/jonathan/consultant-match/internal/types"
)

// scoreRequest is the wire form of POST /matches. Records are decoded
// loosely so camelCase and snake_case payloads are both accepted.
type scoreRequest struct {
	Assignment  map[string]any    `json:"assignment"`
	Consultants []json.RawMessage `json:"consultants"`
	Letters     bool              `json:"letters"`
	Seed        *uint64           `json:"seed"`
}

// handleScore scores the consultants in the body against the assignment in the body
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var body scoreRequest
	if err := decodeBody(w, r, &body, false); err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	req, err := s.toMatchRequest(body)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	results, err := s.runner.Score(r.Context(), req.Assignment, req.Consultants, pipeline.MatchOptions{
		Letters: req.Letters,
		Seed:    req.Seed,
	})
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, results)
}

// toMatchRequest decodes the loose records and validates the result
func (s *Server) toMatchRequest(body scoreRequest) (*types.MatchRequest, error) {
	if body.Assignment == nil {
		return nil, &ErrValidation{Field: "assignment", Message: "is required"}
	}

	assignment, err := records.DecodeAssignment(body.Assignment)
	if err != nil {
		return nil, &ErrValidation{Field: "assignment", Message: err.Error()}
	}

	consultants, errs := records.DecodeConsultantsJSON(body.Consultants, nil)
	for _, err := range errs {
		// Undecodable entries stay nil and are skipped by the scorer
		s.logger.Warn("ignoring consultant", zap.Error(err))
	}

	req := &types.MatchRequest{
		Assignment:  assignment,
		Consultants: consultants,
		Letters:     body.Letters,
		Seed:        body.Seed,
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	return req, nil
}

// handleMatchAssignment scores the stored consultant pool against a stored assignment
func (s *Server) handleMatchAssignment(w http.ResponseWriter, r *http.Request) {
	id, opts, err := s.storedMatchOptions(w, r)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	results, err := s.runner.MatchAssignment(r.Context(), id, opts)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, results)
}

// handleMatchAssignmentStream runs a stored match and streams progress as server-sent events
func (s *Server) handleMatchAssignmentStream(w http.ResponseWriter, r *http.Request) {
	id, opts, err := s.storedMatchOptions(w, r)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	stream, err := newMatchStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if err := stream.Progress(event); err != nil {
			s.logger.Debug("failed to write progress event", zap.Error(err))
		}
	}

	results, err := s.runner.MatchAssignment(r.Context(), id, opts)
	if err != nil {
		status := HTTPStatus(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			s.logger.Error("streamed match failed", zap.String("assignment_id", id.String()), zap.Error(err))
			message = "internal server error"
		}
		if err := stream.Fail(status, message); err != nil {
			s.logger.Debug("failed to write error event", zap.Error(err))
		}
		return
	}

	if err := stream.Result(results); err != nil {
		s.logger.Debug("failed to write result event", zap.Error(err))
		return
	}
	if err := stream.Complete(results); err != nil {
		s.logger.Debug("failed to write complete event", zap.Error(err))
	}
}

// handleLatestMatches returns the most recent persisted ranking for an assignment
func (s *Server) handleLatestMatches(w http.ResponseWriter, r *http.Request) {
	id, err := assignmentID(r)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	results, err := s.runner.LatestMatches(r.Context(), id)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	if results == nil {
		s.errorFromErr(w, r, &ErrNotFound{Resource: "match run", ID: id.String()})
		return
	}

	s.jsonResponse(w, http.StatusOK, results)
}

// handleListAssignments lists stored assignments, newest first. ?limit caps the count.
func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > db.DefaultListLimit {
			s.errorFromErr(w, r, &ErrValidation{
				Field:   "limit",
				Message: fmt.Sprintf("limit must be between 1 and %d", db.DefaultListLimit),
			})
			return
		}
		limit = n
	}

	assignments, err := s.runner.ListAssignments(r.Context(), limit)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"assignments": assignments,
		"count":       len(assignments),
	})
}

// handleCreateAssignment stores the assignment in the body and returns it with its id
func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeBody(w, r, &body, false); err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	if body == nil {
		s.errorFromErr(w, r, &ErrValidation{Message: "assignment must be a JSON object"})
		return
	}

	assignment, err := records.DecodeAssignment(body)
	if err != nil {
		s.errorFromErr(w, r, &ErrValidation{Message: err.Error()})
		return
	}
	if err := assignment.Validate(); err != nil {
		s.errorFromErr(w, r, validationError(err))
		return
	}

	created, err := s.runner.CreateAssignment(r.Context(), assignment)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	s.logger.Debug("assignment stored", zap.String("assignment_id", created.ID), zap.String("subject", requester(r)))
	s.jsonResponse(w, http.StatusCreated, created)
}

// importRequest is the wire form of POST /consultants
type importRequest struct {
	Consultants []json.RawMessage `json:"consultants"`
}

// handleImportConsultants stores the consultants in the body. Entries that
// cannot be decoded are skipped and counted.
func (s *Server) handleImportConsultants(w http.ResponseWriter, r *http.Request) {
	var body importRequest
	if err := decodeBody(w, r, &body, false); err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	if len(body.Consultants) == 0 {
		s.errorFromErr(w, r, &ErrValidation{Field: "consultants", Message: "at least one consultant is required"})
		return
	}
	if len(body.Consultants) > types.MaxConsultantsPerRequest {
		s.errorFromErr(w, r, &ErrValidation{
			Field:   "consultants",
			Message: fmt.Sprintf("at most %d consultants per request", types.MaxConsultantsPerRequest),
		})
		return
	}

	consultants, errs := records.DecodeConsultantsJSON(body.Consultants, nil)
	for _, err := range errs {
		s.logger.Warn("ignoring consultant", zap.Error(err))
	}

	stored, err := s.runner.ImportConsultants(r.Context(), consultants)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"consultants": stored,
		"count":       len(stored),
		"skipped":     len(errs),
	})
}

// storedMatchOptions parses the assignment id and the optional request body
func (s *Server) storedMatchOptions(w http.ResponseWriter, r *http.Request) (uuid.UUID, pipeline.MatchOptions, error) {
	id, err := assignmentID(r)
	if err != nil {
		return uuid.Nil, pipeline.MatchOptions{}, err
	}

	var req types.StoredMatchRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		return uuid.Nil, pipeline.MatchOptions{}, err
	}
	if err := req.Validate(); err != nil {
		return uuid.Nil, pipeline.MatchOptions{}, validationError(err)
	}

	s.logger.Debug("stored match requested",
		zap.String("assignment_id", id.String()),
		zap.String("subject", requester(r)),
		zap.Bool("persist", req.ShouldPersist()),
	)

	return id, pipeline.MatchOptions{
		Letters:   req.Letters,
		Persist:   req.ShouldPersist(),
		Seed:      req.Seed,
		PoolLimit: req.Limit,
	}, nil
}

// requester is the authenticated subject, empty when auth is disabled
func requester(r *http.Request) string {
	subject, err := middleware.GetSubject(r)
	if err != nil {
		return ""
	}
	return subject
}

func assignmentID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: fmt.Sprintf("invalid assignment id %q", raw)}
	}
	return id, nil
}

// decodeBody decodes a JSON body into dst. An empty body is an error unless optional.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if optional {
				return nil
			}
			return &ErrValidation{Message: "request body is empty"}
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
		}
		return &ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	return nil
}

// validationError flattens validator errors into a single ErrValidation
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ErrValidation{Message: err.Error()}
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
	}
	return &ErrValidation{Field: fieldErrs[0].Field(), Message: strings.Join(fields, "; ")}
}
