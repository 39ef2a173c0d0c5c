package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/consultant-match/internal/records"
	"github.com/jonathan/consultant-match/internal/types"
)

// CreateAssignment stores an assignment and returns it with its new id
func (r *Runner) CreateAssignment(ctx context.Context, assignment *types.Assignment) (*types.Assignment, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment is required")
	}

	row := records.ToAssignmentRow(*assignment)
	created, err := r.store.CreateAssignment(ctx, &row)
	if err != nil {
		return nil, err
	}
	stored := records.FromAssignmentRow(*created)
	r.logger.Info("assignment created", zap.String("assignment_id", stored.ID), zap.String("title", stored.Title))
	return &stored, nil
}

// ImportConsultants stores every non-nil consultant in order and returns the
// stored records. Nothing is rolled back when an insert fails; the consultants
// stored before the failure are returned along with the error.
func (r *Runner) ImportConsultants(ctx context.Context, consultants []*types.Consultant) ([]*types.Consultant, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}

	stored := make([]*types.Consultant, 0, len(consultants))
	for i, c := range consultants {
		if c == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stored, err
		}

		row := records.ToConsultantRow(*c)
		created, err := r.store.CreateConsultant(ctx, &row)
		if err != nil {
			return stored, fmt.Errorf("consultant %d: %w", i, err)
		}
		out := records.FromConsultantRow(*created)
		stored = append(stored, &out)
	}

	r.logger.Info("consultants imported", zap.Int("count", len(stored)), zap.Int("skipped", len(consultants)-len(stored)))
	return stored, nil
}
