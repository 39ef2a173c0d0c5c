package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const assignmentColumns = `id, title, company, required_skills, required_values,
	desired_communication_style, team_culture, leadership_level, created_at`

func scanAssignment(row pgx.Row) (*AssignmentRow, error) {
	var a AssignmentRow
	err := row.Scan(&a.ID, &a.Title, &a.Company, &a.RequiredSkills, &a.RequiredValues,
		&a.DesiredCommunicationStyle, &a.TeamCulture, &a.LeadershipLevel, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAssignment retrieves an assignment by ID, returning nil when it does not exist
func (db *DB) GetAssignment(ctx context.Context, id uuid.UUID) (*AssignmentRow, error) {
	a, err := scanAssignment(db.pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return a, nil
}

// ListAssignments retrieves the most recent assignments
func (db *DB) ListAssignments(ctx context.Context, limit int) ([]AssignmentRow, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []AssignmentRow
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assignments, nil
}

// CreateAssignment inserts an assignment and returns the stored row
func (db *DB) CreateAssignment(ctx context.Context, a *AssignmentRow) (*AssignmentRow, error) {
	created, err := scanAssignment(db.pool.QueryRow(ctx,
		`INSERT INTO assignments (title, company, required_skills, required_values,
		     desired_communication_style, team_culture, leadership_level)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+assignmentColumns,
		a.Title, a.Company, a.RequiredSkills, a.RequiredValues,
		a.DesiredCommunicationStyle, a.TeamCulture, a.LeadershipLevel,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return created, nil
}
