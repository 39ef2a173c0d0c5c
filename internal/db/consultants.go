package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const consultantColumns = `id, name, title, skills, "values", communication_style,
	team_fit, experience_years, experience, leadership, available, created_at`

func scanConsultant(row pgx.Row) (*ConsultantRow, error) {
	var c ConsultantRow
	err := row.Scan(&c.ID, &c.Name, &c.Title, &c.Skills, &c.Values, &c.CommunicationStyle,
		&c.TeamFit, &c.ExperienceYears, &c.Experience, &c.Leadership, &c.Available, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// buildConsultantQuery renders the list query and its arguments for the given filters
func buildConsultantQuery(filters ConsultantFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = DefaultListLimit
	}

	query := `SELECT ` + consultantColumns + ` FROM consultants WHERE 1=1`
	args := []any{}
	argNum := 1

	if !filters.IncludeUnavailable {
		query += " AND available"
	}

	query += fmt.Sprintf(" ORDER BY created_at ASC, id ASC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	argNum++

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	return query, args
}

// ListConsultants retrieves one page of consultants in creation order. Only
// available consultants are returned unless the filters ask otherwise.
func (db *DB) ListConsultants(ctx context.Context, filters ConsultantFilters) ([]ConsultantRow, error) {
	query, args := buildConsultantQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultants: %w", err)
	}
	defer rows.Close()

	var consultants []ConsultantRow
	for rows.Next() {
		c, err := scanConsultant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan consultant: %w", err)
		}
		consultants = append(consultants, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate consultants: %w", err)
	}
	return consultants, nil
}

// CreateConsultant inserts a consultant and returns the stored row
func (db *DB) CreateConsultant(ctx context.Context, c *ConsultantRow) (*ConsultantRow, error) {
	created, err := scanConsultant(db.pool.QueryRow(ctx,
		`INSERT INTO consultants (name, title, skills, "values", communication_style,
		     team_fit, experience_years, experience, leadership, available)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+consultantColumns,
		c.Name, c.Title, c.Skills, c.Values, c.CommunicationStyle,
		c.TeamFit, c.ExperienceYears, c.Experience, c.Leadership, c.Available,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create consultant: %w", err)
	}
	return created, nil
}
