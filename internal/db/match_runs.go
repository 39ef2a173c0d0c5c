package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveMatchRun stores a run and its ranked results in a single transaction
// and returns the new run ID.
func (db *DB) SaveMatchRun(ctx context.Context, input MatchRunInput) (uuid.UUID, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	runID := uuid.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO match_runs (id, assignment_id, seed, candidate_count)
		 VALUES ($1, $2, $3, $4)`,
		runID, input.AssignmentID, input.Seed, input.CandidateCount,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create match run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range input.Results {
		batch.Queue(
			`INSERT INTO match_results (run_id, consultant_id, rank, technical_fit, cultural_fit,
			     total_match_score, success_probability, matched_skills, matched_values, letter)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			runID, r.ConsultantID, r.Rank, r.TechnicalFit, r.CulturalFit,
			r.TotalMatchScore, r.SuccessProbability, r.MatchedSkills, r.MatchedValues, r.Letter,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return uuid.Nil, fmt.Errorf("failed to save match results: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit match run: %w", err)
	}
	return runID, nil
}

// GetLatestMatchRun retrieves the newest run for an assignment, or nil when none exists
func (db *DB) GetLatestMatchRun(ctx context.Context, assignmentID uuid.UUID) (*MatchRun, error) {
	var run MatchRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, assignment_id, seed, candidate_count, created_at
		 FROM match_runs WHERE assignment_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		assignmentID,
	).Scan(&run.ID, &run.AssignmentID, &run.Seed, &run.CandidateCount, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match run: %w", err)
	}
	return &run, nil
}

// ListMatchResults retrieves the ranked results of the newest run for an
// assignment. Both return values are nil when the assignment was never matched.
func (db *DB) ListMatchResults(ctx context.Context, assignmentID uuid.UUID) (*MatchRun, []MatchResultRow, error) {
	run, err := db.GetLatestMatchRun(ctx, assignmentID)
	if err != nil || run == nil {
		return nil, nil, err
	}

	rows, err := db.pool.Query(ctx,
		`SELECT r.run_id, r.consultant_id, COALESCE(c.name, ''), r.rank, r.technical_fit,
		        r.cultural_fit, r.total_match_score, r.success_probability,
		        r.matched_skills, r.matched_values, r.letter
		 FROM match_results r
		 LEFT JOIN consultants c ON c.id = r.consultant_id
		 WHERE r.run_id = $1
		 ORDER BY r.rank ASC`,
		run.ID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list match results: %w", err)
	}
	defer rows.Close()

	var results []MatchResultRow
	for rows.Next() {
		var r MatchResultRow
		if err := rows.Scan(&r.RunID, &r.ConsultantID, &r.ConsultantName, &r.Rank, &r.TechnicalFit,
			&r.CulturalFit, &r.TotalMatchScore, &r.SuccessProbability,
			&r.MatchedSkills, &r.MatchedValues, &r.Letter); err != nil {
			return nil, nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate match results: %w", err)
	}
	return run, results, nil
}
