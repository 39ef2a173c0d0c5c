package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/consultant-match/internal/observability"
	"github.com/jonathan/consultant-match/internal/pipeline"
	"github.com/jonathan/consultant-match/internal/records"
	"github.com/jonathan/consultant-match/internal/schemas"
	"github.com/jonathan/consultant-match/internal/types"
	files "github.com/jonathan/consultant-match/schemas"
)

type scoreOptions struct {
	assignmentPath  string
	consultantsPath string
	outPath         string
	seed            uint64
	letters         bool
}

func newScoreCmd(a *app) *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score consultants from JSON files against an assignment",
		Long: `Reads an assignment object and a list of consultant objects, validates both against the
embedded JSON schemas, and writes the ten best matches as JSON. Consultant entries that fail
validation are skipped with a warning.

Keys may be snake_case or camelCase. Experience may be a number or free text such as "7 years".`,
		Example: `  consultant_match score --assignment assignment.json --consultants consultants.json --out matches.json --seed 42`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.assignmentPath, "assignment", "a", "", "Path to the assignment JSON file (required)")
	cmd.Flags().StringVarP(&opts.consultantsPath, "consultants", "c", "", "Path to the consultants JSON file (required)")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed for reproducible success probabilities")
	cmd.Flags().BoolVar(&opts.letters, "letters", false, "Generate a match letter for every result (requires GEMINI_API_KEY)")

	_ = cmd.MarkFlagRequired("assignment")
	_ = cmd.MarkFlagRequired("consultants")

	return cmd
}

func runScore(cmd *cobra.Command, a *app, opts *scoreOptions) error {
	ctx := cmd.Context()

	assignment, err := readAssignment(opts.assignmentPath)
	if err != nil {
		return err
	}
	consultants, err := readConsultants(opts.consultantsPath, a.logger)
	if err != nil {
		return err
	}

	matchOpts := pipeline.MatchOptions{
		Letters: opts.letters || a.cfg.Letters,
		Seed:    a.cfg.Seed,
	}
	if cmd.Flags().Changed("seed") {
		matchOpts.Seed = &opts.seed
	}

	runnerOpts := pipeline.Options{Scorer: a.newScorer(), Logger: a.logger}
	printer := observability.NewPrinter(cmd.ErrOrStderr())
	if a.cfg.Verbose {
		runnerOpts.OnProgress = printer.PrintProgress
		printer.PrintAssignment(assignment)
	}

	if matchOpts.Letters {
		c := a.openCache(ctx)
		defer c.Close() //nolint:errcheck
		fn, closeFn, err := a.letterFunc(ctx, c)
		if err != nil {
			return err
		}
		defer closeFn()
		runnerOpts.Letters = fn
	}

	results, err := pipeline.NewRunner(nil, runnerOpts).Score(ctx, assignment, consultants, matchOpts)
	if err != nil {
		return err
	}

	if a.cfg.Verbose {
		printer.PrintMatches(results)
		for _, r := range results.Results {
			printer.PrintLetter(r)
		}
	}

	return writeResults(cmd.OutOrStdout(), opts.outPath, results)
}

func readAssignment(path string) (*types.Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assignment file: %w", err)
	}
	if err := schemas.Validate(files.Assignment, data); err != nil {
		return nil, fmt.Errorf("invalid assignment file %s: %w", path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse assignment file: %w", err)
	}
	return records.DecodeAssignment(raw)
}

func readConsultants(path string, logger *zap.Logger) ([]*types.Consultant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read consultants file: %w", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return nil, fmt.Errorf("invalid consultants file %s: expected a JSON array of consultant objects", path)
	}

	// Each entry is checked on its own so one bad record does not abort the batch
	consultants, errs := records.DecodeConsultantsJSON(items, func(item []byte) error {
		return schemas.Validate(files.Consultant, item)
	})
	for _, err := range errs {
		logger.Warn("ignoring consultant", zap.String("file", path), zap.Error(err))
	}
	return consultants, nil
}

// writeResults checks the results against the output schema and writes them
// to path, or to stdout when path is empty.
func writeResults(stdout io.Writer, path string, results *types.MatchResults) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := schemas.Validate(files.MatchResults, data); err != nil {
		return fmt.Errorf("results failed validation: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
