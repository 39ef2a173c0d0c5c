package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/consultant-match/internal/observability"
	"github.com/jonathan/consultant-match/internal/pipeline"
)

type matchOptions struct {
	assignmentID string
	persist      bool
	letters      bool
	seed         uint64
	limit        int
	outPath      string
}

func newMatchCmd(a *app) *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match the stored consultant pool against a stored assignment",
		Long: `Loads an assignment and every available consultant from PostgreSQL, scores them, and
prints the ten best matches. With --persist the ranking is saved as a new match run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMatch(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.assignmentID, "assignment-id", "", "Assignment UUID (required)")
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "Save the ranking as a match run")
	cmd.Flags().BoolVar(&opts.letters, "letters", false, "Generate a match letter for every result (requires GEMINI_API_KEY)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed for reproducible success probabilities")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of consultants to load (default: all available, capped)")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Output file (default: stdout)")

	_ = cmd.MarkFlagRequired("assignment-id")

	return cmd
}

func runMatch(cmd *cobra.Command, a *app, opts *matchOptions) error {
	ctx := cmd.Context()

	id, err := uuid.Parse(opts.assignmentID)
	if err != nil {
		return fmt.Errorf("invalid --assignment-id %q: %w", opts.assignmentID, err)
	}
	if opts.limit < 0 {
		return fmt.Errorf("--limit must be non-negative")
	}

	database, err := a.connectDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	matchOpts := pipeline.MatchOptions{
		Letters:   opts.letters || a.cfg.Letters,
		Persist:   opts.persist,
		Seed:      a.cfg.Seed,
		PoolLimit: opts.limit,
	}
	if cmd.Flags().Changed("seed") {
		matchOpts.Seed = &opts.seed
	}

	runnerOpts := pipeline.Options{Scorer: a.newScorer(), Logger: a.logger}
	printer := observability.NewPrinter(cmd.ErrOrStderr())
	if a.cfg.Verbose {
		runnerOpts.OnProgress = printer.PrintProgress
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

	results, err := pipeline.NewRunner(database, runnerOpts).MatchAssignment(ctx, id, matchOpts)
	if err != nil {
		return err
	}

	if a.cfg.Verbose {
		printer.PrintMatches(results)
	}
	return writeResults(cmd.OutOrStdout(), opts.outPath, results)
}
