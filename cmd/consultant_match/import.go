package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/consultant-match/internal/pipeline"
	"github.com/jonathan/consultant-match/internal/types"
)

type importOptions struct {
	assignmentPath  string
	consultantsPath string
}

// importSummary is printed after an import
type importSummary struct {
	AssignmentID  string   `json:"assignment_id,omitempty"`
	ConsultantIDs []string `json:"consultant_ids"`
	Skipped       int      `json:"skipped"`
}

func newImportCmd(a *app) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store an assignment and consultants from JSON files",
		Long: `Reads the same files as score, validates them against the embedded JSON schemas and
inserts them into PostgreSQL. Consultant entries that fail validation are skipped with a warning.
Prints the new ids as JSON; pass the assignment id to match --assignment-id.`,
		Example: `  consultant_match import --assignment assignment.json --consultants consultants.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.assignmentPath, "assignment", "a", "", "Path to an assignment JSON file")
	cmd.Flags().StringVarP(&opts.consultantsPath, "consultants", "c", "", "Path to a consultants JSON file")
	cmd.MarkFlagsOneRequired("assignment", "consultants")

	return cmd
}

func runImport(cmd *cobra.Command, a *app, opts *importOptions) error {
	ctx := cmd.Context()

	var assignment *types.Assignment
	if opts.assignmentPath != "" {
		var err error
		if assignment, err = readAssignment(opts.assignmentPath); err != nil {
			return err
		}
		if err := assignment.Validate(); err != nil {
			return fmt.Errorf("invalid assignment file %s: %w", opts.assignmentPath, err)
		}
	}

	var consultants []*types.Consultant
	if opts.consultantsPath != "" {
		var err error
		if consultants, err = readConsultants(opts.consultantsPath, a.logger); err != nil {
			return err
		}
	}

	database, err := a.connectDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	runner := pipeline.NewRunner(database, pipeline.Options{Logger: a.logger})
	return importRecords(ctx, runner, assignment, consultants, cmd.OutOrStdout())
}

// importRecords stores the assignment and consultants that are set and writes
// a summary of the new ids to w.
func importRecords(ctx context.Context, runner *pipeline.Runner, assignment *types.Assignment, consultants []*types.Consultant, w io.Writer) error {
	summary := importSummary{ConsultantIDs: []string{}}

	if assignment != nil {
		created, err := runner.CreateAssignment(ctx, assignment)
		if err != nil {
			return err
		}
		summary.AssignmentID = created.ID
	}

	if len(consultants) > 0 {
		stored, err := runner.ImportConsultants(ctx, consultants)
		if err != nil {
			return fmt.Errorf("import stopped after %d consultants: %w", len(stored), err)
		}
		for _, c := range stored {
			summary.ConsultantIDs = append(summary.ConsultantIDs, c.ID)
		}
		summary.Skipped = len(consultants) - len(stored)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal import summary: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
