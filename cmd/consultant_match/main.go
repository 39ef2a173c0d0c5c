// Package main provides the consultant_match command line tool and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/consultant-match/internal/config"
	"github.com/jonathan/consultant-match/internal/logging"
)

// app carries the state shared by every subcommand once the root has parsed
// its persistent flags.
type app struct {
	configPath string
	verbose    bool
	jsonLogs   bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "consultant_match",
		Short: "Rank consultants against client assignments",
		Long: `consultant_match scores consultants against a client assignment on technical and cultural fit,
returns the ten best matches, and can write a short match letter for each of them.

Configuration is read from an optional file (--config) and CM_* environment variables.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a config file (JSON, YAML or TOML)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Print detailed progress and debug logs")
	rootCmd.PersistentFlags().BoolVar(&a.jsonLogs, "json", false, "Write logs as JSON")

	rootCmd.AddCommand(
		newScoreCmd(a),
		newMatchCmd(a),
		newImportCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads the configuration, applies flag overrides and builds the logger
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = a.verbose
	}
	if cmd.Flags().Changed("json") {
		cfg.JSONLogs = a.jsonLogs
	}

	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return err
	}
	a.cfg = &merged

	logger, err := logging.New(merged.JSONLogs, merged.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.logger != nil {
		// Sync on stderr returns EINVAL on some platforms
		_ = a.logger.Sync()
	}
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
