package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/consultant-match/internal/pipeline"
	"github.com/jonathan/consultant-match/internal/server"
	"github.com/jonathan/consultant-match/internal/server/middleware"
	"github.com/jonathan/consultant-match/internal/server/ratelimit"
)

type serveOptions struct {
	port    int
	migrate bool
}

func newServeCmd(a *app) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server exposing the scoring endpoints.

Without a database only POST /matches is available. Letters are enabled when GEMINI_API_KEY is set,
and bearer tokens are required when JWT_SECRET is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, a, opts)
		},
	}

	cmd.Flags().IntVar(&opts.port, "port", 0, "Port to listen on (default: config port, 8080)")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "Create the database tables before serving")

	return cmd
}

func runServe(cmd *cobra.Command, a *app, opts *serveOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := a.cfg.Port
	if cmd.Flags().Changed("port") {
		port = opts.port
	}

	checks := make(map[string]server.HealthCheck)
	runnerOpts := pipeline.Options{Scorer: a.newScorer(), Logger: a.logger}

	var store pipeline.Store
	if a.cfg.DatabaseURL != "" {
		database, err := a.connectDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		if opts.migrate {
			if err := database.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		store = database
		checks["database"] = database.Ping
	} else {
		a.logger.Warn("database_url not set; stored assignment endpoints are disabled")
	}

	redisCache := a.openCache(ctx)
	defer redisCache.Close() //nolint:errcheck
	if a.cfg.RedisURL != "" {
		checks["cache"] = redisCache.Ping
	}
	if redisCache.Enabled() {
		runnerOpts.Cache = redisCache
	}

	if a.cfg.APIKey != "" {
		fn, closeFn, err := a.letterFunc(ctx, redisCache)
		if err != nil {
			return err
		}
		defer closeFn()
		runnerOpts.Letters = fn
	}

	var auth middleware.TokenValidator
	if a.cfg.JWT.Enabled() {
		auth = server.NewJWTVerifier(a.cfg.JWT).AsTokenValidator()
	}

	srv := server.New(server.Options{
		Port:        port,
		CORSOrigins: a.cfg.CORSOrigins,
		Runner:      pipeline.NewRunner(store, runnerOpts),
		RateLimiter: ratelimit.NewLimiter(ratelimit.FromSettings(a.cfg.RateLimit)),
		Auth:        auth,
		Checks:      checks,
		Logger:      a.logger,
	})

	a.logger.Info("serving",
		zap.Int("port", port),
		zap.Bool("database", store != nil),
		zap.Bool("letters", runnerOpts.Letters != nil),
		zap.Bool("auth", auth != nil),
	)

	return srv.Start(ctx)
}
