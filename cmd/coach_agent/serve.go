package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/queue"
	"github.com/victorzhu443/firstplay-backend/internal/server"
	"github.com/victorzhu443/firstplay-backend/internal/server/ratelimit"
	"github.com/victorzhu443/firstplay-backend/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for uploading resumes, submitting
job descriptions, running gap analysis and running the full coaching pipeline.

When a queue URL is configured, POST /api/pipeline/enqueue hands runs to workers
started with the worker command.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "Port to listen on (default 8080)")
	serveCmd.Flags().String("db-driver", "", "Database driver: postgres or sqlite")
	serveCmd.Flags().String("db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	serveCmd.Flags().String("db-path", "", "SQLite database file")
	serveCmd.Flags().String("api-key", "", "Gemini API key (defaults to GEMINI_API_KEY env var)")
	serveCmd.Flags().Bool("use-browser", false, "Render JavaScript-heavy job pages in headless Chrome")
	serveCmd.Flags().String("queue-url", "", "AMQP URL for queued pipeline runs (defaults to RABBITMQ_URL env var)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var runQueue service.RunQueue
	if cfg.Queue.URL != "" {
		pub, err := queue.Dial(cfg.Queue.URL, cfg.Queue.Queue, cfg.Queue.Exchange)
		if err != nil {
			return err
		}
		defer func() { _ = pub.Close() }()
		runQueue = pub
	} else {
		log.Info("queue not configured, /api/pipeline/enqueue is disabled")
	}

	coach, err := newCoach(ctx, cfg, st, runQueue, log)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	srv := server.New(server.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      ratelimit.NewConfig(cfg.Server.RateLimit, cfg.Server.RateBurst),
	}, coach, log)

	log.Info("starting coach api",
		zap.String("version", version),
		zap.String("database", cfg.Database.Driver),
		zap.Bool("queue", runQueue != nil))
	return srv.Start(ctx)
}
