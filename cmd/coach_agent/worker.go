package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/queue"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume queued pipeline runs",
	Long: `Start a pool of workers that consume pipeline run requests from the queue, run
the pipeline for each and publish status updates to the updates exchange.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().String("queue-url", "", "AMQP URL (defaults to RABBITMQ_URL env var)")
	workerCmd.Flags().Int("workers", 0, "Number of concurrent consumers (default 2)")
	workerCmd.Flags().String("db-driver", "", "Database driver: postgres or sqlite")
	workerCmd.Flags().String("db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	workerCmd.Flags().String("db-path", "", "SQLite database file")
	workerCmd.Flags().String("api-key", "", "Gemini API key (defaults to GEMINI_API_KEY env var)")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Queue.URL == "" {
		return errors.New("RABBITMQ_URL environment variable or --queue-url flag is required")
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

	coach, err := newCoach(ctx, cfg, st, nil, log)
	if err != nil {
		return err
	}

	pool := &queue.Pool{
		URL:      cfg.Queue.URL,
		Queue:    cfg.Queue.Queue,
		Exchange: cfg.Queue.Exchange,
		Workers:  cfg.Queue.Workers,
		Handler:  coach.HandleRunMessage,
		Logger:   log,
	}
	log.Info("starting workers", zap.Int("workers", cfg.Queue.Workers), zap.String("queue", cfg.Queue.Queue))
	return pool.Run(ctx)
}
