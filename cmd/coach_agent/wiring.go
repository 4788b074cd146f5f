package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/blob"
	"github.com/victorzhu443/firstplay-backend/internal/config"
	"github.com/victorzhu443/firstplay-backend/internal/db"
	"github.com/victorzhu443/firstplay-backend/internal/db/sqlite"
	"github.com/victorzhu443/firstplay-backend/internal/fetch"
	"github.com/victorzhu443/firstplay-backend/internal/generation"
	"github.com/victorzhu443/firstplay-backend/internal/ingestion"
	"github.com/victorzhu443/firstplay-backend/internal/llm"
	"github.com/victorzhu443/firstplay-backend/internal/logger"
	"github.com/victorzhu443/firstplay-backend/internal/parsing"
	"github.com/victorzhu443/firstplay-backend/internal/rewriting"
	"github.com/victorzhu443/firstplay-backend/internal/service"
)

// flagKeys maps command flags to the config keys they override.
var flagKeys = map[string]string{
	"port":        "server.port",
	"db-driver":   "database.driver",
	"db-url":      "database.url",
	"db-path":     "database.path",
	"api-key":     "llm.api-key",
	"use-browser": "fetch.use-browser",
	"queue-url":   "queue.url",
	"workers":     "queue.workers",
}

// loadConfig reads the config file and environment, applies the flags cmd
// defines and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(v, configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Log.JSON, cfg.Log.Debug || verbose)
}

// store is a service.Store that owns its database handle.
type store interface {
	service.Store
	Migrate(ctx context.Context) error
	Close()
}

// openStore connects to the configured database and applies the schema.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		database, err := db.Connect(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, err
		}
		return database, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// llmConfig converts the file/env model settings into a client configuration.
func llmConfig(cfg config.LLMConfig) *llm.Config {
	c := llm.DefaultConfig()
	c.Provider = llm.Provider(cfg.Provider)
	c.Temperature = cfg.Temperature
	c.Project = cfg.Project
	c.Location = cfg.Location
	for tier, model := range cfg.Models {
		c.Models[llm.ModelTier(tier)] = model
	}
	return c
}

func newLLMFactory(cfg config.LLMConfig) (llm.Factory, error) {
	if cfg.Provider == config.ProviderGemini && cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	return llm.ConfigFactory{Config: llmConfig(cfg), APIKey: cfg.APIKey}, nil
}

func newFetcher(cfg config.FetchConfig, log *zap.Logger) *ingestion.JobFetcher {
	opts := fetch.DefaultOptions()
	if cfg.TimeoutSeconds > 0 {
		opts.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	f := &ingestion.JobFetcher{Options: opts, Logger: log}
	if cfg.UseBrowser {
		f.Renderer = &fetch.Browser{Logger: log}
	}
	return f
}

// newBlobs returns nil when no bucket is configured.
func newBlobs(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (service.BlobStore, error) {
	s, err := blob.New(ctx, cfg)
	if errors.Is(err, blob.ErrDisabled) {
		log.Info("blob storage disabled, uploaded files will not be kept")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newCoach builds the coaching service on st. q may be nil.
func newCoach(ctx context.Context, cfg *config.Config, st store, q service.RunQueue, log *zap.Logger) (*service.Coach, error) {
	factory, err := newLLMFactory(cfg.LLM)
	if err != nil {
		return nil, err
	}
	blobs, err := newBlobs(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	parser := parsing.New(factory, log)
	deps := service.Deps{
		Store:           st,
		Blobs:           blobs,
		Fetcher:         newFetcher(cfg.Fetch, log),
		CandidateParser: parser,
		JobParser:       parser,
		Projects:        generation.New(factory, log),
		Rewriter:        rewriting.New(factory, log),
	}
	if q != nil {
		deps.Queue = q
	}
	return service.New(deps, log), nil
}
