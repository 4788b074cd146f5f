// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LLM providers
const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
)

// Config is the service configuration. Values come from an optional YAML/JSON
// file, then environment variables, then CLI flags bound by the caller.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig selects the persistence backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`  // PostgreSQL connection URL
	Path   string `mapstructure:"path"` // SQLite file path
}

// LLMConfig configures the language model used by the parsers and generators.
type LLMConfig struct {
	Provider    string            `mapstructure:"provider"`
	APIKey      string            `mapstructure:"api-key"`
	Project     string            `mapstructure:"project"`  // vertex only
	Location    string            `mapstructure:"location"` // vertex only
	Temperature float32           `mapstructure:"temperature"`
	Models      map[string]string `mapstructure:"models"` // tier -> model name
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	RateLimit      float64  `mapstructure:"rate-limit"` // requests per second per client
	RateBurst      int      `mapstructure:"rate-burst"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

// StorageConfig configures the S3-compatible bucket for uploaded resume files.
// Storage is disabled when Bucket is empty.
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access-key-id"`
	SecretAccessKey string `mapstructure:"secret-access-key"`
}

// QueueConfig configures asynchronous pipeline runs over AMQP.
type QueueConfig struct {
	URL      string `mapstructure:"url"`
	Queue    string `mapstructure:"queue"`
	Exchange string `mapstructure:"exchange"`
	Workers  int    `mapstructure:"workers"`
}

// FetchConfig configures job posting retrieval.
type FetchConfig struct {
	UseBrowser     bool `mapstructure:"use-browser"`
	TimeoutSeconds int  `mapstructure:"timeout-seconds"`
}

// LogConfig configures the logger.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{Driver: DriverSQLite, Path: "coach.db"},
		LLM: LLMConfig{
			Provider:    ProviderGemini,
			Location:    "us-central1",
			Temperature: 0,
			Models: map[string]string{
				"lite":     "gemini-2.5-flash-lite",
				"standard": "gemini-2.5-flash",
				"advanced": "gemini-2.5-pro",
			},
		},
		Server: ServerConfig{Port: 8080, RateLimit: 5, RateBurst: 10, AllowedOrigins: []string{"*"}},
		Storage: StorageConfig{
			Region: "auto",
		},
		Queue: QueueConfig{Queue: "pipeline_runs", Exchange: "pipeline_updates", Workers: 2},
		Fetch: FetchConfig{TimeoutSeconds: 10},
	}
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"database.url":              "DATABASE_URL",
	"database.driver":           "DATABASE_DRIVER",
	"database.path":             "SQLITE_PATH",
	"llm.api-key":               "GEMINI_API_KEY",
	"llm.provider":              "LLM_PROVIDER",
	"llm.project":               "GOOGLE_CLOUD_PROJECT",
	"llm.location":              "GOOGLE_CLOUD_LOCATION",
	"server.port":               "PORT",
	"storage.endpoint":          "R2_ENDPOINT",
	"storage.bucket":            "R2_BUCKET",
	"storage.access-key-id":     "R2_ACCESS_KEY_ID",
	"storage.secret-access-key": "R2_SECRET_ACCESS_KEY",
	"queue.url":                 "RABBITMQ_URL",
}

// Load reads configuration into v from path (optional) and the environment.
// A nil v uses a fresh viper instance.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v, Defaults())

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	merged := cfg.MergeWithDefaults(Defaults())
	return &merged, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.location", d.LLM.Location)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.models", d.LLM.Models)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.rate-limit", d.Server.RateLimit)
	v.SetDefault("server.rate-burst", d.Server.RateBurst)
	v.SetDefault("server.allowed-origins", d.Server.AllowedOrigins)
	v.SetDefault("storage.region", d.Storage.Region)
	v.SetDefault("queue.queue", d.Queue.Queue)
	v.SetDefault("queue.exchange", d.Queue.Exchange)
	v.SetDefault("queue.workers", d.Queue.Workers)
	v.SetDefault("fetch.timeout-seconds", d.Fetch.TimeoutSeconds)
}

// Validate checks that the configuration has valid values.
// Credentials are not required here; commands that need them check on use.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("config error: 'database.url' is required for postgres"))
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("config error: 'database.path' is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("config error: unknown database driver %q", c.Database.Driver))
	}

	switch c.LLM.Provider {
	case ProviderGemini:
	case ProviderVertex:
		if c.LLM.Project == "" {
			errs = append(errs, errors.New("config error: 'llm.project' is required for vertex"))
		}
	default:
		errs = append(errs, fmt.Errorf("config error: unknown llm provider %q", c.LLM.Provider))
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, errors.New("config error: 'llm.temperature' must be between 0 and 2"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, errors.New("config error: 'server.port' must be between 1 and 65535"))
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		errs = append(errs, errors.New("config error: rate limit values must be non-negative"))
	}
	if c.Queue.Workers < 0 {
		errs = append(errs, errors.New("config error: 'queue.workers' must be non-negative"))
	}
	if c.Storage.Bucket != "" && (c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "") {
		errs = append(errs, errors.New("config error: storage credentials are required when a bucket is set"))
	}

	return errors.Join(errs...)
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// Bool fields cannot distinguish unset from false and are not merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Database.Driver == "" {
		result.Database.Driver = defaults.Database.Driver
	}
	if result.Database.Path == "" {
		result.Database.Path = defaults.Database.Path
	}
	if result.Database.URL == "" {
		result.Database.URL = defaults.Database.URL
	}
	if result.LLM.Provider == "" {
		result.LLM.Provider = defaults.LLM.Provider
	}
	if result.LLM.Location == "" {
		result.LLM.Location = defaults.LLM.Location
	}
	if len(result.LLM.Models) == 0 {
		result.LLM.Models = defaults.LLM.Models
	} else {
		models := make(map[string]string, len(defaults.LLM.Models))
		for tier, model := range defaults.LLM.Models {
			models[tier] = model
		}
		for tier, model := range result.LLM.Models {
			if model = strings.TrimSpace(model); model != "" {
				models[tier] = model
			}
		}
		result.LLM.Models = models
	}
	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}
	if result.Server.RateLimit == 0 {
		result.Server.RateLimit = defaults.Server.RateLimit
	}
	if result.Server.RateBurst == 0 {
		result.Server.RateBurst = defaults.Server.RateBurst
	}
	if len(result.Server.AllowedOrigins) == 0 {
		result.Server.AllowedOrigins = defaults.Server.AllowedOrigins
	}
	if result.Storage.Region == "" {
		result.Storage.Region = defaults.Storage.Region
	}
	if result.Queue.Queue == "" {
		result.Queue.Queue = defaults.Queue.Queue
	}
	if result.Queue.Exchange == "" {
		result.Queue.Exchange = defaults.Queue.Exchange
	}
	if result.Queue.Workers == 0 {
		result.Queue.Workers = defaults.Queue.Workers
	}
	if result.Fetch.TimeoutSeconds == 0 {
		result.Fetch.TimeoutSeconds = defaults.Fetch.TimeoutSeconds
	}

	return result
}
