package ratelimit

import (
	"net/http"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// NewConfig builds a limiter configuration from a per-client rate in requests per
// second. A non-positive rate disables limiting.
func NewConfig(perSecond float64, burst int, whitelist ...string) *Config {
	if perSecond <= 0 {
		return &Config{Enabled: false}
	}
	if burst <= 0 {
		burst = 1
	}

	allowed := make(map[string]bool, len(whitelist))
	for _, ip := range whitelist {
		allowed[ip] = true
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    max(1, int(perSecond*60)),
		DefaultWindow:   time.Minute,
		DefaultBurst:    burst,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       allowed,
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Full runs call the model four times.
		{Path: "/api/pipeline/run", Method: http.MethodPost, Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/api/pipeline/run/stream", Method: http.MethodPost, Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/api/pipeline/enqueue", Method: http.MethodPost, Limit: 20, Window: time.Hour, Burst: 5},

		// Single model calls.
		{Path: "/api/resume/parse", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/api/resume/improve", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/api/job/parse", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/api/projects", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},

		// Uploads and outbound fetches.
		{Path: "/api/resume/upload", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/job/url", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
	}
}
