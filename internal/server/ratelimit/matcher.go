package ratelimit

import (
	"net/http"
	"strings"
)

// MatchEndpoint returns the configuration for a request path and method, or nil
// when none applies. Configs whose path ends in "/" match by prefix. Health
// checks are never limited.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == http.MethodGet {
		return &EndpointConfig{}
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}
	return nil
}
