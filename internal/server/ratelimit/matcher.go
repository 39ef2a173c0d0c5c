package ratelimit

import (
	"strings"
)

// unlimited is returned for endpoints that are never rate limited
var unlimited = EndpointConfig{Path: "/health", Method: "GET"}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// Path matching supports prefix matching (e.g., "/assignments/" matches "/assignments/{id}/matches").
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == unlimited.Path && method == unlimited.Method {
		match := unlimited
		return &match
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			return config
		}
	}

	return nil
}
