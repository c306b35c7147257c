package config

import "github.com/yutashx/openapi-mcp-server/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "openapi-mcp-server",
			Port: 4280,
		},
		Upstream: UpstreamConfig{
			Timeout:       "60s",
			MaxResponseMB: 50,
		},
		Logging: common.LoggingConfig{
			Level:   "info",
			Outputs: []string{"console"},
		},
	}
}
