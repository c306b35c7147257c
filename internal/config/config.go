package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/yutashx/openapi-mcp-server/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig         `toml:"server"`
	Spec     SpecConfig           `toml:"spec"`
	Upstream UpstreamConfig       `toml:"upstream"`
	Logging  common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains MCP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Port int    `toml:"port"`
}

// SpecConfig locates the OpenAPI document to serve.
// Path may be a local file path or an http(s) URL.
type SpecConfig struct {
	Path string `toml:"path"`
}

// UpstreamConfig describes the API the generated tools call into.
// Headers are injected on every outbound request before per-call
// header parameters, so tool arguments win on conflict.
type UpstreamConfig struct {
	BaseURL       string            `toml:"base_url"`
	Timeout       string            `toml:"timeout"`
	MaxResponseMB int               `toml:"max_response_mb"`
	Headers       map[string]string `toml:"headers"`
}

// GetTimeout parses and returns the upstream request timeout.
func (c *UpstreamConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// A missing file is not an error; defaults and env overrides still apply.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else {
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies OPENAPI_MCP_* environment variable overrides.
func applyEnvOverrides(config *Config) {
	if spec := os.Getenv("OPENAPI_MCP_SPEC"); spec != "" {
		config.Spec.Path = spec
	}
	if base := os.Getenv("OPENAPI_MCP_BASE_URL"); base != "" {
		config.Upstream.BaseURL = base
	}
	if timeout := os.Getenv("OPENAPI_MCP_TIMEOUT"); timeout != "" {
		config.Upstream.Timeout = timeout
	}
	if port := os.Getenv("OPENAPI_MCP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if level := os.Getenv("OPENAPI_MCP_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// Validate checks that the configuration can support a running server.
// The base URL must be a well-formed absolute URL; the dispatch engine is
// never constructed without one.
func (c *Config) Validate() error {
	if c.Spec.Path == "" {
		return fmt.Errorf("spec path is required (set [spec] path or OPENAPI_MCP_SPEC)")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL is required (set [upstream] base_url or OPENAPI_MCP_BASE_URL)")
	}
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid upstream base URL %q: %w", c.Upstream.BaseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("upstream base URL %q must be absolute", c.Upstream.BaseURL)
	}
	return nil
}
