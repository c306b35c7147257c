package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Name != "openapi-mcp-server" {
		t.Errorf("unexpected default server name: %q", cfg.Server.Name)
	}
	if cfg.Server.Port != 4280 {
		t.Errorf("unexpected default port: %d", cfg.Server.Port)
	}
	if cfg.Upstream.GetTimeout() != 60*time.Second {
		t.Errorf("unexpected default timeout: %v", cfg.Upstream.GetTimeout())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("unexpected default log level: %q", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "openapi-mcp.toml")
	content := `
[server]
name = "petstore-mcp"
port = 9000

[spec]
path = "petstore.yaml"

[upstream]
base_url = "https://api.example.com/v1"
timeout = "10s"

[upstream.headers]
X-Api-Key = "secret"

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Name != "petstore-mcp" {
		t.Errorf("expected server name petstore-mcp, got %q", cfg.Server.Name)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Spec.Path != "petstore.yaml" {
		t.Errorf("expected spec path petstore.yaml, got %q", cfg.Spec.Path)
	}
	if cfg.Upstream.BaseURL != "https://api.example.com/v1" {
		t.Errorf("unexpected base URL: %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.GetTimeout() != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Upstream.GetTimeout())
	}
	if cfg.Upstream.Headers["X-Api-Key"] != "secret" {
		t.Errorf("expected configured header, got %v", cfg.Upstream.Headers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestLoadFromFile_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing config file must not be an error, got %v", err)
	}
	if cfg.Server.Port != 4280 {
		t.Errorf("expected defaults, got port %d", cfg.Server.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAPI_MCP_SPEC", "/tmp/api.yaml")
	t.Setenv("OPENAPI_MCP_BASE_URL", "http://localhost:8080")
	t.Setenv("OPENAPI_MCP_PORT", "5555")
	t.Setenv("OPENAPI_MCP_LOG_LEVEL", "warn")

	cfg, err := LoadFromFile("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Spec.Path != "/tmp/api.yaml" {
		t.Errorf("expected env spec path, got %q", cfg.Spec.Path)
	}
	if cfg.Upstream.BaseURL != "http://localhost:8080" {
		t.Errorf("expected env base URL, got %q", cfg.Upstream.BaseURL)
	}
	if cfg.Server.Port != 5555 {
		t.Errorf("expected env port, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected env log level, got %q", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		baseURL string
		wantErr bool
	}{
		{"valid", "api.yaml", "https://api.example.com", false},
		{"missing spec", "", "https://api.example.com", true},
		{"missing base URL", "api.yaml", "", true},
		{"relative base URL", "api.yaml", "/v1", true},
		{"schemeless base URL", "api.yaml", "api.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Spec.Path = tt.spec
			cfg.Upstream.BaseURL = tt.baseURL

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
