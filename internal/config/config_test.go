package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `
hass_url: "http://hass.local:8123"
transport: websocket
auth_token: "abc123"
min_repeat_time_ms: 500
verbose: 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.HassURL != "http://hass.local:8123" {
		t.Errorf("HassURL = %q", cfg.HassURL)
	}
	if cfg.Transport != TransportWebSocket {
		t.Errorf("Transport = %q, want websocket", cfg.Transport)
	}
	if cfg.AuthToken != "abc123" {
		t.Errorf("AuthToken = %q", cfg.AuthToken)
	}
	if cfg.MinRepeatTimeMs != 500 {
		t.Errorf("MinRepeatTimeMs = %d, want 500", cfg.MinRepeatTimeMs)
	}
	if cfg.Verbose != 2 {
		t.Errorf("Verbose = %d, want 2", cfg.Verbose)
	}

	// Defaults still applied for unspecified fields.
	if cfg.LircSockPath != "/var/run/lirc/lircd" {
		t.Errorf("LircSockPath = %q, want default", cfg.LircSockPath)
	}
	if cfg.MaxReconnectDelay != DefaultMaxReconnectDelay {
		t.Errorf("MaxReconnectDelay = %d, want default %d", cfg.MaxReconnectDelay, DefaultMaxReconnectDelay)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("Load() on missing file should return error")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", ":::not valid yaml")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() with invalid YAML should return error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.HassURL = "http://hass.local:8123"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with url", func(c *Config) {}, false},
		{"websocket transport", func(c *Config) { c.Transport = TransportWebSocket }, false},
		{"missing url", func(c *Config) { c.HassURL = "" }, true},
		{"unknown transport", func(c *Config) { c.Transport = "mqtt" }, true},
		{"zero reconnect delay", func(c *Config) { c.MaxReconnectDelay = 0 }, true},
		{"negative repeat time", func(c *Config) { c.MinRepeatTimeMs = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToken(t *testing.T) {
	cfg := Default()
	cfg.AuthToken = "literal-token"
	tok, err := cfg.Token()
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if tok != "literal-token" {
		t.Errorf("Token() = %q, want literal-token", tok)
	}
}

func TestTokenFromFile(t *testing.T) {
	path := writeFile(t, "token", "file-token\n")
	cfg := Default()
	cfg.AuthToken = "ignored"
	cfg.AuthTokenFile = path

	tok, err := cfg.Token()
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if tok != "file-token" {
		t.Errorf("Token() = %q, want file-token (newline stripped, file wins)", tok)
	}
}

func TestTokenFileMissing(t *testing.T) {
	cfg := Default()
	cfg.AuthTokenFile = "/nonexistent/token"
	if _, err := cfg.Token(); err == nil {
		t.Fatal("Token() with missing file should return error")
	}
}

func TestMinRepeatTime(t *testing.T) {
	cfg := Default()
	if got := cfg.MinRepeatTime(); got != 740*time.Millisecond {
		t.Errorf("MinRepeatTime() = %v, want 740ms", got)
	}
}
