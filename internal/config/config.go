// Package config holds the daemon configuration, loadable from a YAML
// file with flag overrides applied by the caller.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crowbarz/lirc2hass/internal/lirc"
)

// Transport selection values.
const (
	TransportREST      = "rest"
	TransportWebSocket = "websocket"
)

const (
	DefaultMaxReconnectDelay = 64
	DefaultMinRepeatTimeMs   = 740
)

type Config struct {
	// HassURL is the Home Assistant base URL, e.g.
	// "http://homeassistant.local:8123". Required.
	HassURL string `yaml:"hass_url"`

	// Transport selects the upstream API: "rest" or "websocket".
	Transport string `yaml:"transport"`

	// AuthToken is a long-lived access token. AuthTokenFile names a
	// file holding the token instead; it takes precedence and is read
	// once at startup.
	AuthToken     string `yaml:"auth_token"`
	AuthTokenFile string `yaml:"auth_token_file"`

	LircSockPath string `yaml:"lirc_sock_path"`

	// MaxReconnectDelay is the backoff ceiling in seconds for both
	// reconnect state machines.
	MaxReconnectDelay int `yaml:"max_reconnect_delay"`

	// MinRepeatTimeMs is the minimum interval between forwarded
	// autorepeat keystrokes.
	MinRepeatTimeMs int `yaml:"min_repeat_time_ms"`

	// Verbose is the log verbosity count: 0 warn, 1 info, 2 debug.
	Verbose int `yaml:"verbose"`
}

func defaultConfig() *Config {
	return &Config{
		Transport:         TransportREST,
		LircSockPath:      lirc.DefaultSocketPath,
		MaxReconnectDelay: DefaultMaxReconnectDelay,
		MinRepeatTimeMs:   DefaultMinRepeatTimeMs,
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load reads path and unmarshals it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration after all overrides are applied.
func (c *Config) Validate() error {
	if c.HassURL == "" {
		return fmt.Errorf("hass_url is required")
	}
	if c.Transport != TransportREST && c.Transport != TransportWebSocket {
		return fmt.Errorf("transport must be %q or %q, got %q", TransportREST, TransportWebSocket, c.Transport)
	}
	if c.MaxReconnectDelay <= 0 {
		return fmt.Errorf("max_reconnect_delay must be positive, got %d", c.MaxReconnectDelay)
	}
	if c.MinRepeatTimeMs <= 0 {
		return fmt.Errorf("min_repeat_time_ms must be positive, got %d", c.MinRepeatTimeMs)
	}
	return nil
}

// Token resolves the credential: the token file wins when set, with a
// trailing newline stripped.
func (c *Config) Token() (string, error) {
	if c.AuthTokenFile != "" {
		data, err := os.ReadFile(c.AuthTokenFile)
		if err != nil {
			return "", fmt.Errorf("reading auth token file: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	return c.AuthToken, nil
}

func (c *Config) MinRepeatTime() time.Duration {
	return time.Duration(c.MinRepeatTimeMs) * time.Millisecond
}
