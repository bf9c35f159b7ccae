// Package config provides configuration for the chatgpt binaries.
//
// The chat package itself reads no files or environment variables; this
// package is how cmd/chatgpt and cmd/mock-backend build a chat.Config.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (CHATGPT_ prefix, OPENAI_API_KEY fallback)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"time"

	"github.com/TABmk/chatgpt-wrapper/pkg/chat"
)

// Config holds all configuration for the chatgpt binaries.
type Config struct {
	Client  ClientConfig  `yaml:"client"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Mock    MockConfig    `yaml:"mock"`
}

// ClientConfig holds the chat client settings.
type ClientConfig struct {
	APIKey     string        `yaml:"api_key"`
	APIKeyFile string        `yaml:"api_key_file"` // _file variant for api_key
	Org        string        `yaml:"org"`          // optional
	URL        string        `yaml:"url"`          // default: chat.DefaultURL
	Model      string        `yaml:"model"`        // default: chat.DefaultModel
	Proxy      string        `yaml:"proxy"`        // http, https or socks5 URL
	Timeout    time.Duration `yaml:"timeout"`      // buffered calls only, 0 = none
}

// LogConfig holds logging settings, fed to debug.Init.
type LogConfig struct {
	Level string `yaml:"level"` // TRACE, DEBUG, INFO, WARN, ERROR; default: INFO
	Debug string `yaml:"debug"` // comma-separated debug categories
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: false
	Path    string `yaml:"path"`    // default: "/metrics"
}

// MockConfig holds cmd/mock-backend settings.
type MockConfig struct {
	Port int `yaml:"port"` // default: 9090
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Client: ClientConfig{
			URL:   chat.DefaultURL,
			Model: string(chat.DefaultModel),
		},
		Log: LogConfig{
			Level: "INFO",
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
		Mock: MockConfig{
			Port: 9090,
		},
	}
}

// ChatConfig converts the client section into a chat.Config.
func (c *Config) ChatConfig() chat.Config {
	return chat.Config{
		APIKey:  c.Client.APIKey,
		Org:     c.Client.Org,
		URL:     c.Client.URL,
		Model:   chat.Model(c.Client.Model),
		Proxy:   c.Client.Proxy,
		Timeout: c.Client.Timeout,
		Metrics: c.Metrics.Enabled,
	}
}
