package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TABmk/chatgpt-wrapper/pkg/debug"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, CHATGPT_CONFIG env, ./chatgpt.yaml,
//     $HOME/.config/chatgpt/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
		debug.Log("config", "loaded config file", "path", filePath)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. CHATGPT_CONFIG environment variable
// 3. ./chatgpt.yaml in the current directory
// 4. $HOME/.config/chatgpt/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("CHATGPT_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{"chatgpt.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "chatgpt", "config.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields.
// CHATGPT_API_KEY wins over the file; OPENAI_API_KEY only fills a key that
// is still empty.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("CHATGPT_API_KEY"); v != "" {
		cfg.Client.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Client.APIKey == "" && cfg.Client.APIKeyFile == "" {
		cfg.Client.APIKey = v
	}
	if v := os.Getenv("CHATGPT_ORG"); v != "" {
		cfg.Client.Org = v
	}
	if v := os.Getenv("CHATGPT_URL"); v != "" {
		cfg.Client.URL = v
	}
	if v := os.Getenv("CHATGPT_MODEL"); v != "" {
		cfg.Client.Model = v
	}
	if v := os.Getenv("CHATGPT_PROXY"); v != "" {
		cfg.Client.Proxy = v
	}
	if v := os.Getenv("CHATGPT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHATGPT_TIMEOUT: %w", err)
		}
		cfg.Client.Timeout = d
	}
	if v := os.Getenv("CHATGPT_METRICS"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CHATGPT_METRICS: %w", err)
		}
		cfg.Metrics.Enabled = enabled
	}
	if v := os.Getenv("CHATGPT_MOCK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Mock.Port = port
		}
	}
	return nil
}

// resolveFileReferences reads _file fields into their value fields when the
// value is still empty.
func resolveFileReferences(cfg *Config) error {
	if cfg.Client.APIKeyFile != "" && cfg.Client.APIKey == "" {
		val, err := readSecretFile(cfg.Client.APIKeyFile)
		if err != nil {
			return fmt.Errorf("client.api_key_file: %w", err)
		}
		cfg.Client.APIKey = val
	}
	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
