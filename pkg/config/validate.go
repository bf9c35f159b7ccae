package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/TABmk/chatgpt-wrapper/pkg/chat"
)

// Validate checks the configuration for valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.Client.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("client.url must be an absolute http(s) URL, got %q", c.Client.URL))
	}

	if c.Client.Model != "" && !chat.Model(c.Client.Model).Known() {
		errs = append(errs, fmt.Errorf("client.model %q is not a supported model", c.Client.Model))
	}

	if c.Client.Timeout < 0 {
		errs = append(errs, fmt.Errorf("client.timeout must be >= 0, got %v", c.Client.Timeout))
	}

	if c.Client.Proxy != "" {
		u, err := url.Parse(c.Client.Proxy)
		if err != nil {
			errs = append(errs, fmt.Errorf("client.proxy: %w", err))
		} else {
			switch u.Scheme {
			case "http", "https", "socks5", "socks5h":
				// valid
			default:
				errs = append(errs, fmt.Errorf("client.proxy scheme must be http, https or socks5, got %q", u.Scheme))
			}
		}
	}

	switch strings.ToUpper(c.Log.Level) {
	case "TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "":
		// valid
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of TRACE, DEBUG, INFO, WARN, ERROR, got %q", c.Log.Level))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with \"/\", got %q", c.Metrics.Path))
	}

	if c.Mock.Port <= 0 || c.Mock.Port > 65535 {
		errs = append(errs, fmt.Errorf("mock.port must be in 1..65535, got %d", c.Mock.Port))
	}

	return errors.Join(errs...)
}

// RequireAPIKey reports an error when no API key was configured by any layer.
func (c *Config) RequireAPIKey() error {
	if c.Client.APIKey == "" {
		return errors.New("client.api_key is required (set it in the config file, client.api_key_file, CHATGPT_API_KEY or OPENAI_API_KEY)")
	}
	return nil
}
