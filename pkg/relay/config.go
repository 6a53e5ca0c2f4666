package relay

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	DefaultListen      = "127.0.0.1:8787"
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama3-8b-8192"
	DefaultMaxTokens   = 200
	DefaultTemperature = 0.7
	DefaultTimeout     = 30 * time.Second

	maxTemperature = 2
)

// ModelConfig selects the model endpoint and sampling parameters.
type ModelConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
}

func (c ModelConfig) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("an API key is required (set OPENAI_API_KEY)"))
	}
	if c.Model == "" {
		errs = append(errs, errors.New("a model is required"))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens))
	}
	if c.Temperature < 0 || c.Temperature > maxTemperature {
		errs = append(errs, fmt.Errorf("temperature must be between 0 and %d, got %g", maxTemperature, c.Temperature))
	}
	return errors.Join(errs...)
}

// Config is the relay server configuration file.
type Config struct {
	Listen      string   `yaml:"listen,omitempty"`
	BaseURL     string   `yaml:"base_url,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	MaxTokens   int64    `yaml:"max_tokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	// Timeout bounds each model call, e.g. "30s".
	Timeout string `yaml:"timeout,omitempty"`
}

// LoadConfig reads a relay configuration file. An empty path yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read relay config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse relay config: %w", err)
	}
	if _, err := cfg.TimeoutDuration(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ListenAddr is the configured listen address or the default.
func (c *Config) ListenAddr() string {
	return cmp.Or(c.Listen, DefaultListen)
}

func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return d, nil
}

// ModelConfig resolves the model settings, filling in defaults and reading
// credentials and endpoint overrides from the environment.
func (c *Config) ModelConfig(getenv func(string) string) ModelConfig {
	temperature := DefaultTemperature
	if c.Temperature != nil {
		temperature = *c.Temperature
	}
	return ModelConfig{
		APIKey:      getenv("OPENAI_API_KEY"),
		BaseURL:     cmp.Or(c.BaseURL, getenv("OPENAI_BASE_URL"), DefaultBaseURL),
		Model:       cmp.Or(c.Model, DefaultModel),
		MaxTokens:   cmp.Or(c.MaxTokens, DefaultMaxTokens),
		Temperature: temperature,
	}
}
