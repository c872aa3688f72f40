// Package config loads the process-wide configuration snapshot.
// Values come from defaults, then an optional YAML file, then
// environment variables, highest wins. The snapshot is immutable after
// Load; a numeric parse failure in the environment is a startup fault.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// UserAgent is the fixed descriptive user agent sent on every outbound
// HTTP request and used for rendered pages.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// LoggerConfig holds structured logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	Output string `yaml:"output"` // stderr, stdout, or a file path
}

// TracerConfig holds OpenTelemetry settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // stdout, noop
}

// Config is the immutable process configuration.
type Config struct {
	SearxngURL       string        `yaml:"searxng_url"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	BrowserTimeout   time.Duration `yaml:"browser_timeout"`
	MaxContentLength int           `yaml:"max_content_length"`
	MaxNumResults    int           `yaml:"max_num_results"`
	MaxRetries       int           `yaml:"max_retries"`
	RetryDelay       time.Duration `yaml:"retry_delay"`

	Logger LoggerConfig `yaml:"logger"`
	Tracer TracerConfig `yaml:"tracer"`
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		SearxngURL:       "http://localhost:8080",
		RequestTimeout:   10 * time.Second,
		BrowserTimeout:   30000 * time.Millisecond,
		MaxContentLength: 10000,
		MaxNumResults:    50,
		MaxRetries:       3,
		RetryDelay:       time.Second,
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load builds the configuration snapshot. path may be empty; if set,
// the YAML file must exist and parse.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. Durations use the
// units of the original deployment knobs: REQUESTS_TIMEOUT and
// RETRY_DELAY in seconds, BROWSER_TIMEOUT in milliseconds.
func (c *Config) applyEnv() error {
	if v := os.Getenv("SEARXNG_URL"); v != "" {
		c.SearxngURL = v
	}
	if err := envSeconds("REQUESTS_TIMEOUT", &c.RequestTimeout); err != nil {
		return err
	}
	if err := envMillis("BROWSER_TIMEOUT", &c.BrowserTimeout); err != nil {
		return err
	}
	if err := envInt("MAX_CONTENT_LENGTH", &c.MaxContentLength); err != nil {
		return err
	}
	if err := envInt("MAX_NUM_RESULTS", &c.MaxNumResults); err != nil {
		return err
	}
	if err := envInt("MAX_RETRIES", &c.MaxRetries); err != nil {
		return err
	}
	if err := envSecondsFloat("RETRY_DELAY", &c.RetryDelay); err != nil {
		return err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logger.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		c.Logger.Output = v
	}
	if v := os.Getenv("TRACE_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse TRACE_ENABLED=%q: %w", v, err)
		}
		c.Tracer.Enabled = enabled
	}
	if v := os.Getenv("TRACE_EXPORTER"); v != "" {
		c.Tracer.Exporter = v
	}
	return nil
}

func (c *Config) validate() error {
	if c.SearxngURL == "" {
		return fmt.Errorf("searxng_url must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.BrowserTimeout <= 0 {
		return fmt.Errorf("browser_timeout must be positive")
	}
	if c.MaxContentLength <= 0 {
		return fmt.Errorf("max_content_length must be positive")
	}
	if c.MaxNumResults <= 0 {
		return fmt.Errorf("max_num_results must be positive")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be positive")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must not be negative")
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func envSeconds(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	*dst = time.Duration(n) * time.Second
	return nil
}

func envMillis(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	*dst = time.Duration(n) * time.Millisecond
	return nil
}

func envSecondsFloat(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	*dst = time.Duration(f * float64(time.Second))
	return nil
}
