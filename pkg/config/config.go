// Package config loads the YAML configuration of a runtime host.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the parsed configuration file.
type Config struct {
	Path      string          `yaml:"-"`
	Logging   LoggingConfig   `yaml:"logging"`
	Registry  RegistryConfig  `yaml:"registry"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RegistryConfig lists namespaces created up front.
type RegistryConfig struct {
	Namespaces []string `yaml:"namespaces"`
}

// SchedulerConfig tunes the task loop. A zero DispatchRate disables
// throttling.
type SchedulerConfig struct {
	DispatchRate  float64 `yaml:"dispatch_rate"`
	DispatchBurst int     `yaml:"dispatch_burst"`
	QueueHint     int     `yaml:"queue_hint"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Namespace: "bridge"},
	}
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", abs, err)
	}
	cfg, err := decode(data, abs)
	if err != nil {
		return nil, err
	}
	cfg.Path = abs
	return cfg, nil
}

// Parse decodes configuration from memory. Unknown keys are rejected and
// omitted keys keep their defaults.
func Parse(data []byte) (*Config, error) {
	return decode(data, "<memory>")
}

func decode(data []byte, source string) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", source, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	for i, ns := range c.Registry.Namespaces {
		c.Registry.Namespaces[i] = strings.TrimSpace(ns)
	}
	if c.Scheduler.DispatchRate > 0 && c.Scheduler.DispatchBurst == 0 {
		c.Scheduler.DispatchBurst = 1
	}
	c.Metrics.Namespace = strings.TrimSpace(c.Metrics.Namespace)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs ValidationError
	if _, err := c.SlogLevel(); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs.Issues = append(errs.Issues, fmt.Sprintf("logging.format %q must be text or json", c.Logging.Format))
	}
	for i, ns := range c.Registry.Namespaces {
		if ns == "" || strings.HasPrefix(ns, ".") || strings.HasSuffix(ns, ".") || strings.Contains(ns, "..") {
			errs.Issues = append(errs.Issues, fmt.Sprintf("registry.namespaces[%d] %q is not a dotted name", i, ns))
		}
	}
	if c.Scheduler.DispatchRate < 0 {
		errs.Issues = append(errs.Issues, "scheduler.dispatch_rate must not be negative")
	}
	if c.Scheduler.DispatchBurst < 0 {
		errs.Issues = append(errs.Issues, "scheduler.dispatch_burst must not be negative")
	}
	if c.Scheduler.QueueHint < 0 {
		errs.Issues = append(errs.Issues, "scheduler.queue_hint must not be negative")
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		errs.Issues = append(errs.Issues, "metrics.namespace must be provided when metrics are enabled")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// SlogLevel maps logging.level onto a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("logging.level %q is not a log level", c.Logging.Level)
	}
	return level, nil
}
