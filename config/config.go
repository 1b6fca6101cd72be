// Package config provides configuration loading and management for namelint.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	semconfig "github.com/c360studio/semstreams/config"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/namelint/policy"
	"github.com/c360studio/namelint/report"
)

// Config represents the complete namelint configuration
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Source  SourceConfig  `yaml:"source"`
	Policy  PolicyConfig  `yaml:"policy"`
	Report  ReportConfig  `yaml:"report"`
	NATS    NATSConfig    `yaml:"nats"`
}

// ProjectConfig identifies the project being checked
type ProjectConfig struct {
	// Name is the project name used in reports and stream payloads
	Name string `yaml:"name"`
}

// SourceConfig configures which files get checked
type SourceConfig struct {
	// Roots are the directories or glob patterns to scan
	// (auto-detected from git if empty)
	Roots []string `yaml:"roots"`
	// Include holds doublestar patterns a file must match (empty = all)
	Include []string `yaml:"include"`
	// Exclude holds doublestar patterns for files to skip
	Exclude []string `yaml:"exclude"`
}

// PolicyConfig configures the naming policy
type PolicyConfig struct {
	// Path is the policy YAML file (empty = built-in defaults)
	Path string `yaml:"path"`
}

// ReportConfig configures report output
type ReportConfig struct {
	// Format is the output format: text, json, html, or markdown
	Format string `yaml:"format"`
	// Output is the file to write the report to (empty = stdout)
	Output string `yaml:"output"`
	// FailOn is the severity at or above which the check exits non-zero
	FailOn string `yaml:"fail_on"`
}

// NATSConfig configures the streaming mode connection
type NATSConfig struct {
	// URL is the NATS server URL
	URL string `yaml:"url"`
	// Stream is the JetStream stream name for declaration batches
	Stream string `yaml:"stream"`
	// MetricsAddr is the listen address for the Prometheus endpoint
	MetricsAddr string `yaml:"metrics_addr"`
	// ConnectTimeout bounds the initial connection attempt
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Name: "",
		},
		Source: SourceConfig{
			Roots: nil, // Auto-detect
		},
		Policy: PolicyConfig{
			Path: "", // Built-in defaults
		},
		Report: ReportConfig{
			Format: string(report.FormatText),
			FailOn: policy.SeverityError.String(),
		},
		NATS: NATSConfig{
			URL:            "nats://127.0.0.1:4222",
			Stream:         "NAMING",
			MetricsAddr:    ":9100",
			ConnectTimeout: 10 * time.Second,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := report.ParseFormat(c.Report.Format); err != nil {
		return fmt.Errorf("report.format: %w", err)
	}
	if _, err := policy.ParseSeverity(c.Report.FailOn); err != nil {
		return fmt.Errorf("report.fail_on: %w", err)
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required")
	}
	if c.NATS.Stream == "" {
		return fmt.Errorf("nats.stream is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. Environment
// variable references (${VAR} and ${VAR:-default}) are expanded before
// parsing.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := semconfig.ExpandEnvWithDefaults(string(data))

	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Project
	if other.Project.Name != "" {
		c.Project.Name = other.Project.Name
	}

	// Source
	if len(other.Source.Roots) > 0 {
		c.Source.Roots = other.Source.Roots
	}
	if len(other.Source.Include) > 0 {
		c.Source.Include = other.Source.Include
	}
	if len(other.Source.Exclude) > 0 {
		c.Source.Exclude = other.Source.Exclude
	}

	// Policy
	if other.Policy.Path != "" {
		c.Policy.Path = other.Policy.Path
	}

	// Report
	if other.Report.Format != "" {
		c.Report.Format = other.Report.Format
	}
	if other.Report.Output != "" {
		c.Report.Output = other.Report.Output
	}
	if other.Report.FailOn != "" {
		c.Report.FailOn = other.Report.FailOn
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Stream != "" {
		c.NATS.Stream = other.NATS.Stream
	}
	if other.NATS.MetricsAddr != "" {
		c.NATS.MetricsAddr = other.NATS.MetricsAddr
	}
	if other.NATS.ConnectTimeout != 0 {
		c.NATS.ConnectTimeout = other.NATS.ConnectTimeout
	}
}
