package declindexer

import (
	"fmt"
	"time"

	"github.com/c360studio/semstreams/component"
)

// Config holds configuration for the decl-indexer processor component
type Config struct {
	Ports        *component.PortConfig `json:"ports"         schema:"type:ports,description:Port configuration,category:basic"`
	ScanPaths    []string              `json:"scan_paths"    schema:"type:string,description:Directories or glob patterns to scan,category:basic"`
	Project      string                `json:"project"       schema:"type:string,description:Project name attached to published batches,category:basic"`
	WatchEnabled bool                  `json:"watch_enabled" schema:"type:bool,description:Enable file watcher for real-time updates,category:basic,default:true"`
	ScanInterval string                `json:"scan_interval" schema:"type:string,description:Full rescan interval (e.g. 5m),category:advanced,default:5m"`
	StreamName   string                `json:"stream_name"   schema:"type:string,description:JetStream stream name,category:advanced,default:NAMING"`
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if len(c.ScanPaths) == 0 {
		return fmt.Errorf("scan_paths is required")
	}

	if c.Project == "" {
		return fmt.Errorf("project is required")
	}

	if c.ScanInterval != "" {
		d, err := time.ParseDuration(c.ScanInterval)
		if err != nil {
			return fmt.Errorf("invalid scan_interval format: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("scan_interval must be positive")
		}
	}

	return nil
}

// DefaultConfig returns default configuration for decl-indexer processor
func DefaultConfig() Config {
	outputDefs := []component.PortDefinition{
		{
			Name:        "decl-batches",
			Type:        "jetstream",
			Subject:     "naming.decl.batch",
			StreamName:  "NAMING",
			Required:    true,
			Description: "Declaration batches for naming lint",
		},
	}

	return Config{
		Ports: &component.PortConfig{
			Outputs: outputDefs,
		},
		ScanPaths:    []string{"."},
		WatchEnabled: true,
		ScanInterval: "5m",
		StreamName:   "NAMING",
	}
}

// BatchSubject returns the subject declaration batches are published to.
func (c *Config) BatchSubject() string {
	if c.Ports != nil && len(c.Ports.Outputs) > 0 {
		return c.Ports.Outputs[0].Subject
	}
	return "naming.decl.batch"
}
