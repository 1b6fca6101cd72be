package naminglint

import (
	"fmt"
	"reflect"

	"github.com/c360studio/semstreams/component"
)

// namingLintSchema defines the configuration schema.
var namingLintSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the naming-lint component.
type Config struct {
	// StreamName is the JetStream stream for consuming declaration
	// batches and publishing lint reports.
	StreamName string `json:"stream_name" schema:"type:string,description:JetStream stream for declaration batches,category:basic,default:NAMING"`

	// ConsumerName is the durable consumer name for batch consumption.
	ConsumerName string `json:"consumer_name" schema:"type:string,description:Durable consumer name for batch consumption,category:basic,default:naming-lint"`

	// PolicyPath is an optional YAML policy file layered over the
	// built-in rule table. Empty means built-in defaults.
	PolicyPath string `json:"policy_path" schema:"type:string,description:Path to a YAML naming policy file,category:basic,default:"`

	// Ports contains input/output port definitions.
	Ports *component.PortConfig `json:"ports,omitempty" schema:"type:ports,description:Input/output port definitions,category:basic"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		StreamName:   "NAMING",
		ConsumerName: "naming-lint",
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "decl-batches",
					Type:        "jetstream",
					Subject:     "naming.decl.batch",
					StreamName:  "NAMING",
					Description: "Receive declaration batches for lint",
					Required:    true,
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "lint-reports",
					Type:        "nats",
					Subject:     "naming.lint.report.>",
					Description: "Publish lint reports per batch",
					Required:    false,
				},
			},
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.StreamName == "" {
		return fmt.Errorf("stream_name is required")
	}
	if c.ConsumerName == "" {
		return fmt.Errorf("consumer_name is required")
	}
	return nil
}

// BatchSubject returns the subject declaration batches are consumed from.
func (c *Config) BatchSubject() string {
	if c.Ports != nil && len(c.Ports.Inputs) > 0 {
		return c.Ports.Inputs[0].Subject
	}
	return "naming.decl.batch"
}
