package naminglint

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the naming-lint processor component with the given registry
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "naming-lint",
		Factory:     NewComponent,
		Schema:      namingLintSchema,
		Type:        "processor",
		Protocol:    "naming",
		Domain:      "naming",
		Description: "Checks declaration batches against the naming policy",
		Version:     "0.1.0",
	})
}
