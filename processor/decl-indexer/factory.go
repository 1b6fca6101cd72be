package declindexer

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the decl-indexer processor component with the given registry
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "decl-indexer",
		Factory:     NewComponent,
		Schema:      declIndexerSchema,
		Type:        "processor",
		Protocol:    "naming",
		Domain:      "naming",
		Description: "Extracts source declarations and publishes batches for naming lint",
		Version:     "0.1.0",
	})
}
