package decl

import (
	"fmt"
	"sync"
)

// ExtractorFactory creates a FileExtractor rooted at scanRoot. Paths in
// the results are reported relative to scanRoot.
type ExtractorFactory func(scanRoot string) FileExtractor

// ExtractorRegistry maintains a registry of language extractors.
// Extractors are registered by name with their supported file extensions.
// Thread-safe for concurrent access.
type ExtractorRegistry struct {
	mu         sync.RWMutex
	extractors map[string]ExtractorFactory // name → factory
	extMap     map[string]string           // extension → extractor name
}

// NewExtractorRegistry creates a new empty extractor registry.
func NewExtractorRegistry() *ExtractorRegistry {
	return &ExtractorRegistry{
		extractors: make(map[string]ExtractorFactory),
		extMap:     make(map[string]string),
	}
}

// Register adds an extractor factory for the given extensions.
// The first registration wins if there's an extension conflict.
// Extensions should include the leading dot (e.g., ".cpp", ".h").
func (r *ExtractorRegistry) Register(name string, extensions []string, factory ExtractorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.extractors[name] = factory

	for _, ext := range extensions {
		if _, exists := r.extMap[ext]; !exists {
			r.extMap[ext] = name
		}
	}
}

// GetExtractorName returns the extractor name registered for a file
// extension. Returns empty string and false if none is registered.
func (r *ExtractorRegistry) GetExtractorName(ext string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.extMap[ext]
	return name, ok
}

// CreateExtractor instantiates an extractor by name rooted at scanRoot.
// Returns an error if the name is not registered.
func (r *ExtractorRegistry) CreateExtractor(name, scanRoot string) (FileExtractor, error) {
	r.mu.RLock()
	factory, ok := r.extractors[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("extractor not registered: %s", name)
	}

	return factory(scanRoot), nil
}

// CreateExtractorForExtension creates an extractor for the given file
// extension. Returns an error if no extractor is registered for it.
func (r *ExtractorRegistry) CreateExtractorForExtension(ext, scanRoot string) (FileExtractor, error) {
	name, ok := r.GetExtractorName(ext)
	if !ok {
		return nil, fmt.Errorf("no extractor registered for extension: %s", ext)
	}
	return r.CreateExtractor(name, scanRoot)
}

// ListExtractors returns all registered extractor names.
func (r *ExtractorRegistry) ListExtractors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.extractors))
	for name := range r.extractors {
		names = append(names, name)
	}
	return names
}

// ListExtensions returns all registered file extensions.
func (r *ExtractorRegistry) ListExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	extensions := make([]string, 0, len(r.extMap))
	for ext := range r.extMap {
		extensions = append(extensions, ext)
	}
	return extensions
}

// HasExtractor returns true if an extractor with the given name is
// registered.
func (r *ExtractorRegistry) HasExtractor(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.extractors[name]
	return ok
}

// DefaultRegistry is the global extractor registry.
// Language extractors register themselves via init() functions.
var DefaultRegistry = NewExtractorRegistry()
