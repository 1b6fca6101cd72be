// Package decl extracts naming-relevant declarations from source files.
// Language extractors live in subpackages and register themselves with
// the DefaultRegistry via init().
package decl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/c360studio/namelint/policy"
)

// FileResult holds the declarations extracted from a single source file.
type FileResult struct {
	// Path is the file path relative to the scan root.
	Path string `json:"path"`

	// Hash is the content hash, used for change detection.
	Hash string `json:"hash"`

	// Language is the name of the extractor that produced the result.
	Language string `json:"language"`

	// Declarations in source order.
	Declarations []policy.Declaration `json:"declarations"`
}

// FileExtractor extracts declarations from source files of one language.
type FileExtractor interface {
	// ExtractFile extracts declarations from a single file.
	ExtractFile(ctx context.Context, filePath string) (*FileResult, error)

	// ExtractDirectory walks a directory and extracts declarations from
	// every file the extractor understands. Unparseable files are
	// skipped, not fatal.
	ExtractDirectory(ctx context.Context, dirPath string) ([]*FileResult, error)
}

// ComputeHash computes a SHA256 hash of the given content
func ComputeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:8]) // First 8 bytes for brevity
}
