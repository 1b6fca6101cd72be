package declindexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveScanPaths expands glob patterns to concrete directories.
// Supports both single-level wildcards (*) and recursive wildcards (**).
//
// Examples:
//   - "./src/*" → ["./src/engine", "./src/editor", ...]
//   - "./include" → ["./include"]
//   - "./**" → all subdirectories recursively
//
// Returns only directories, not files. Duplicates are dropped.
func ResolveScanPaths(patterns []string) ([]string, error) {
	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		paths, err := resolvePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}

		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}

	return resolved, nil
}

// resolvePattern expands a single glob pattern to directories.
func resolvePattern(pattern string) ([]string, error) {
	if !containsGlob(pattern) {
		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			return nil, fmt.Errorf("path is not a directory: %s", absPath)
		}

		return []string{absPath}, nil
	}

	absPattern, err := makeAbsolutePattern(pattern)
	if err != nil {
		return nil, err
	}

	// Use doublestar for ** support
	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var dirs []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue // Skip paths that can't be stat'd
		}
		if info.IsDir() {
			dirs = append(dirs, match)
		}
	}

	if len(dirs) == 0 {
		return nil, fmt.Errorf("no directories match pattern: %s", pattern)
	}

	return dirs, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// makeAbsolutePattern converts a relative pattern to absolute,
// preserving glob characters in the pattern.
func makeAbsolutePattern(pattern string) (string, error) {
	globIdx := -1
	for i, c := range pattern {
		if c == '*' || c == '?' || c == '[' {
			globIdx = i
			break
		}
	}

	if globIdx == -1 {
		return filepath.Abs(pattern)
	}

	// Split at the last separator before the first glob character
	dirPart := pattern[:globIdx]
	if lastSep := strings.LastIndex(dirPart, string(filepath.Separator)); lastSep >= 0 {
		dirPart = pattern[:lastSep]
	} else if lastSep := strings.LastIndex(dirPart, "/"); lastSep >= 0 {
		// Handle Unix-style paths on any platform
		dirPart = pattern[:lastSep]
	} else {
		dirPart = "."
	}

	globPart := pattern[len(dirPart):]

	absDir, err := filepath.Abs(dirPart)
	if err != nil {
		return "", err
	}

	return absDir + filepath.FromSlash(globPart), nil
}
