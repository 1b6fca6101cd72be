// Package report collects naming verdicts into run reports and renders
// them in text, JSON, HTML, and markdown formats.
package report

import (
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/c360studio/namelint/policy"
)

// Report aggregates the outcome of one lint run.
type Report struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Project is the project name the run was performed for.
	Project string `json:"project"`

	// GeneratedAt is when the report was created.
	GeneratedAt time.Time `json:"generated_at"`

	// Checked is the total number of declarations checked.
	Checked int `json:"checked"`

	// Violations holds the non-compliant verdicts.
	Violations []policy.Verdict `json:"violations"`
}

// New creates an empty report for a project.
func New(project string) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		Project:     project,
		GeneratedAt: time.Now().UTC(),
	}
}

// Add records a slice of verdicts, keeping only violations. Violations
// of rules at SeverityIgnore are dropped entirely.
func (r *Report) Add(verdicts []policy.Verdict) {
	r.Checked += len(verdicts)
	for _, v := range verdicts {
		if v.Compliant || v.Violated.Severity == policy.SeverityIgnore {
			continue
		}
		r.Violations = append(r.Violations, v)
	}
}

// Combine merges another report into this one. The receiver keeps its
// RunID and timestamp.
func (r *Report) Combine(other *Report) {
	if other == nil {
		return
	}
	r.Checked += other.Checked
	r.Violations = append(r.Violations, other.Violations...)
}

// Sort orders violations by severity, then rule ID, then file, then
// line. Severity sorts most severe first.
func (r *Report) Sort() {
	sort.SliceStable(r.Violations, func(i, j int) bool {
		a, b := r.Violations[i], r.Violations[j]
		if a.Violated.Severity != b.Violated.Severity {
			return a.Violated.Severity < b.Violated.Severity
		}
		if a.Violated.ID != b.Violated.ID {
			return a.Violated.ID < b.Violated.ID
		}
		if a.Declaration.File != b.Declaration.File {
			return a.Declaration.File < b.Declaration.File
		}
		return a.Declaration.Line < b.Declaration.Line
	})
}

// Filter returns a copy of the report containing only violations whose
// file path matches one of the include patterns (all files when empty)
// and none of the exclude patterns. Patterns use doublestar globs.
func (r *Report) Filter(includes, excludes []string) *Report {
	filtered := &Report{
		RunID:       r.RunID,
		Project:     r.Project,
		GeneratedAt: r.GeneratedAt,
		Checked:     r.Checked,
	}

	for _, v := range r.Violations {
		if !matchAny(includes, v.Declaration.File, true) {
			continue
		}
		if matchAny(excludes, v.Declaration.File, false) {
			continue
		}
		filtered.Violations = append(filtered.Violations, v)
	}

	return filtered
}

// matchAny reports whether path matches any pattern. emptyResult is
// returned when no patterns are given.
func matchAny(patterns []string, path string, emptyResult bool) bool {
	if len(patterns) == 0 {
		return emptyResult
	}
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// CountBySeverity tallies violations per severity name.
func (r *Report) CountBySeverity() map[string]int {
	counts := make(map[string]int)
	for _, v := range r.Violations {
		counts[v.Violated.Severity.String()]++
	}
	return counts
}

// HasAtOrAbove reports whether any violation is at least as severe as
// the given threshold.
func (r *Report) HasAtOrAbove(threshold policy.Severity) bool {
	for _, v := range r.Violations {
		if v.Violated.Severity <= threshold {
			return true
		}
	}
	return false
}

// ByFile groups violations per file, preserving the report's order
// within each file.
func (r *Report) ByFile() map[string][]policy.Verdict {
	grouped := make(map[string][]policy.Verdict)
	for _, v := range r.Violations {
		grouped[v.Declaration.File] = append(grouped[v.Declaration.File], v)
	}
	return grouped
}

// ByRule groups violations per rule ID.
func (r *Report) ByRule() map[string][]policy.Verdict {
	grouped := make(map[string][]policy.Verdict)
	for _, v := range r.Violations {
		grouped[v.Violated.ID] = append(grouped[v.Violated.ID], v)
	}
	return grouped
}
