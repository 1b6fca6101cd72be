package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/c360studio/namelint/policy"
)

// RenderText writes one line per violation, grouped by file, followed
// by a severity summary.
func RenderText(w io.Writer, r *Report) error {
	if len(r.Violations) == 0 {
		_, err := fmt.Fprintf(w, "naming check passed: %d declarations checked, no violations\n", r.Checked)
		return err
	}

	grouped := r.ByFile()
	files := make([]string, 0, len(grouped))
	for file := range grouped {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		if _, err := fmt.Fprintf(w, "%s:\n", file); err != nil {
			return err
		}
		for _, v := range grouped[file] {
			if _, err := fmt.Fprintf(w, "  %s\n", formatViolationLine(v)); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(w, "\n%d declarations checked, %d violations", r.Checked, len(r.Violations)); err != nil {
		return err
	}
	counts := r.CountBySeverity()
	for _, sev := range []policy.Severity{policy.SeverityError, policy.SeverityWarning, policy.SeveritySuggestion, policy.SeverityHint} {
		if n := counts[sev.String()]; n > 0 {
			if _, err := fmt.Fprintf(w, " [%s: %d]", sev, n); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// formatViolationLine produces the single-line form of a violation.
func formatViolationLine(v policy.Verdict) string {
	if v.Expected != "" {
		return fmt.Sprintf("line %d: %s: VIOLATION (expected prefix '%s') - %s",
			v.Declaration.Line, v.Declaration.Name, v.Expected, v.Violated.Description)
	}
	return fmt.Sprintf("line %d: %s: VIOLATION - %s",
		v.Declaration.Line, v.Declaration.Name, v.Violated.Description)
}

// RenderJSON writes the report as an indented JSON document.
func RenderJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
