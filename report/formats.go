package report

import (
	"fmt"
	"io"
	"strings"
)

// Format identifies a report output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// FormatInfo describes a report format.
type FormatInfo struct {
	Name        string
	MIMEType    string
	Extension   string
	Description string
}

// Renderer writes a report to w in a specific format.
type Renderer func(w io.Writer, r *Report) error

// formatRegistry maps formats to their metadata and renderer.
var formatRegistry = map[Format]struct {
	Info   FormatInfo
	Render Renderer
}{
	FormatText: {
		Info: FormatInfo{
			Name:        "Plain Text",
			MIMEType:    "text/plain",
			Extension:   ".txt",
			Description: "One line per violation, grouped by file",
		},
		Render: RenderText,
	},
	FormatJSON: {
		Info: FormatInfo{
			Name:        "JSON",
			MIMEType:    "application/json",
			Extension:   ".json",
			Description: "Machine-readable report document",
		},
		Render: RenderJSON,
	},
	FormatHTML: {
		Info: FormatInfo{
			Name:        "HTML",
			MIMEType:    "text/html",
			Extension:   ".html",
			Description: "Standalone page with collapsible per-file sections",
		},
		Render: RenderHTML,
	},
	FormatMarkdown: {
		Info: FormatInfo{
			Name:        "Markdown",
			MIMEType:    "text/markdown",
			Extension:   ".md",
			Description: "GitHub-flavored markdown summary",
		},
		Render: RenderMarkdown,
	},
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := formatRegistry[f]; !ok {
		return "", fmt.Errorf("unknown report format %q (supported: %s)", s, strings.Join(SupportedFormats(), ", "))
	}
	return f, nil
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(f Format) (FormatInfo, bool) {
	entry, ok := formatRegistry[f]
	return entry.Info, ok
}

// SupportedFormats lists all registered format names in a stable order.
func SupportedFormats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatHTML), string(FormatMarkdown)}
}

// Render writes the report to w in the requested format.
func Render(w io.Writer, r *Report, f Format) error {
	entry, ok := formatRegistry[f]
	if !ok {
		return fmt.Errorf("unknown report format %q", f)
	}
	return entry.Render(w, r)
}
