package report

import (
	"fmt"
	"html/template"
	"io"
	"sort"

	"github.com/Masterminds/sprig/v3"

	"github.com/c360studio/namelint/policy"
)

// htmlTemplate renders a standalone page with collapsible per-file
// sections.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Naming Report - {{ .Report.Project }}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; }
.meta { color: #666; font-size: 0.9em; margin-bottom: 1.5em; }
.summary span { margin-right: 1em; }
details { margin: 0.5em 0; border: 1px solid #ddd; border-radius: 4px; padding: 0.3em 0.8em; }
summary { cursor: pointer; font-weight: bold; }
table { border-collapse: collapse; margin: 0.5em 0; width: 100%; }
th, td { text-align: left; padding: 0.3em 0.8em; border-bottom: 1px solid #eee; }
.sev-error { color: #b71c1c; font-weight: bold; }
.sev-warning { color: #e65100; }
.sev-suggestion { color: #1565c0; }
.sev-hint { color: #666; }
.pass { color: #2e7d32; font-weight: bold; }
code { background: #f5f5f5; padding: 0 0.3em; }
</style>
</head>
<body>
<h1>Naming Report - {{ .Report.Project }}</h1>
<div class="meta">
Run <code>{{ .Report.RunID }}</code> generated {{ .Report.GeneratedAt | date "2006-01-02 15:04:05 MST" }}
</div>
<div class="summary">
<span>{{ .Report.Checked }} declarations checked</span>
<span>{{ len .Report.Violations }} violations</span>
{{- range $sev, $count := .Counts }}
<span class="sev-{{ $sev }}">{{ $count }} {{ $sev }}</span>
{{- end }}
</div>
{{- if not .Report.Violations }}
<p class="pass">All checked declarations comply with the naming policy.</p>
{{- end }}
{{- range .Files }}
<details open>
<summary>{{ .Path }} ({{ len .Violations }})</summary>
<table>
<tr><th>Line</th><th>Name</th><th>Severity</th><th>Rule</th><th>Expected</th><th>Description</th></tr>
{{- range .Violations }}
<tr>
<td>{{ .Declaration.Line }}</td>
<td><code>{{ .Declaration.Name }}</code></td>
<td class="sev-{{ .Violated.Severity }}">{{ .Violated.Severity.String | upper }}</td>
<td>{{ .Violated.ID }}</td>
<td>{{ if .Expected }}<code>{{ .Expected }}</code>{{ else }}-{{ end }}</td>
<td>{{ .Violated.Description }}</td>
</tr>
{{- end }}
</table>
</details>
{{- end }}
</body>
</html>
`

// fileSection is one per-file group in the HTML page.
type fileSection struct {
	Path       string
	Violations []policy.Verdict
}

// htmlData is the template context.
type htmlData struct {
	Report *Report
	Counts map[string]int
	Files  []fileSection
}

var htmlTmpl = template.Must(
	template.New("report").Funcs(sprig.HtmlFuncMap()).Parse(htmlTemplate),
)

// RenderHTML writes the report as a standalone HTML page.
func RenderHTML(w io.Writer, r *Report) error {
	grouped := r.ByFile()
	files := make([]fileSection, 0, len(grouped))
	for path, violations := range grouped {
		files = append(files, fileSection{Path: path, Violations: violations})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	data := htmlData{
		Report: r,
		Counts: r.CountBySeverity(),
		Files:  files,
	}
	if err := htmlTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering HTML report: %w", err)
	}
	return nil
}
