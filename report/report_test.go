package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/namelint/policy"
)

func violation(name, file string, line int, ruleID string, sev policy.Severity, expected string) policy.Verdict {
	return policy.Verdict{
		Declaration: policy.Declaration{
			Category: policy.CategoryInstanceMember,
			Name:     name,
			Scope:    policy.ScopeClass,
			File:     file,
			Line:     line,
		},
		Compliant: false,
		Violated: &policy.Rule{
			ID:          ruleID,
			Severity:    sev,
			Description: "Wrong prefix",
		},
		Expected: expected,
		Message:  name + " does not start with '" + expected + "'",
	}
}

func compliant(name string) policy.Verdict {
	return policy.Verdict{
		Declaration: policy.Declaration{
			Category: policy.CategoryInstanceMember,
			Name:     name,
			Scope:    policy.ScopeClass,
		},
		Compliant: true,
	}
}

func TestReport_AddKeepsOnlyViolations(t *testing.T) {
	r := New("widget")
	r.Add([]policy.Verdict{
		compliant("m_Count"),
		violation("Count", "src/widget.cpp", 10, "member.prefix", policy.SeverityError, "m_"),
		compliant("m_Name"),
	})

	assert.Equal(t, 3, r.Checked)
	require.Len(t, r.Violations, 1)
	assert.Equal(t, "Count", r.Violations[0].Declaration.Name)
	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, "widget", r.Project)
}

func TestReport_AddDropsIgnoredSeverity(t *testing.T) {
	pol := policy.DefaultPolicy()
	pol.SeverityOverrides = map[string]string{"member.prefix": "ignore"}
	engine := policy.NewEngine(pol)

	verdicts, err := engine.CheckAll([]policy.Declaration{{
		Category: policy.CategoryInstanceMember,
		Name:     "BadName",
		Scope:    policy.ScopeClass,
		File:     "widget.cpp",
		Line:     3,
	}})
	require.NoError(t, err)

	r := New("widget")
	r.Add(verdicts)

	assert.Equal(t, 1, r.Checked)
	assert.Empty(t, r.Violations)

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, r))
	assert.Contains(t, buf.String(), "naming check passed")
	assert.NotContains(t, buf.String(), "BadName")
}

func TestReport_Combine(t *testing.T) {
	r := New("widget")
	r.Add([]policy.Verdict{violation("A", "a.cpp", 1, "member.prefix", policy.SeverityError, "m_")})

	other := New("widget")
	other.Add([]policy.Verdict{
		compliant("m_B"),
		violation("C", "c.cpp", 2, "member.prefix", policy.SeverityError, "m_"),
	})

	r.Combine(other)
	assert.Equal(t, 3, r.Checked)
	assert.Len(t, r.Violations, 2)

	r.Combine(nil)
	assert.Equal(t, 3, r.Checked)
}

func TestReport_SortOrder(t *testing.T) {
	r := New("widget")
	r.Violations = []policy.Verdict{
		violation("d", "b.cpp", 5, "member.prefix", policy.SeverityWarning, "m_"),
		violation("c", "b.cpp", 2, "member.prefix", policy.SeverityError, "m_"),
		violation("b", "a.cpp", 9, "member.prefix", policy.SeverityError, "m_"),
		violation("a", "a.cpp", 1, "constant.prefix", policy.SeverityError, "k_"),
	}

	r.Sort()

	names := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		names[i] = v.Declaration.Name
	}
	// Severity first, then rule ID, then file, then line.
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
}

func TestReport_Filter(t *testing.T) {
	r := New("widget")
	r.Violations = []policy.Verdict{
		violation("a", "src/core/a.cpp", 1, "member.prefix", policy.SeverityError, "m_"),
		violation("b", "src/gen/b.cpp", 1, "member.prefix", policy.SeverityError, "m_"),
		violation("c", "include/c.h", 1, "member.prefix", policy.SeverityError, "m_"),
	}
	r.Checked = 10

	filtered := r.Filter([]string{"src/**"}, []string{"src/gen/**"})
	require.Len(t, filtered.Violations, 1)
	assert.Equal(t, "a", filtered.Violations[0].Declaration.Name)
	assert.Equal(t, 10, filtered.Checked)
	assert.Equal(t, r.RunID, filtered.RunID)

	all := r.Filter(nil, nil)
	assert.Len(t, all.Violations, 3)

	excluded := r.Filter(nil, []string{"**/*.h"})
	assert.Len(t, excluded.Violations, 2)
}

func TestReport_SeverityHelpers(t *testing.T) {
	r := New("widget")
	r.Violations = []policy.Verdict{
		violation("a", "a.cpp", 1, "member.prefix", policy.SeverityError, "m_"),
		violation("b", "a.cpp", 2, "member.prefix", policy.SeverityWarning, "m_"),
		violation("c", "a.cpp", 3, "member.prefix", policy.SeverityWarning, "m_"),
	}

	counts := r.CountBySeverity()
	assert.Equal(t, 1, counts["error"])
	assert.Equal(t, 2, counts["warning"])

	byRule := r.ByRule()
	assert.Len(t, byRule["member.prefix"], 3)

	assert.True(t, r.HasAtOrAbove(policy.SeverityError))
	assert.True(t, r.HasAtOrAbove(policy.SeverityHint))

	r.Violations = r.Violations[1:]
	assert.False(t, r.HasAtOrAbove(policy.SeverityError))
	assert.True(t, r.HasAtOrAbove(policy.SeverityWarning))
}

func TestRenderText(t *testing.T) {
	r := New("widget")
	r.Add([]policy.Verdict{
		compliant("m_Ok"),
		violation("Count", "src/widget.cpp", 42, "member.prefix", policy.SeverityError, "m_"),
	})

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "src/widget.cpp:")
	assert.Contains(t, out, "line 42: Count: VIOLATION (expected prefix 'm_') - Wrong prefix")
	assert.Contains(t, out, "2 declarations checked, 1 violations")
	assert.Contains(t, out, "[error: 1]")
}

func TestRenderText_NoPrefixViolation(t *testing.T) {
	r := New("widget")
	v := violation("Uint", "types.h", 3, "typedef.banned", policy.SeverityError, "")
	v.Violated.Description = "Typedefs are not allowed"
	r.Violations = append(r.Violations, v)
	r.Checked = 1

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, r))
	assert.Contains(t, buf.String(), "line 3: Uint: VIOLATION - Typedefs are not allowed")
}

func TestRenderText_Clean(t *testing.T) {
	r := New("widget")
	r.Checked = 7

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, r))
	assert.Contains(t, buf.String(), "naming check passed: 7 declarations checked")
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	r := New("widget")
	r.Add([]policy.Verdict{violation("Count", "a.cpp", 1, "member.prefix", policy.SeverityError, "m_")})

	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, r))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.RunID, decoded.RunID)
	require.Len(t, decoded.Violations, 1)
	assert.Equal(t, "member.prefix", decoded.Violations[0].Violated.ID)
}

func TestRenderHTML(t *testing.T) {
	r := New("widget")
	r.Add([]policy.Verdict{violation("Count", "src/widget.cpp", 42, "member.prefix", policy.SeverityError, "m_")})

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "<title>Naming Report - widget</title>")
	assert.Contains(t, out, "src/widget.cpp")
	assert.Contains(t, out, "<code>Count</code>")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "member.prefix")
}

func TestRenderHTML_Clean(t *testing.T) {
	r := New("widget")
	r.Checked = 3

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, r))
	assert.Contains(t, buf.String(), "comply with the naming policy")
}

func TestRenderMarkdown(t *testing.T) {
	r := New("widget")
	r.Add([]policy.Verdict{violation("Count", "src/widget.cpp", 42, "member.prefix", policy.SeverityError, "m_")})

	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, r))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Naming Report - widget"))
	assert.Contains(t, out, "Count")
	assert.Contains(t, out, "member.prefix")
}

func TestParseFormat(t *testing.T) {
	for _, name := range SupportedFormats() {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), f)
	}

	f, err := ParseFormat("  JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestFormatInfo(t *testing.T) {
	info, ok := GetFormatInfo(FormatHTML)
	require.True(t, ok)
	assert.Equal(t, "text/html", info.MIMEType)
	assert.Equal(t, ".html", info.Extension)

	_, ok = GetFormatInfo(Format("xml"))
	assert.False(t, ok)
}

func TestRender_DispatchesFormat(t *testing.T) {
	r := New("widget")
	r.Checked = 1

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r, FormatText))
	assert.Contains(t, buf.String(), "naming check passed")

	assert.Error(t, Render(&buf, r, Format("xml")))
}
