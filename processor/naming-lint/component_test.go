package naminglint

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/namelint/policy"
	declindexer "github.com/c360studio/namelint/processor/decl-indexer"
)

// newTestComponent returns a Component wired for offline lint tests,
// without a NATS connection.
func newTestComponent(t *testing.T, pol policy.Policy) *Component {
	t.Helper()
	registry := prometheus.NewRegistry()
	return &Component{
		name:     "naming-lint",
		config:   DefaultConfig(),
		logger:   slog.Default(),
		engine:   policy.NewEngine(pol),
		metrics:  NewMetrics(registry),
		registry: registry,
	}
}

func testBatch(decls ...policy.Declaration) *declindexer.DeclarationBatch {
	return &declindexer.DeclarationBatch{
		BatchID:      "batch-1",
		Project:      "grimlore",
		Path:         "src/widget.hpp",
		Hash:         "abcd1234",
		Language:     "cpp",
		Declarations: decls,
		ExtractedAt:  time.Now().UTC(),
	}
}

func TestLintBatch_AllCompliant(t *testing.T) {
	c := newTestComponent(t, policy.DefaultPolicy())

	report := c.lintBatch(testBatch(
		policy.Declaration{Category: policy.CategoryGlobalConstant, Name: "k_Max", Scope: policy.ScopeGlobal, IsConst: true},
		policy.Declaration{Category: policy.CategoryInstanceMember, Name: "m_Count", Scope: policy.ScopeClass},
	))

	if !report.Passed {
		t.Error("expected report to pass")
	}
	if report.DeclarationsChecked != 2 {
		t.Errorf("DeclarationsChecked = %d, want 2", report.DeclarationsChecked)
	}
	if len(report.Violations) != 0 {
		t.Errorf("expected no violations, got %d", len(report.Violations))
	}
	if report.Error != "" {
		t.Errorf("unexpected error: %s", report.Error)
	}
}

func TestLintBatch_IgnoredSeverityNotReported(t *testing.T) {
	pol := policy.DefaultPolicy()
	pol.SeverityOverrides = map[string]string{"member.prefix": "ignore"}
	c := newTestComponent(t, pol)

	report := c.lintBatch(testBatch(
		policy.Declaration{Category: policy.CategoryInstanceMember, Name: "BadName", Scope: policy.ScopeClass},
	))

	if !report.Passed {
		t.Error("expected batch with only ignored violations to pass")
	}
	if len(report.Violations) != 0 {
		t.Errorf("expected no reported violations, got %d", len(report.Violations))
	}
	if report.DeclarationsChecked != 1 {
		t.Errorf("DeclarationsChecked = %d, want 1", report.DeclarationsChecked)
	}
}

func TestLintBatch_WithViolations(t *testing.T) {
	c := newTestComponent(t, policy.DefaultPolicy())

	report := c.lintBatch(testBatch(
		policy.Declaration{Category: policy.CategoryGlobalConstant, Name: "MaxRetries", Scope: policy.ScopeGlobal, IsConst: true},
		policy.Declaration{Category: policy.CategoryTypedefName, Name: "Uint", Scope: policy.ScopeGlobal},
		policy.Declaration{Category: policy.CategoryInstanceMember, Name: "m_Fine", Scope: policy.ScopeClass},
	))

	if report.Passed {
		t.Error("expected report to fail")
	}
	if len(report.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(report.Violations))
	}
	if report.Violations[0].Declaration.Name != "MaxRetries" {
		t.Errorf("first violation = %q", report.Violations[0].Declaration.Name)
	}
	if report.Violations[1].Violated.ID != "typedef.banned" {
		t.Errorf("second violation rule = %q", report.Violations[1].Violated.ID)
	}
}

func TestLintBatch_UnknownCategoryAbortsBatch(t *testing.T) {
	c := newTestComponent(t, policy.DefaultPolicy())

	report := c.lintBatch(testBatch(
		policy.Declaration{Category: policy.CategoryGlobalConstant, Name: "k_Fine", Scope: policy.ScopeGlobal, IsConst: true},
		policy.Declaration{Category: "mystery", Name: "x"},
	))

	if report.Passed {
		t.Error("expected report to fail")
	}
	if report.Error == "" {
		t.Error("expected report error to be set")
	}
	if report.DeclarationsChecked != 0 {
		t.Errorf("DeclarationsChecked = %d, want 0 for aborted batch", report.DeclarationsChecked)
	}
	if len(report.Violations) != 0 {
		t.Errorf("aborted batch should carry no partial verdicts, got %d", len(report.Violations))
	}
}

func TestParseBatch_Enveloped(t *testing.T) {
	batch := testBatch(
		policy.Declaration{Category: policy.CategoryInstanceMember, Name: "m_A", Scope: policy.ScopeClass},
	)

	payload, err := json.Marshal(batch)
	if err != nil {
		t.Fatal(err)
	}
	envelope, err := json.Marshal(map[string]json.RawMessage{
		"payload": payload,
	})
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := parseBatch(envelope)
	if err != nil {
		t.Fatalf("parseBatch: %v", err)
	}
	if parsed.BatchID != "batch-1" {
		t.Errorf("BatchID = %q", parsed.BatchID)
	}
	if len(parsed.Declarations) != 1 {
		t.Errorf("Declarations = %d, want 1", len(parsed.Declarations))
	}
}

func TestParseBatch_Bare(t *testing.T) {
	data, err := json.Marshal(testBatch())
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := parseBatch(data)
	if err != nil {
		t.Fatalf("parseBatch: %v", err)
	}
	if parsed.Path != "src/widget.hpp" {
		t.Errorf("Path = %q", parsed.Path)
	}
}

func TestParseBatch_Garbage(t *testing.T) {
	if _, err := parseBatch([]byte("not json")); err == nil {
		t.Error("expected error for malformed message")
	}
}

func TestConfig_Validate(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	config.StreamName = ""
	if err := config.Validate(); err == nil {
		t.Error("expected error for missing stream name")
	}

	config = DefaultConfig()
	config.ConsumerName = ""
	if err := config.Validate(); err == nil {
		t.Error("expected error for missing consumer name")
	}
}

func TestLintReport_Validate(t *testing.T) {
	report := &LintReport{}
	if err := report.Validate(); err == nil {
		t.Error("expected error for missing batch_id")
	}

	report.BatchID = "batch-1"
	if err := report.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
