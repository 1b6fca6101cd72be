package naminglint

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/namelint/policy"
)

// LintReport is published to naming.lint.report.<batch_id>. It
// summarises one declaration batch: how many declarations were checked
// and which ones violated the naming policy.
type LintReport struct {
	BatchID             string           `json:"batch_id"`
	Project             string           `json:"project"`
	Path                string           `json:"path"`
	Passed              bool             `json:"passed"`
	DeclarationsChecked int              `json:"declarations_checked"`
	Violations          []policy.Verdict `json:"violations"`
	Error               string           `json:"error,omitempty"`
	CheckedAt           time.Time        `json:"checked_at"`
}

// Schema implements message.Payload.
func (p *LintReport) Schema() message.Type {
	return LintReportType
}

// Validate implements message.Payload.
func (p *LintReport) Validate() error {
	if p.BatchID == "" {
		return fmt.Errorf("batch_id is required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *LintReport) MarshalJSON() ([]byte, error) {
	type Alias LintReport
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *LintReport) UnmarshalJSON(data []byte) error {
	type Alias LintReport
	return json.Unmarshal(data, (*Alias)(p))
}

// LintReportType is the message type for lint reports.
var LintReportType = message.Type{
	Domain:   "naming",
	Category: "lint-report",
	Version:  "v1",
}

func init() {
	if err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "naming",
		Category:    "lint-report",
		Version:     "v1",
		Description: "Naming lint report for one declaration batch",
		Factory:     func() any { return &LintReport{} },
	}); err != nil {
		panic("failed to register LintReport: " + err.Error())
	}
}
