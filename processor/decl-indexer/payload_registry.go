package declindexer

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/namelint/policy"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "naming",
		Category:    "declaration-batch",
		Version:     "v1",
		Description: "Declarations extracted from one source file, ready for lint",
		Factory:     func() any { return &DeclarationBatch{} },
	})
	if err != nil {
		panic("failed to register DeclarationBatch: " + err.Error())
	}
}

// DeclarationBatchType is the message type for declaration batches.
var DeclarationBatchType = message.Type{Domain: "naming", Category: "declaration-batch", Version: "v1"}

// DeclarationBatch carries the declarations extracted from one source
// file. BatchID ties the batch to the lint report produced from it.
type DeclarationBatch struct {
	BatchID      string               `json:"batch_id"`
	Project      string               `json:"project"`
	Path         string               `json:"path"`
	Hash         string               `json:"hash"`
	Language     string               `json:"language"`
	Declarations []policy.Declaration `json:"declarations"`
	ExtractedAt  time.Time            `json:"extracted_at"`
}

// Schema returns the message type for Payload interface.
func (p *DeclarationBatch) Schema() message.Type { return DeclarationBatchType }

// Validate validates the payload for Payload interface.
func (p *DeclarationBatch) Validate() error {
	if p.BatchID == "" {
		return errors.New("batch_id is required")
	}
	if p.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *DeclarationBatch) MarshalJSON() ([]byte, error) {
	type Alias DeclarationBatch
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *DeclarationBatch) UnmarshalJSON(data []byte) error {
	type Alias DeclarationBatch
	return json.Unmarshal(data, (*Alias)(p))
}
