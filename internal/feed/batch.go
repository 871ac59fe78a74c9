// Package feed normalises raw schedule batches: ports are standardised,
// duplicate sailings dropped and the result handed to sinks and back onto
// the message bus.
package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"shipping_schedule/internal/dedup"
	"shipping_schedule/internal/schedule"
)

// RawBatch is the payload received on the raw subject. Records are loosely
// shaped rows keyed by spreadsheet headers.
type RawBatch struct {
	BatchID string           `json:"batch_id,omitempty"`
	Source  string           `json:"source,omitempty"`
	Records []map[string]any `json:"records"`
}

// DecodeRawBatch parses a raw batch payload.
func DecodeRawBatch(data []byte) (*RawBatch, error) {
	var b RawBatch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return &b, nil
}

// Sailing is a deduplicated record with its port resolved.
type Sailing struct {
	schedule.SailingRecord

	PortRaw  string `json:"port_raw"`
	PortCode string `json:"port_code,omitempty"`
	Region   string `json:"region,omitempty"`
	Resolved bool   `json:"resolved"`
}

// Batch is the normalised form of a raw batch, published on the output
// subject.
type Batch struct {
	BatchID    string      `json:"batch_id"`
	Source     string      `json:"source"`
	ReceivedAt time.Time   `json:"received_at"`
	Records    []Sailing   `json:"records"`
	Stats      dedup.Stats `json:"stats"`
	Unresolved []string    `json:"unresolved,omitempty"`
}
