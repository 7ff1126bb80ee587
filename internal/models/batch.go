package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// BatchShape records which envelope a record batch arrived in so an export
// can reproduce it.
type BatchShape int

const (
	// BatchArray is a bare JSON array of records.
	BatchArray BatchShape = iota
	// BatchEntityRecords is {"entityRecords": [...], "metadata": {...}}.
	BatchEntityRecords
	// BatchData is {"data": [...]} with an optional extra nesting level,
	// {"data": {"data": [...], "metadata": {...}}}.
	BatchData
)

// Batch is a parsed record batch plus its envelope.
type Batch struct {
	Records  []Record
	Metadata *CanvasMetadata
	Shape    BatchShape
}

// ParseBatch decodes a record batch in any of the accepted envelopes. A batch
// that is valid JSON but not one of the envelopes returns an error; the
// caller renders empty views instead of failing the canvas.
func ParseBatch(data []byte) (*Batch, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("batch: empty input")
	}

	if trimmed[0] == '[' {
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("batch: %w", err)
		}
		return &Batch{Records: records, Shape: BatchArray}, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}

	if raw, ok := envelope["entityRecords"]; ok {
		b := &Batch{Shape: BatchEntityRecords}
		if err := json.Unmarshal(raw, &b.Records); err != nil {
			return nil, fmt.Errorf("batch: entityRecords: %w", err)
		}
		if metaRaw, ok := envelope["metadata"]; ok {
			var meta CanvasMetadata
			if err := json.Unmarshal(metaRaw, &meta); err == nil {
				b.Metadata = &meta
			}
		}
		return b, nil
	}

	if raw, ok := envelope["data"]; ok {
		b := &Batch{Shape: BatchData}
		if rawIsArray(raw) {
			if err := json.Unmarshal(raw, &b.Records); err != nil {
				return nil, fmt.Errorf("batch: data: %w", err)
			}
			if metaRaw, ok := envelope["metadata"]; ok {
				var meta CanvasMetadata
				if err := json.Unmarshal(metaRaw, &meta); err == nil {
					b.Metadata = &meta
				}
			}
			return b, nil
		}
		// One extra nesting level: {"data": {"data": [...], ...}}.
		inner, err := ParseBatch(raw)
		if err != nil {
			return nil, err
		}
		inner.Shape = BatchData
		return inner, nil
	}

	return nil, fmt.Errorf("batch: no entityRecords or data key")
}

// MarshalBatch re-encodes records in the envelope they arrived in.
func MarshalBatch(b *Batch) ([]byte, error) {
	switch b.Shape {
	case BatchEntityRecords:
		return json.Marshal(struct {
			EntityRecords []Record        `json:"entityRecords"`
			Metadata      *CanvasMetadata `json:"metadata,omitempty"`
		}{EntityRecords: b.Records, Metadata: b.Metadata})
	case BatchData:
		return json.Marshal(struct {
			Data     []Record        `json:"data"`
			Metadata *CanvasMetadata `json:"metadata,omitempty"`
		}{Data: b.Records, Metadata: b.Metadata})
	default:
		return json.Marshal(b.Records)
	}
}
