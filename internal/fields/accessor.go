// Package fields reads loosely shaped record fields and infers which field
// plays which role (id, dates, category, description) in a record batch.
package fields

import (
	"fmt"

	"github.com/ajitpratap0/canvas-engine/internal/models"
)

// Probe lists for ByPriority, ordered most to least specific. Producers name
// semantically equivalent fields inconsistently, so readers try several.
var (
	TitleKeys       = []string{"title", "name", "subject"}
	OwnerKeys       = []string{"assignee", "owner", "responsiblePerson"}
	DescriptionKeys = []string{"description", "notes", "details"}
	PriorityKeys    = []string{"priority", "importance"}
	EndDateKeys     = []string{"dueDate", "endDate", "targetDate"}
	StartDateKeys   = []string{"startDate", "createdDate"}
)

// Value returns the named field's value, or nil when absent.
func Value(rec models.Record, key string) any {
	f, ok := rec.Field(key)
	if !ok {
		return nil
	}
	return f.Value
}

// String returns the named field's value as display text, "" when absent.
func String(rec models.Record, key string) string {
	f, ok := rec.Field(key)
	if !ok {
		return ""
	}
	return f.ValueString()
}

// ByPriority returns the first non-empty value among the probed keys.
func ByPriority(rec models.Record, keys ...string) string {
	for _, k := range keys {
		if s := String(rec, k); s != "" {
			return s
		}
	}
	return ""
}

// RecordID resolves a stable id for the record: the explicit wire id, then
// the inferred id field's value, then a positional fallback.
func RecordID(rec models.Record, roles Roles, index int) string {
	if id := rec.RecordID(); id != "" {
		return id
	}
	if s := String(rec, roles.ID); s != "" {
		return s
	}
	return fmt.Sprintf("item-%d", index)
}
