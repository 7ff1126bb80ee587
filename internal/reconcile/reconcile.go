// Package reconcile applies targeted mutations to a record batch: moving a
// card between buckets, editing one cell, appending a blank record, and
// deleting records. Mutations are pure; they return a new slice and never
// modify the input, and malformed input degrades to a no-op rather than an
// error so a bad tool call can not destroy canvas state.
package reconcile

import (
	"log/slog"

	"github.com/ajitpratap0/canvas-engine/internal/fields"
	"github.com/ajitpratap0/canvas-engine/internal/models"
)

// Reconciler mutates record batches using the same role inference the view
// transformers use, so a card move lands on the same field kanban grouped by.
type Reconciler struct {
	logger   *slog.Logger
	inferrer fields.Inferrer
}

// New returns a reconciler logging to logger.
func New(logger *slog.Logger, inferrer fields.Inferrer) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if inferrer == nil {
		inferrer = fields.NewHeuristicInferrer(logger)
	}
	return &Reconciler{logger: logger, inferrer: inferrer}
}

// EditCell sets one field's value on the record with the given id. Every
// other field of every record is untouched. Unknown ids and unknown fields
// leave the batch unchanged and report applied=false.
func (r *Reconciler) EditCell(records []models.Record, id, key string, value any) ([]models.Record, bool) {
	if len(records) == 0 || id == "" || key == "" {
		return records, false
	}
	roles := r.inferrer.Infer(records)

	out := make([]models.Record, len(records))
	copy(out, records)
	for i := range out {
		if fields.RecordID(out[i], roles, i) != id {
			continue
		}
		clone := out[i].Clone()
		if !clone.SetFieldValue(key, value) {
			r.logger.Warn("edit targeted missing field", "id", id, "field", key)
			return records, false
		}
		out[i] = clone
		r.logger.Debug("cell edited", "id", id, "field", key)
		return out, true
	}
	r.logger.Warn("edit targeted missing record", "id", id)
	return records, false
}

// MoveCard rebuckets the record with the given id by writing newBucket into
// the inferred category field. The bucket value is not validated against
// allowedValues; out-of-enum values surface as ad hoc kanban columns.
func (r *Reconciler) MoveCard(records []models.Record, id, newBucket string) ([]models.Record, bool) {
	if len(records) == 0 || id == "" {
		return records, false
	}
	roles := r.inferrer.Infer(records)
	return r.EditCell(records, id, roles.Category, newBucket)
}

// ApplyMoves rebuckets several records in one pass, as a kanban drag commit
// does. Ids with no matching record are skipped; applied reports whether at
// least one record changed.
func (r *Reconciler) ApplyMoves(records []models.Record, moves map[string]string) ([]models.Record, bool) {
	if len(records) == 0 || len(moves) == 0 {
		return records, false
	}
	roles := r.inferrer.Infer(records)

	out := make([]models.Record, len(records))
	copy(out, records)
	applied := false
	for i := range out {
		bucket, ok := moves[fields.RecordID(out[i], roles, i)]
		if !ok {
			continue
		}
		clone := out[i].Clone()
		if !clone.SetFieldValue(roles.Category, bucket) {
			continue
		}
		out[i] = clone
		applied = true
	}
	if !applied {
		return records, false
	}
	r.logger.Debug("moves applied", "requested", len(moves))
	return out, true
}

// AddRecord appends a blank record shaped like the first one: same fields,
// same types and allowedValues, every value empty. The new record resolves
// to a positional item-<n> id until the user fills its id field. An empty
// batch has no template and stays empty.
func (r *Reconciler) AddRecord(records []models.Record) ([]models.Record, bool) {
	if len(records) == 0 {
		return records, false
	}
	blank := records[0].Clone()
	for _, k := range blank.Keys() {
		blank.SetFieldValue(k, "")
	}

	out := make([]models.Record, 0, len(records)+1)
	out = append(out, records...)
	out = append(out, blank)
	r.logger.Debug("record added", "total", len(out))
	return out, true
}

// DeleteRecords removes the records with the given ids and prunes those ids
// from the selection, so the selection never references a record that no
// longer exists. Unknown ids are ignored.
func (r *Reconciler) DeleteRecords(records []models.Record, ids, selection []string) ([]models.Record, []string, bool) {
	if len(records) == 0 || len(ids) == 0 {
		return records, selection, false
	}
	roles := r.inferrer.Infer(records)

	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	out := make([]models.Record, 0, len(records))
	removed := 0
	for i, rec := range records {
		if doomed[fields.RecordID(rec, roles, i)] {
			removed++
			continue
		}
		out = append(out, rec)
	}
	if removed == 0 {
		return records, selection, false
	}

	kept := make([]string, 0, len(selection))
	for _, id := range selection {
		if !doomed[id] {
			kept = append(kept, id)
		}
	}
	r.logger.Debug("records deleted", "removed", removed, "remaining", len(out))
	return out, kept, true
}
