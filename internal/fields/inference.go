package fields

import (
	"log/slog"

	"github.com/ajitpratap0/canvas-engine/internal/models"
)

// Roles maps semantic roles to field keys for one record batch. A role that
// resolves to a key absent from a record simply reads as empty there.
type Roles struct {
	ID          string
	Start       string
	End         string
	Category    string
	Description string

	// Group drives the gantt grouping when set; empty means probe by the
	// group key names.
	Group string
}

// Literal fallbacks used when no field matches a role's heuristics. Records
// produced by older canvas templates actually carry these keys.
const (
	fallbackID          = "field1"
	fallbackDescription = "field2"
	fallbackCategory    = "field3"
	fallbackStart       = "field4"
	fallbackEnd         = "field5"
)

// Inferrer assigns semantic roles to the fields of a record batch.
type Inferrer interface {
	Infer(records []models.Record) Roles
}

// HeuristicInferrer infers roles from the declared field types of the first
// record, with positional and literal fallbacks. Every view transformer uses
// the same inferrer so projections of one batch never disagree about which
// field is the id or the category.
type HeuristicInferrer struct {
	logger *slog.Logger
}

// NewHeuristicInferrer returns an inferrer logging its decisions to logger.
func NewHeuristicInferrer(logger *slog.Logger) *HeuristicInferrer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HeuristicInferrer{logger: logger}
}

// Infer derives roles from the first record of the batch. An empty batch
// yields the literal fallbacks so callers always hold usable keys.
func (h *HeuristicInferrer) Infer(records []models.Record) Roles {
	roles := Roles{
		ID:          fallbackID,
		Start:       fallbackStart,
		End:         fallbackEnd,
		Category:    fallbackCategory,
		Description: fallbackDescription,
	}
	if len(records) == 0 {
		return roles
	}

	sample := records[0]
	keys := sample.Keys()
	if len(keys) == 0 {
		return roles
	}

	var dateKeys []string
	firstText := ""
	firstDropdown := ""
	firstAllowed := ""
	firstTextarea := ""
	for _, k := range keys {
		f, _ := sample.Field(k)
		switch f.Type {
		case models.FieldTypeDate:
			dateKeys = append(dateKeys, k)
		case models.FieldTypeText, models.FieldTypeID:
			if firstText == "" {
				firstText = k
			}
		case models.FieldTypeDropdown:
			if firstDropdown == "" {
				firstDropdown = k
			}
		case models.FieldTypeTextarea:
			if firstTextarea == "" {
				firstTextarea = k
			}
		}
		if firstAllowed == "" && len(f.AllowedValues) > 0 {
			firstAllowed = k
		}
	}

	if firstText != "" {
		roles.ID = firstText
	} else {
		roles.ID = keys[0]
	}

	if len(dateKeys) > 0 {
		roles.Start = dateKeys[0]
	} else if len(keys) > 1 {
		roles.Start = keys[1]
	}

	if len(dateKeys) > 1 {
		roles.End = dateKeys[1]
	}

	if firstDropdown != "" {
		roles.Category = firstDropdown
	} else if firstAllowed != "" {
		roles.Category = firstAllowed
	}

	if firstTextarea != "" {
		roles.Description = firstTextarea
	}

	h.logger.Debug("inferred field roles",
		"id", roles.ID,
		"start", roles.Start,
		"end", roles.End,
		"category", roles.Category,
		"description", roles.Description,
	)
	return roles
}

// MetadataInferrer wraps another inferrer and overrides its roles with the
// batch metadata's component configuration: the kanban columnField pins the
// category and the gantt date/group fields pin start, end, and group. The
// metadata is read through a func so the inferrer always sees the current
// batch's configuration.
type MetadataInferrer struct {
	base Inferrer
	meta func() *models.CanvasMetadata
}

// NewMetadataInferrer returns an inferrer applying meta's component
// configuration over base's heuristics. A nil meta func disables overrides.
func NewMetadataInferrer(base Inferrer, meta func() *models.CanvasMetadata) *MetadataInferrer {
	if base == nil {
		base = NewHeuristicInferrer(nil)
	}
	return &MetadataInferrer{base: base, meta: meta}
}

// Infer derives roles from base, then applies the metadata overrides.
func (m *MetadataInferrer) Infer(records []models.Record) Roles {
	roles := m.base.Infer(records)
	if m.meta == nil {
		return roles
	}
	meta := m.meta()
	if meta == nil {
		return roles
	}
	if c := meta.Component(models.ViewKanban); c.ColumnField != "" {
		roles.Category = c.ColumnField
	}
	c := meta.Component(models.ViewGantt)
	if c.StartDateField != "" {
		roles.Start = c.StartDateField
	}
	if c.EndDateField != "" {
		roles.End = c.EndDateField
	}
	if c.GroupByField != "" {
		roles.Group = c.GroupByField
	}
	return roles
}
