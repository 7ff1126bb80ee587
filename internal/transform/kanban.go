package transform

import (
	"log/slog"
	"sort"
	"time"

	"github.com/ajitpratap0/canvas-engine/internal/fields"
	"github.com/ajitpratap0/canvas-engine/internal/models"
)

// defaultColumnName buckets records whose category value is empty and whose
// batch declares no columns at all.
const defaultColumnName = "Default"

// Kanban projects a record batch into columns and cards. Declared
// allowedValues become the column set; category values outside it get ad hoc
// columns appended after the declared ones, so every record lands in exactly
// one column.
type Kanban struct {
	logger   *slog.Logger
	inferrer fields.Inferrer
	now      func() time.Time
}

// NewKanban returns a kanban transformer. now substitutes missing dates and
// is injectable for tests; nil means time.Now.
func NewKanban(logger *slog.Logger, inferrer fields.Inferrer, now func() time.Time) *Kanban {
	if logger == nil {
		logger = slog.Default()
	}
	if inferrer == nil {
		inferrer = fields.NewHeuristicInferrer(logger)
	}
	if now == nil {
		now = time.Now
	}
	return &Kanban{logger: logger, inferrer: inferrer, now: now}
}

// Transform builds the kanban view. An empty batch yields empty columns and
// features, not an error.
func (k *Kanban) Transform(records []models.Record) models.KanbanView {
	view := models.KanbanView{
		Columns:  []models.Column{},
		Features: []models.KanbanCard{},
	}
	if len(records) == 0 {
		return view
	}

	roles := k.inferrer.Infer(records)
	view.Columns = append(view.Columns, fields.DeriveColumns(records, roles)...)

	known := make(map[string]bool, len(view.Columns))
	for _, c := range view.Columns {
		known[c.Name] = true
	}

	for i, rec := range records {
		bucket := fields.String(rec, roles.Category)
		if bucket == "" {
			if len(view.Columns) > 0 {
				bucket = view.Columns[0].Name
			} else {
				bucket = defaultColumnName
			}
		}
		if !known[bucket] {
			known[bucket] = true
			view.Columns = append(view.Columns, models.Column{
				ID:    bucket,
				Name:  bucket,
				Color: fields.ColorFor(bucket),
			})
		}

		start, end := k.cardDates(rec, roles)
		card := models.KanbanCard{
			ID:          fields.RecordID(rec, roles, i),
			Name:        k.cardName(rec, roles, i),
			Description: cardDescription(rec, roles),
			Column:      bucket,
			StartAt:     start,
			EndAt:       end,
		}
		if owner := fields.ByPriority(rec, fields.OwnerKeys...); owner != "" {
			card.Owner = &models.CardOwner{ID: owner, Name: owner}
		}
		view.Features = append(view.Features, card)
	}

	sort.SliceStable(view.Features, func(a, b int) bool {
		return view.Features[a].Column < view.Features[b].Column
	})

	k.logger.Debug("kanban projected", "columns", len(view.Columns), "features", len(view.Features))
	return view
}

func (k *Kanban) cardName(rec models.Record, roles fields.Roles, index int) string {
	if s := fields.ByPriority(rec, fields.TitleKeys...); s != "" {
		return s
	}
	if s := fields.String(rec, roles.ID); s != "" {
		return s
	}
	return fields.RecordID(rec, roles, index)
}

func cardDescription(rec models.Record, roles fields.Roles) string {
	if s := fields.String(rec, roles.Description); s != "" {
		return s
	}
	return fields.ByPriority(rec, fields.DescriptionKeys...)
}

// cardDates resolves the card's time span. Missing or unparseable starts
// default to now; a missing end collapses onto the start.
func (k *Kanban) cardDates(rec models.Record, roles fields.Roles) (time.Time, time.Time) {
	start, ok := ParseDate(fields.String(rec, roles.Start))
	if !ok {
		start, ok = ParseDate(fields.ByPriority(rec, fields.StartDateKeys...))
	}
	if !ok {
		start = k.now()
	}

	end, ok := ParseDate(fields.String(rec, roles.End))
	if !ok {
		end, ok = ParseDate(fields.ByPriority(rec, fields.EndDateKeys...))
	}
	if !ok || end.Before(start) {
		end = start
	}
	return start, end
}
