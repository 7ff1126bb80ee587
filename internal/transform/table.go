package transform

import (
	"log/slog"
	"unicode/utf8"

	"github.com/ajitpratap0/canvas-engine/internal/fields"
	"github.com/ajitpratap0/canvas-engine/internal/models"
)

// defaultTextareaCellLimit caps long-form text in table cells, in runes.
const defaultTextareaCellLimit = 50

// Table projects a record batch into columns and rows. The column set is the
// union of field keys across the whole batch, so records with divergent
// shapes still render as one grid.
type Table struct {
	logger   *slog.Logger
	inferrer fields.Inferrer
	limit    int
}

// NewTable returns a table transformer. limit caps textarea cells in runes;
// values <= 0 fall back to the default.
func NewTable(logger *slog.Logger, inferrer fields.Inferrer, limit int) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	if inferrer == nil {
		inferrer = fields.NewHeuristicInferrer(logger)
	}
	if limit <= 0 {
		limit = defaultTextareaCellLimit
	}
	return &Table{logger: logger, inferrer: inferrer, limit: limit}
}

// Transform builds the table view. An empty batch yields an empty view, not
// an error.
func (t *Table) Transform(records []models.Record) models.TableView {
	view := models.TableView{
		Columns: []models.TableColumn{},
		Rows:    []models.TableRow{},
	}
	if len(records) == 0 {
		return view
	}

	roles := t.inferrer.Infer(records)

	seen := make(map[string]int)
	for _, rec := range records {
		for _, k := range rec.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			f, _ := rec.Field(k)
			label := f.Label
			if label == "" {
				label = k
			}
			seen[k] = len(view.Columns)
			view.Columns = append(view.Columns, models.TableColumn{
				APIName: k,
				Label:   label,
				Type:    f.Type,
			})
		}
	}

	for i, rec := range records {
		row := models.TableRow{
			ID:    fields.RecordID(rec, roles, i),
			Cells: make(map[string]string, len(view.Columns)),
		}
		for _, col := range view.Columns {
			f, ok := rec.Field(col.APIName)
			if !ok {
				row.Cells[col.APIName] = ""
				continue
			}
			row.Cells[col.APIName] = t.formatCell(f)
		}
		view.Rows = append(view.Rows, row)
	}

	t.logger.Debug("table projected", "columns", len(view.Columns), "rows", len(view.Rows))
	return view
}

// formatCell renders a field value for grid display: dates in the canvas
// date format, long-form text truncated, empty values as a dash.
func (t *Table) formatCell(f *models.Field) string {
	s := f.ValueString()
	if s == "" {
		return "-"
	}
	switch f.Type {
	case models.FieldTypeDate:
		if d, ok := ParseDate(s); ok {
			return FormatDate(d)
		}
	case models.FieldTypeTextarea:
		if utf8.RuneCountInString(s) > t.limit {
			runes := []rune(s)
			return string(runes[:t.limit]) + "..."
		}
	}
	return s
}
