// Package engine ties the session, role inference, view transformers, and
// mutation reconciler together behind one facade. The HTTP API, the MCP
// server, and the CLI all drive the same Engine, so a card moved over MCP is
// visible in the next table fetched over HTTP.
package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ajitpratap0/canvas-engine/internal/fields"
	"github.com/ajitpratap0/canvas-engine/internal/metrics"
	"github.com/ajitpratap0/canvas-engine/internal/models"
	"github.com/ajitpratap0/canvas-engine/internal/reconcile"
	"github.com/ajitpratap0/canvas-engine/internal/session"
	"github.com/ajitpratap0/canvas-engine/internal/transform"
)

// Engine is the canvas projection engine for one session.
type Engine struct {
	logger  *slog.Logger
	session *session.Session

	inferrer    fields.Inferrer
	table       *transform.Table
	kanban      *transform.Kanban
	gantt       *transform.Gantt
	rec         *reconcile.Reconciler
	defaultView models.ViewKind
}

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	textareaLimit int
	defaultView   models.ViewKind
}

// WithTextareaLimit caps long-form text in table cells at n runes. Values
// <= 0 keep the built-in limit.
func WithTextareaLimit(n int) Option {
	return func(s *settings) { s.textareaLimit = n }
}

// WithDefaultView sets the projection used when a caller asks for a view
// without naming one. Invalid kinds are ignored.
func WithDefaultView(v models.ViewKind) Option {
	return func(s *settings) {
		if v.IsValid() {
			s.defaultView = v
		}
	}
}

// New wires an engine around the given session. now feeds date fallbacks in
// the kanban and gantt projections; nil means time.Now.
func New(logger *slog.Logger, sess *session.Session, now func() time.Time, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if sess == nil {
		sess = session.New(logger)
	}
	cfg := settings{defaultView: models.ViewTable}
	for _, opt := range opts {
		opt(&cfg)
	}
	// Component configuration in the batch metadata pins roles; heuristics
	// fill the rest.
	inferrer := fields.NewMetadataInferrer(fields.NewHeuristicInferrer(logger), sess.Metadata)
	return &Engine{
		logger:      logger,
		session:     sess,
		inferrer:    inferrer,
		table:       transform.NewTable(logger, inferrer, cfg.textareaLimit),
		kanban:      transform.NewKanban(logger, inferrer, now),
		gantt:       transform.NewGantt(logger, inferrer, now),
		rec:         reconcile.New(logger, inferrer),
		defaultView: cfg.defaultView,
	}
}

// Session exposes the underlying state container, mainly for change
// subscriptions.
func (e *Engine) Session() *session.Session { return e.session }

// LoadJSON parses a record batch and makes it the session state.
func (e *Engine) LoadJSON(data []byte) error {
	if err := e.session.LoadJSON(data); err != nil {
		metrics.Inc(metrics.ParseErrorTotal)
		return err
	}
	metrics.Inc(metrics.LoadTotal)
	return nil
}

// Reset clears the session, discarding records, selection, and metadata.
func (e *Engine) Reset() { e.session.Reset() }

// ExportJSON re-encodes the session state in its original envelope.
func (e *Engine) ExportJSON() ([]byte, error) {
	out, err := e.session.ExportJSON()
	if err == nil {
		metrics.Inc(metrics.ExportTotal)
	}
	return out, err
}

// Records returns a deep copy of the current batch.
func (e *Engine) Records() []models.Record { return e.session.Records() }

// SetRecords replaces the batch, keeping envelope and metadata.
func (e *Engine) SetRecords(records []models.Record) { e.session.SetRecords(records) }

// Selection returns the selected record ids.
func (e *Engine) Selection() []string { return e.session.Selection() }

// SetSelection replaces the selected record ids.
func (e *Engine) SetSelection(ids []string) { e.session.SetSelection(ids) }

// Roles reports which field plays which role in the current batch.
func (e *Engine) Roles() fields.Roles { return e.inferrer.Infer(e.session.Records()) }

// Table projects the current batch as a table.
func (e *Engine) Table() models.TableView {
	metrics.Inc(metrics.TransformTotal)
	return e.table.Transform(e.session.Records())
}

// Kanban projects the current batch as a kanban board.
func (e *Engine) Kanban() models.KanbanView {
	metrics.Inc(metrics.TransformTotal)
	return e.kanban.Transform(e.session.Records())
}

// Gantt projects the current batch as a gantt timeline.
func (e *Engine) Gantt() models.GanttView {
	metrics.Inc(metrics.TransformTotal)
	return e.gantt.Transform(e.session.Records())
}

// View projects the batch as the named view kind, honoring the metadata's
// enabled-view list.
func (e *Engine) View(kind models.ViewKind) (any, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown view %q", kind)
	}
	if !e.session.Metadata().ViewEnabled(kind) {
		return nil, fmt.Errorf("view %q is not enabled for this canvas", kind)
	}
	switch kind {
	case models.ViewKanban:
		return e.Kanban(), nil
	case models.ViewGantt:
		return e.Gantt(), nil
	default:
		return e.Table(), nil
	}
}

// DefaultView returns the projection used when the caller names none: the
// batch metadata's defaultView when it is valid and enabled, otherwise the
// configured default.
func (e *Engine) DefaultView() models.ViewKind {
	meta := e.session.Metadata()
	if meta != nil && meta.DefaultView.IsValid() && meta.ViewEnabled(meta.DefaultView) {
		return meta.DefaultView
	}
	return e.defaultView
}

// EnabledViews lists the projections enabled for the current batch.
func (e *Engine) EnabledViews() []models.ViewKind {
	meta := e.session.Metadata()
	out := make([]models.ViewKind, 0, len(models.AllViews))
	for _, v := range models.AllViews {
		if meta.ViewEnabled(v) {
			out = append(out, v)
		}
	}
	return out
}

// MoveCard rebuckets one record; reports whether anything changed.
func (e *Engine) MoveCard(id, newBucket string) bool {
	records, ok := e.rec.MoveCard(e.session.Records(), id, newBucket)
	return e.commit(records, e.session.Selection(), ok, "move")
}

// ApplyMoves rebuckets several records in one update, skipping unknown ids.
func (e *Engine) ApplyMoves(moves map[string]string) bool {
	records, ok := e.rec.ApplyMoves(e.session.Records(), moves)
	return e.commit(records, e.session.Selection(), ok, "move")
}

// EditCell sets one field value on one record.
func (e *Engine) EditCell(id, key string, value any) bool {
	records, ok := e.rec.EditCell(e.session.Records(), id, key, value)
	return e.commit(records, e.session.Selection(), ok, "edit")
}

// AddRecord appends a blank record shaped like the first one and returns its
// id, or "" when the batch is empty.
func (e *Engine) AddRecord() string {
	records, ok := e.rec.AddRecord(e.session.Records())
	if !e.commit(records, e.session.Selection(), ok, "add") {
		return ""
	}
	roles := e.inferrer.Infer(records)
	return fields.RecordID(records[len(records)-1], roles, len(records)-1)
}

// DeleteRecords removes the records with the given ids, pruning them from the
// selection.
func (e *Engine) DeleteRecords(ids []string) bool {
	records, selection, ok := e.rec.DeleteRecords(e.session.Records(), ids, e.session.Selection())
	return e.commit(records, selection, ok, "delete")
}

func (e *Engine) commit(records []models.Record, selection []string, applied bool, op string) bool {
	if !applied {
		metrics.Inc(metrics.ReconcileNoop)
		return false
	}
	e.session.Replace(records, selection)
	metrics.Inc(metrics.ReconcileTotal)
	e.logger.Info("batch reconciled", "op", op, "records", len(records))
	return true
}

// Search returns the table rows whose cells contain the query,
// case-insensitively. An empty query matches every row.
func (e *Engine) Search(query string) []models.TableRow {
	view := e.Table()
	if strings.TrimSpace(query) == "" {
		return view.Rows
	}
	needle := strings.ToLower(query)
	out := make([]models.TableRow, 0, len(view.Rows))
	for _, row := range view.Rows {
		if strings.Contains(strings.ToLower(row.ID), needle) {
			out = append(out, row)
			continue
		}
		for _, cell := range row.Cells {
			if strings.Contains(strings.ToLower(cell), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// Stats summarizes the session for the stats command and endpoint.
type Stats struct {
	Records      int               `json:"records"`
	Selected     int               `json:"selected"`
	Columns      int               `json:"columns"`
	Buckets      map[string]int    `json:"buckets,omitempty"`
	EnabledViews []models.ViewKind `json:"enabledViews"`
	Revision     uint64            `json:"revision"`
	LoadedAt     time.Time         `json:"loadedAt,omitzero"`
	Title        string            `json:"title,omitempty"`
}

// Stats reports counts over the current session.
func (e *Engine) Stats() Stats {
	records := e.session.Records()
	roles := e.inferrer.Infer(records)
	st := Stats{
		Records:      len(records),
		Selected:     len(e.session.Selection()),
		Columns:      len(fields.DeriveColumns(records, roles)),
		EnabledViews: e.EnabledViews(),
		Revision:     e.session.Revision(),
		LoadedAt:     e.session.LoadedAt(),
	}
	if len(records) > 0 {
		st.Buckets = make(map[string]int)
		for _, rec := range records {
			if bucket := fields.String(rec, roles.Category); bucket != "" {
				st.Buckets[bucket]++
			}
		}
	}
	if meta := e.session.Metadata(); meta != nil {
		st.Title = meta.Title
	}
	return st
}
