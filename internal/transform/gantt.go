package transform

import (
	"log/slog"
	"sort"
	"time"

	"github.com/ajitpratap0/canvas-engine/internal/fields"
	"github.com/ajitpratap0/canvas-engine/internal/models"
)

// Probe lists for the gantt reference dimensions. Each resolves against the
// record with ByPriority semantics.
var (
	groupKeys      = []string{"group", "team", "workstream"}
	productKeys    = []string{"product", "productName"}
	initiativeKeys = []string{"initiative", "epic"}
	releaseKeys    = []string{"release", "version"}
	milestoneKeys  = []string{"milestone", "milestoneDate"}
)

// Gantt projects a record batch into timeline features, their deduplicated
// reference tables, and milestone markers.
type Gantt struct {
	logger   *slog.Logger
	inferrer fields.Inferrer
	now      func() time.Time
}

// NewGantt returns a gantt transformer. now substitutes missing start dates;
// nil means time.Now.
func NewGantt(logger *slog.Logger, inferrer fields.Inferrer, now func() time.Time) *Gantt {
	if logger == nil {
		logger = slog.Default()
	}
	if inferrer == nil {
		inferrer = fields.NewHeuristicInferrer(logger)
	}
	if now == nil {
		now = time.Now
	}
	return &Gantt{logger: logger, inferrer: inferrer, now: now}
}

// refTable deduplicates reference entries by display name, preserving the
// first-seen entry for each name.
type refTable struct {
	byName map[string]*models.GanttRef
	order  []string
}

func newRefTable() *refTable {
	return &refTable{byName: make(map[string]*models.GanttRef)}
}

func (t *refTable) add(name, color string) *models.GanttRef {
	if name == "" {
		return nil
	}
	if ref, ok := t.byName[name]; ok {
		return ref
	}
	ref := &models.GanttRef{ID: name, Name: name, Color: color}
	t.byName[name] = ref
	t.order = append(t.order, name)
	return ref
}

func (t *refTable) list() []models.GanttRef {
	out := make([]models.GanttRef, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.byName[name])
	}
	return out
}

func (t *refTable) sorted() []models.GanttRef {
	out := t.list()
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// Transform builds the gantt view. An empty batch yields empty slices, not
// an error.
func (g *Gantt) Transform(records []models.Record) models.GanttView {
	view := models.GanttView{
		Groups:      []models.GanttRef{},
		Features:    []models.GanttFeature{},
		Markers:     []models.GanttMarker{},
		Statuses:    []models.GanttRef{},
		Owners:      []models.GanttRef{},
		Products:    []models.GanttRef{},
		Initiatives: []models.GanttRef{},
		Releases:    []models.GanttRef{},
	}
	if len(records) == 0 {
		return view
	}

	roles := g.inferrer.Infer(records)
	columns := fields.DeriveColumns(records, roles)
	columnColor := make(map[string]string, len(columns))
	for _, c := range columns {
		columnColor[c.Name] = c.Color
	}

	statuses := newRefTable()
	owners := newRefTable()
	groups := newRefTable()
	products := newRefTable()
	initiatives := newRefTable()
	releases := newRefTable()

	for i, rec := range records {
		id := fields.RecordID(rec, roles, i)
		name := g.featureName(rec, roles, i)
		start, end := g.featureDates(rec, roles)

		feature := models.GanttFeature{
			ID:      id,
			Name:    name,
			StartAt: start,
			EndAt:   end,
		}
		if status := fields.String(rec, roles.Category); status != "" {
			color, ok := columnColor[status]
			if !ok {
				color = fields.ColorFor(status)
			}
			feature.Status = statuses.add(status, color)
		}
		feature.Owner = owners.add(fields.ByPriority(rec, fields.OwnerKeys...), "")
		feature.Group = groups.add(g.featureGroup(rec, roles), "")
		feature.Product = products.add(fields.ByPriority(rec, productKeys...), "")
		feature.Initiative = initiatives.add(fields.ByPriority(rec, initiativeKeys...), "")
		feature.Release = releases.add(fields.ByPriority(rec, releaseKeys...), "")
		view.Features = append(view.Features, feature)

		if date, ok := ParseDate(fields.ByPriority(rec, milestoneKeys...)); ok {
			view.Markers = append(view.Markers, models.GanttMarker{
				ID:    id + "-milestone",
				Date:  date,
				Label: name,
			})
		}
	}

	view.Groups = groups.sorted()
	view.Statuses = statuses.list()
	view.Owners = owners.list()
	view.Products = products.list()
	view.Initiatives = initiatives.list()
	view.Releases = releases.list()

	g.logger.Debug("gantt projected",
		"features", len(view.Features),
		"groups", len(view.Groups),
		"markers", len(view.Markers),
	)
	return view
}

// featureGroup resolves the bar's group: the pinned group field when the
// batch metadata names one, else the group key probes.
func (g *Gantt) featureGroup(rec models.Record, roles fields.Roles) string {
	if roles.Group != "" {
		return fields.String(rec, roles.Group)
	}
	return fields.ByPriority(rec, groupKeys...)
}

func (g *Gantt) featureName(rec models.Record, roles fields.Roles, index int) string {
	if s := fields.ByPriority(rec, fields.TitleKeys...); s != "" {
		return s
	}
	if s := fields.String(rec, roles.ID); s != "" {
		return s
	}
	return fields.RecordID(rec, roles, index)
}

// featureDates resolves the bar's span. A record with only one usable date
// renders as a point in time, start equal to end.
func (g *Gantt) featureDates(rec models.Record, roles fields.Roles) (time.Time, time.Time) {
	start, ok := ParseDate(fields.String(rec, roles.Start))
	if !ok {
		start, ok = ParseDate(fields.ByPriority(rec, fields.StartDateKeys...))
	}
	if !ok {
		start = g.now()
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
