package models

// ViewKind names one of the canvas projections.
type ViewKind string

const (
	ViewTable  ViewKind = "table"
	ViewKanban ViewKind = "kanban"
	ViewGantt  ViewKind = "gantt"
)

// AllViews lists every projection the engine can produce.
var AllViews = []ViewKind{ViewTable, ViewKanban, ViewGantt}

// IsValid reports whether the view kind is recognized.
func (v ViewKind) IsValid() bool {
	switch v {
	case ViewTable, ViewKanban, ViewGantt:
		return true
	}
	return false
}

// CanvasMetadata is the optional envelope metadata carried next to a record
// batch: the title shown above the canvas, which projections the producer
// enabled for it, and per-view component configuration.
type CanvasMetadata struct {
	Title        string                       `json:"title,omitempty"`
	Description  string                       `json:"description,omitempty"`
	EnabledViews []ViewKind                   `json:"enabledViews,omitempty"`
	DefaultView  ViewKind                     `json:"defaultView,omitempty"`
	Components   map[ViewKind]ComponentConfig `json:"components,omitempty"`
}

// ComponentConfig pins the fields a view is driven by. A set field overrides
// role inference for that batch; unset fields fall back to heuristics.
type ComponentConfig struct {
	ColumnField    string `json:"columnField,omitempty"`
	StartDateField string `json:"startDateField,omitempty"`
	EndDateField   string `json:"endDateField,omitempty"`
	GroupByField   string `json:"groupByField,omitempty"`
}

// Component returns the configuration for a view, or a zero config when the
// metadata carries none.
func (m *CanvasMetadata) Component(v ViewKind) ComponentConfig {
	if m == nil {
		return ComponentConfig{}
	}
	return m.Components[v]
}

// ViewEnabled reports whether a projection is enabled. Absent metadata, or
// metadata with no view list, enables everything.
func (m *CanvasMetadata) ViewEnabled(v ViewKind) bool {
	if m == nil || len(m.EnabledViews) == 0 {
		return true
	}
	for _, ev := range m.EnabledViews {
		if ev == v {
			return true
		}
	}
	return false
}
