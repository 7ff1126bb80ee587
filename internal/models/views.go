package models

import "time"

// Column is one lane of a kanban board or one bucket of any grouped
// projection, derived from a field's allowedValues.
type Column struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TableColumn describes one column of the table projection. The union of
// field apiNames across the batch becomes the column set, so sparse records
// still line up.
type TableColumn struct {
	APIName string    `json:"apiName"`
	Label   string    `json:"label"`
	Type    FieldType `json:"type"`
}

// TableRow is one record rendered for the table projection. Cells is keyed
// by column apiName; a record missing a column gets an empty cell.
type TableRow struct {
	ID    string            `json:"id"`
	Cells map[string]string `json:"cells"`
}

// TableView is the table projection of a record batch.
type TableView struct {
	Columns []TableColumn `json:"columns"`
	Rows    []TableRow    `json:"rows"`
}

// CardOwner is the person chip shown on kanban and gantt cards.
type CardOwner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// KanbanCard is one record rendered for the kanban projection.
type KanbanCard struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Column      string     `json:"column"`
	StartAt     time.Time  `json:"startAt"`
	EndAt       time.Time  `json:"endAt"`
	Owner       *CardOwner `json:"owner,omitempty"`
}

// KanbanView is the kanban projection: declared columns first, then ad hoc
// columns for category values outside the declared set.
type KanbanView struct {
	Columns  []Column     `json:"columns"`
	Features []KanbanCard `json:"features"`
}

// GanttRef is a deduplicated reference entry (status, owner, group, product,
// initiative, release) shared by gantt features.
type GanttRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// GanttFeature is one record rendered as a gantt bar.
type GanttFeature struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
	Status     *GanttRef `json:"status,omitempty"`
	Group      *GanttRef `json:"group,omitempty"`
	Owner      *GanttRef `json:"owner,omitempty"`
	Product    *GanttRef `json:"product,omitempty"`
	Initiative *GanttRef `json:"initiative,omitempty"`
	Release    *GanttRef `json:"release,omitempty"`
}

// GanttMarker is a dated annotation on the timeline, typically a milestone.
type GanttMarker struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
}

// GanttView is the gantt projection plus its deduplicated reference tables.
type GanttView struct {
	Groups      []GanttRef     `json:"groups"`
	Features    []GanttFeature `json:"features"`
	Markers     []GanttMarker  `json:"markers"`
	Statuses    []GanttRef     `json:"statuses"`
	Owners      []GanttRef     `json:"owners"`
	Products    []GanttRef     `json:"products"`
	Initiatives []GanttRef     `json:"initiatives"`
	Releases    []GanttRef     `json:"releases"`
}
