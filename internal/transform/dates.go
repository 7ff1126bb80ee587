// Package transform projects a normalized record batch into the canvas view
// models: table, kanban, and gantt. All three share one role inference pass
// so the views never disagree about field semantics.
package transform

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing a date-ish field value.
// Producers emit everything from bare dates to full RFC 3339 timestamps.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses a field value as a date; ok is false when no layout fits.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a timestamp the way canvas cells display dates.
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
