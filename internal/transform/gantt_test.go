package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/canvas-engine/internal/fields"
)

const roadmapBatch = `[` +
	`{"field1":{"apiName":"field1","label":"ID","value":"R1","type":"text"},` +
	`"field3":{"apiName":"field3","label":"Status","value":"Open","type":"dropdown","allowedValues":["Open","Closed"]},` +
	`"startDate":{"apiName":"startDate","label":"Start","value":"2026-09-01","type":"date"},` +
	`"dueDate":{"apiName":"dueDate","label":"Due","value":"2026-10-01","type":"date"},` +
	`"group":{"apiName":"group","label":"Team","value":"Platform","type":"text"},` +
	`"owner":{"apiName":"owner","label":"Owner","value":"dana","type":"text"},` +
	`"milestone":{"apiName":"milestone","label":"Milestone","value":"2026-09-15","type":"date"}},` +
	`{"field1":{"apiName":"field1","label":"ID","value":"R2","type":"text"},` +
	`"field3":{"apiName":"field3","label":"Status","value":"Open","type":"dropdown","allowedValues":["Open","Closed"]},` +
	`"startDate":{"apiName":"startDate","label":"Start","value":"2026-09-10","type":"date"},` +
	`"dueDate":{"apiName":"dueDate","label":"Due","value":"2026-09-20","type":"date"},` +
	`"group":{"apiName":"group","label":"Team","value":"Apps","type":"text"},` +
	`"owner":{"apiName":"owner","label":"Owner","value":"dana","type":"text"}}` +
	`]`

func TestGantt_FeatureSpans(t *testing.T) {
	tr := NewGantt(testLogger(), nil, fixedNow)
	view := tr.Transform(parseRecords(t, roadmapBatch))

	require.Len(t, view.Features, 2)
	f := view.Features[0]
	assert.Equal(t, "R1", f.ID)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), f.StartAt)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), f.EndAt)
}

func TestGantt_SingleDateCollapsesSpan(t *testing.T) {
	raw := `[{"name":{"apiName":"name","value":"A","type":"text"},"when":{"apiName":"when","value":"2026-09-01","type":"date"}}]`
	tr := NewGantt(testLogger(), nil, fixedNow)
	view := tr.Transform(parseRecords(t, raw))

	require.Len(t, view.Features, 1)
	assert.Equal(t, view.Features[0].StartAt, view.Features[0].EndAt)
}

func TestGantt_ReferenceTablesDeduplicate(t *testing.T) {
	tr := NewGantt(testLogger(), nil, fixedNow)
	view := tr.Transform(parseRecords(t, roadmapBatch))

	// Both records share status "Open" and owner "dana".
	require.Len(t, view.Statuses, 1)
	assert.Equal(t, "Open", view.Statuses[0].Name)
	require.Len(t, view.Owners, 1)
	assert.Equal(t, "dana", view.Owners[0].Name)

	// Features point at the shared entries.
	assert.Same(t, view.Features[0].Status, view.Features[1].Status)
	assert.Same(t, view.Features[0].Owner, view.Features[1].Owner)
}

func TestGantt_GroupsSortedByName(t *testing.T) {
	tr := NewGantt(testLogger(), nil, fixedNow)
	view := tr.Transform(parseRecords(t, roadmapBatch))

	require.Len(t, view.Groups, 2)
	assert.Equal(t, "Apps", view.Groups[0].Name)
	assert.Equal(t, "Platform", view.Groups[1].Name)
}

func TestGantt_StatusColorMatchesDeclaredColumn(t *testing.T) {
	tr := NewGantt(testLogger(), nil, fixedNow)
	view := tr.Transform(parseRecords(t, roadmapBatch))

	require.NotNil(t, view.Features[0].Status)
	assert.Equal(t, fields.Palette[0], view.Features[0].Status.Color, "Open is the first declared value")
}

func TestGantt_MilestoneMarkers(t *testing.T) {
	tr := NewGantt(testLogger(), nil, fixedNow)
	view := tr.Transform(parseRecords(t, roadmapBatch))

	require.Len(t, view.Markers, 1)
	assert.Equal(t, "R1-milestone", view.Markers[0].ID)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), view.Markers[0].Date)
	assert.Equal(t, "R1", view.Markers[0].Label)
}

func TestGantt_EmptyInput(t *testing.T) {
	tr := NewGantt(testLogger(), nil, fixedNow)
	view := tr.Transform(nil)
	assert.Empty(t, view.Features)
	assert.Empty(t, view.Groups)
	assert.Empty(t, view.Markers)
}
