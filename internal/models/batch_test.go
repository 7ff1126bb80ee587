package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatch_BareArray(t *testing.T) {
	b, err := ParseBatch([]byte(`[` + mapShapeRecord + `]`))
	require.NoError(t, err)
	assert.Equal(t, BatchArray, b.Shape)
	assert.Len(t, b.Records, 1)
	assert.Nil(t, b.Metadata)
}

func TestParseBatch_EntityRecordsEnvelope(t *testing.T) {
	raw := `{"entityRecords":[` + mapShapeRecord + `],"metadata":{"title":"Sprint board","enabledViews":["table","kanban"]}}`
	b, err := ParseBatch([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, BatchEntityRecords, b.Shape)
	assert.Len(t, b.Records, 1)
	require.NotNil(t, b.Metadata)
	assert.Equal(t, "Sprint board", b.Metadata.Title)
	assert.True(t, b.Metadata.ViewEnabled(ViewKanban))
	assert.False(t, b.Metadata.ViewEnabled(ViewGantt))
}

func TestParseBatch_DataEnvelope(t *testing.T) {
	b, err := ParseBatch([]byte(`{"data":[` + mapShapeRecord + `]}`))
	require.NoError(t, err)
	assert.Equal(t, BatchData, b.Shape)
	assert.Len(t, b.Records, 1)
}

func TestParseBatch_NestedDataEnvelope(t *testing.T) {
	raw := `{"data":{"data":[` + mapShapeRecord + `],"metadata":{"title":"Nested"}}}`
	b, err := ParseBatch([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, BatchData, b.Shape)
	assert.Len(t, b.Records, 1)
	require.NotNil(t, b.Metadata)
	assert.Equal(t, "Nested", b.Metadata.Title)
}

func TestParseBatch_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "whitespace", in: "   "},
		{name: "invalid json", in: "{nope"},
		{name: "no recognized key", in: `{"something":"else"}`},
		{name: "scalar", in: `42`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBatch([]byte(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestMarshalBatch_ReproducesEnvelope(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "array", in: `[` + mapShapeRecord + `]`},
		{name: "entityRecords", in: `{"entityRecords":[` + mapShapeRecord + `]}`},
		{name: "data", in: `{"data":[` + mapShapeRecord + `]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBatch([]byte(tt.in))
			require.NoError(t, err)
			out, err := MarshalBatch(b)
			require.NoError(t, err)
			assert.Equal(t, tt.in, string(out))
		})
	}
}

func TestViewEnabled_NoMetadata(t *testing.T) {
	var meta *CanvasMetadata
	for _, v := range AllViews {
		assert.True(t, meta.ViewEnabled(v))
	}
}
