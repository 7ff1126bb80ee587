package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveColumns_DeclaredOrderAndColors(t *testing.T) {
	records := parseRecords(t, typedBatch)
	inf := NewHeuristicInferrer(testLogger())
	roles := inf.Infer(records)

	cols := DeriveColumns(records, roles)
	require.Len(t, cols, 2)
	assert.Equal(t, "Open", cols[0].Name)
	assert.Equal(t, "Closed", cols[1].Name)
	assert.Equal(t, Palette[0], cols[0].Color)
	assert.Equal(t, Palette[1], cols[1].Color)
}

func TestDeriveColumns_NoDeclaredValues(t *testing.T) {
	raw := `[{"name":{"apiName":"name","value":"A","type":"text"}}]`
	records := parseRecords(t, raw)
	inf := NewHeuristicInferrer(testLogger())
	roles := inf.Infer(records)

	assert.Nil(t, DeriveColumns(records, roles))
}

func TestDeriveColumns_FirstRecordWithValuesWins(t *testing.T) {
	raw := `[{"stage":{"apiName":"stage","value":"New","type":"dropdown"}},{"stage":{"apiName":"stage","value":"Done","type":"dropdown","allowedValues":["New","Done"]}}]`
	records := parseRecords(t, raw)
	inf := NewHeuristicInferrer(testLogger())
	roles := inf.Infer(records)

	cols := DeriveColumns(records, roles)
	require.Len(t, cols, 2)
	assert.Equal(t, "New", cols[0].Name)
}

func TestColorFor_Deterministic(t *testing.T) {
	first := ColorFor("Blocked")
	second := ColorFor("Blocked")
	assert.Equal(t, first, second)
	assert.Contains(t, Palette, first)
}

func TestColorAt_WrapsPalette(t *testing.T) {
	assert.Equal(t, Palette[0], ColorAt(0))
	assert.Equal(t, Palette[0], ColorAt(len(Palette)))
	assert.Equal(t, Palette[1], ColorAt(len(Palette)+1))
}
