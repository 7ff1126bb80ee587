package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mapShapeRecord = `{"field1":{"apiName":"field1","label":"ID","value":"R1","type":"text"},"field3":{"apiName":"field3","label":"Status","value":"Open","type":"dropdown","allowedValues":["Open","Closed"]},"field4":{"apiName":"field4","label":"Due","value":"2026-09-01","type":"date"},"field2":{"apiName":"field2","label":"Notes","value":"first item","type":"textarea"}}`

const listShapeRecord = `{"recordId":"R7","fields":[{"apiName":"title","label":"Title","value":"Ship it","type":"text"},{"apiName":"status","label":"Status","value":"Open","type":"dropdown","allowedValues":["Open","Closed"]}]}`

func TestRecord_UnmarshalMapShape(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(mapShapeRecord), &rec))

	assert.Equal(t, []string{"field1", "field3", "field4", "field2"}, rec.Keys())
	assert.Empty(t, rec.RecordID())

	f, ok := rec.Field("field3")
	require.True(t, ok)
	assert.Equal(t, "Status", f.Label)
	assert.Equal(t, FieldTypeDropdown, f.Type)
	assert.Equal(t, []string{"Open", "Closed"}, f.AllowedValues)
	assert.Equal(t, "Open", f.ValueString())
}

func TestRecord_UnmarshalListShape(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(listShapeRecord), &rec))

	assert.Equal(t, "R7", rec.RecordID())
	assert.Equal(t, []string{"title", "status"}, rec.Keys())

	f, ok := rec.Field("status")
	require.True(t, ok)
	assert.Equal(t, []string{"Open", "Closed"}, f.AllowedValues)
}

func TestRecord_RoundTripMapShape(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(mapShapeRecord), &rec))

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, mapShapeRecord, string(out), "untouched record must re-emit its original bytes")
}

func TestRecord_RoundTripListShape(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(listShapeRecord), &rec))

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, listShapeRecord, string(out))
}

func TestRecord_EditPreservesOtherFields(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(mapShapeRecord), &rec))

	require.True(t, rec.SetFieldValue("field3", "Closed"))

	out, err := json.Marshal(rec)
	require.NoError(t, err)

	// Untouched fields keep their exact original bytes.
	assert.Contains(t, string(out), `"field1":{"apiName":"field1","label":"ID","value":"R1","type":"text"}`)
	assert.Contains(t, string(out), `"field4":{"apiName":"field4","label":"Due","value":"2026-09-01","type":"date"}`)
	assert.Contains(t, string(out), `"field2":{"apiName":"field2","label":"Notes","value":"first item","type":"textarea"}`)

	var back Record
	require.NoError(t, json.Unmarshal(out, &back))
	f, ok := back.Field("field3")
	require.True(t, ok)
	assert.Equal(t, "Closed", f.ValueString())
	assert.Equal(t, []string{"Open", "Closed"}, f.AllowedValues, "edit must not drop allowedValues")
}

func TestRecord_SetFieldValueUnknownKey(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(mapShapeRecord), &rec))
	assert.False(t, rec.SetFieldValue("nope", "x"))
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(mapShapeRecord), &rec))

	clone := rec.Clone()
	require.True(t, clone.SetFieldValue("field1", "R2"))

	orig, ok := rec.Field("field1")
	require.True(t, ok)
	assert.Equal(t, "R1", orig.ValueString())

	edited, ok := clone.Field("field1")
	require.True(t, ok)
	assert.Equal(t, "R2", edited.ValueString())
}

func TestField_TypeAsObject(t *testing.T) {
	raw := `{"apiName":"status","label":"Status","value":"Open","type":{"name":"dropdown","allowedValues":["Open","Closed"]}}`

	var f Field
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	assert.Equal(t, FieldTypeDropdown, f.Type)
	assert.Equal(t, []string{"Open", "Closed"}, f.AllowedValues)
}

func TestField_TypeCaseNormalization(t *testing.T) {
	raw := `{"apiName":"notes","label":"Notes","value":"x","type":"textArea"}`

	var f Field
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	assert.Equal(t, FieldTypeTextarea, f.Type)
}

func TestField_ScalarValue(t *testing.T) {
	var f Field
	require.NoError(t, json.Unmarshal([]byte(`"just a string"`), &f))
	assert.Equal(t, "just a string", f.ValueString())

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `"just a string"`, string(out))
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "abc", want: "abc"},
		{name: "float", in: float64(42), want: "42"},
		{name: "fraction", in: 1.5, want: "1.5"},
		{name: "bool", in: true, want: "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}

func TestNormalizeFieldType(t *testing.T) {
	assert.Equal(t, FieldTypeTextarea, NormalizeFieldType(" textArea "))
	assert.Equal(t, FieldTypeDropdown, NormalizeFieldType("DROPDOWN"))
	assert.True(t, FieldTypeDate.IsValid())
	assert.False(t, FieldType("blob").IsValid())
}
