package generate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatedBatch = `{"entityRecords":[` +
	`{"field1":{"apiName":"field1","label":"ID","value":"T1","type":"text"},` +
	`"field3":{"apiName":"field3","label":"Status","value":"Open","type":"dropdown","allowedValues":["Open","Done"]}}` +
	`],"metadata":{"title":"Sprint Board","enabledViews":["table","kanban"]}}`

func TestNormalizeParsesCleanOutput(t *testing.T) {
	batch, err := Normalize([]byte(generatedBatch))
	require.NoError(t, err)
	require.Len(t, batch.Records, 1)
	require.NotNil(t, batch.Metadata)
	assert.Equal(t, "Sprint Board", batch.Metadata.Title)
}

func TestNormalizeStripsFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain fence", "```\n" + generatedBatch + "\n```"},
		{"json language tag", "```json\n" + generatedBatch + "\n```"},
		{"fence with surrounding whitespace", "\n  ```json\n" + generatedBatch + "\n```  \n"},
		{"tag on same line as payload", "```" + generatedBatch + "```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := Normalize([]byte(tt.raw))
			require.NoError(t, err)
			assert.Len(t, batch.Records, 1)
		})
	}
}

func TestNormalizeSynthesizesRecordID(t *testing.T) {
	// No text field, no wire id: the record is unaddressable until an id is
	// synthesized.
	raw := `[{"fieldA":{"apiName":"fieldA","label":"Status","value":"Open","type":"dropdown","allowedValues":["Open"]}}]`

	batch, err := Normalize([]byte(raw))
	require.NoError(t, err)
	require.Len(t, batch.Records, 1)

	rec := batch.Records[0]
	f, ok := rec.Field("recordId")
	require.True(t, ok, "expected a synthesized recordId field")
	id, parseErr := uuid.Parse(f.ValueString())
	require.NoError(t, parseErr)
	assert.NotEqual(t, uuid.Nil, id)

	// Original fields survive the rebuild.
	_, ok = rec.Field("fieldA")
	assert.True(t, ok)
}

func TestNormalizeKeepsExistingIDs(t *testing.T) {
	batch, err := Normalize([]byte(generatedBatch))
	require.NoError(t, err)
	require.Len(t, batch.Records, 1)

	_, ok := batch.Records[0].Field("recordId")
	assert.False(t, ok, "records with a usable id should not be rewritten")
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose", "Here is your data!"},
		{"wrong envelope", `{"wrong":"shape"}`},
		{"fenced garbage", "```json\nnot json\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}
