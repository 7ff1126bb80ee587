package session

import (
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const sessionBatch = `{"entityRecords":[{"field1":{"apiName":"field1","label":"ID","value":"R1","type":"text"},"field3":{"apiName":"field3","label":"Status","value":"Open","type":"dropdown","allowedValues":["Open","Closed"]}}]}`

func TestSession_LoadAndExportRoundTrip(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.LoadJSON([]byte(sessionBatch)))

	out, err := s.ExportJSON()
	require.NoError(t, err)
	assert.Equal(t, sessionBatch, string(out), "unedited state exports byte-identical")
}

func TestSession_LoadRejectsMalformedInput(t *testing.T) {
	s := New(testLogger())
	assert.Error(t, s.LoadJSON([]byte(`{"wrong":"shape"}`)))
	assert.Error(t, s.LoadJSON([]byte(`not json`)))
	assert.Zero(t, s.Len())
}

func TestSession_LoadResetsSelection(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.LoadJSON([]byte(sessionBatch)))
	s.SetSelection([]string{"R1"})
	require.NoError(t, s.LoadJSON([]byte(sessionBatch)))
	assert.Empty(t, s.Selection())
}

func TestSession_Reset(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.LoadJSON([]byte(sessionBatch)))
	s.SetSelection([]string{"R1"})

	rev := s.Revision()
	s.Reset()

	assert.Zero(t, s.Len())
	assert.Empty(t, s.Selection())
	assert.Nil(t, s.Metadata())
	assert.True(t, s.LoadedAt().IsZero())
	assert.Greater(t, s.Revision(), rev)
}

func TestSession_RecordsReturnsCopies(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.LoadJSON([]byte(sessionBatch)))

	records := s.Records()
	require.Len(t, records, 1)
	require.True(t, records[0].SetFieldValue("field3", "Closed"))

	// The session's own copy is unaffected.
	fresh := s.Records()
	f, ok := fresh[0].Field("field3")
	require.True(t, ok)
	assert.Equal(t, "Open", f.ValueString())
}

func TestSession_ReplaceCommitsBoth(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.LoadJSON([]byte(sessionBatch)))

	records := s.Records()
	require.True(t, records[0].SetFieldValue("field3", "Closed"))
	s.Replace(records, []string{"R1"})

	f, _ := s.Records()[0].Field("field3")
	assert.Equal(t, "Closed", f.ValueString())
	assert.Equal(t, []string{"R1"}, s.Selection())
}

func TestSession_RevisionIncrements(t *testing.T) {
	s := New(testLogger())
	require.Zero(t, s.Revision())

	require.NoError(t, s.LoadJSON([]byte(sessionBatch)))
	first := s.Revision()
	assert.NotZero(t, first)

	s.SetRecords(s.Records())
	assert.Greater(t, s.Revision(), first)
}

func TestSession_SubscribeNotifiesOnChange(t *testing.T) {
	s := New(testLogger())
	ch := s.Subscribe()

	require.NoError(t, s.LoadJSON([]byte(sessionBatch)))

	select {
	case <-ch:
	default:
		t.Fatal("expected a change notification after load")
	}

	// Signals coalesce instead of blocking writers.
	s.SetSelection([]string{"R1"})
	s.SetSelection(nil)
	select {
	case <-ch:
	default:
		t.Fatal("expected a coalesced notification")
	}
}

func TestSession_ConcurrentReadersAndWriters(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.LoadJSON([]byte(sessionBatch)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Records()
				_ = s.Selection()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.SetSelection([]string{"R1"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, s.Len())
}

func TestSession_MetadataCopy(t *testing.T) {
	raw := `{"entityRecords":[],"metadata":{"title":"Board","enabledViews":["kanban"]}}`
	s := New(testLogger())
	require.NoError(t, s.LoadJSON([]byte(raw)))

	meta := s.Metadata()
	require.NotNil(t, meta)
	meta.Title = "mutated"

	fresh := s.Metadata()
	assert.Equal(t, "Board", fresh.Title)
}
