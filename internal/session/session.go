// Package session holds the canonical canvas state for one conversation: the
// record batch, the user's selection, and the envelope metadata. All writes
// go through the session, and every accessor returns copies, so concurrent
// readers never observe a half-applied mutation.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ajitpratap0/canvas-engine/internal/models"
)

// Session is the single-writer state container. Readers take the read lock
// and get deep copies; writers serialize on the write lock and notify
// subscribers after each committed change.
type Session struct {
	mu        sync.RWMutex
	batch     models.Batch
	selection []string
	loadedAt  time.Time
	revision  uint64

	subMu sync.Mutex
	subs  []chan struct{}

	logger *slog.Logger
}

// New returns an empty session.
func New(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{logger: logger}
}

// LoadJSON replaces the session state with a parsed record batch. The
// envelope shape is remembered so ExportJSON reproduces it. The selection is
// reset; a new batch invalidates any ids the old selection held.
func (s *Session) LoadJSON(data []byte) error {
	batch, err := models.ParseBatch(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.batch = *batch
	s.selection = nil
	s.loadedAt = time.Now()
	s.revision++
	s.mu.Unlock()

	s.logger.Info("batch loaded", "records", len(batch.Records))
	s.notify()
	return nil
}

// Reset clears the session back to its empty state, for document switches.
func (s *Session) Reset() {
	s.mu.Lock()
	s.batch = models.Batch{}
	s.selection = nil
	s.loadedAt = time.Time{}
	s.revision++
	s.mu.Unlock()

	s.logger.Info("session reset")
	s.notify()
}

// SetRecords replaces the records, keeping the current envelope and metadata.
func (s *Session) SetRecords(records []models.Record) {
	s.mu.Lock()
	s.batch.Records = cloneRecords(records)
	s.revision++
	s.mu.Unlock()
	s.notify()
}

// Replace commits a reconciled batch and selection in one write.
func (s *Session) Replace(records []models.Record, selection []string) {
	s.mu.Lock()
	s.batch.Records = cloneRecords(records)
	s.selection = append([]string(nil), selection...)
	s.revision++
	s.mu.Unlock()
	s.notify()
}

// Records returns a deep copy of the current batch.
func (s *Session) Records() []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.batch.Records)
}

// Metadata returns a copy of the envelope metadata, or nil when the batch
// carried none.
func (s *Session) Metadata() *models.CanvasMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.batch.Metadata == nil {
		return nil
	}
	meta := *s.batch.Metadata
	meta.EnabledViews = append([]models.ViewKind(nil), s.batch.Metadata.EnabledViews...)
	if len(s.batch.Metadata.Components) > 0 {
		meta.Components = make(map[models.ViewKind]models.ComponentConfig, len(s.batch.Metadata.Components))
		for k, v := range s.batch.Metadata.Components {
			meta.Components[k] = v
		}
	}
	return &meta
}

// SetMetadata replaces the envelope metadata.
func (s *Session) SetMetadata(meta *models.CanvasMetadata) {
	s.mu.Lock()
	s.batch.Metadata = meta
	s.revision++
	s.mu.Unlock()
	s.notify()
}

// Selection returns a copy of the selected record ids.
func (s *Session) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selection...)
}

// SetSelection replaces the selection.
func (s *Session) SetSelection(ids []string) {
	s.mu.Lock()
	s.selection = append([]string(nil), ids...)
	s.mu.Unlock()
	s.notify()
}

// Len is the number of records currently held.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.batch.Records)
}

// Revision is a monotonically increasing change counter.
func (s *Session) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// LoadedAt is when the current batch was loaded; zero when nothing loaded.
func (s *Session) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// ExportJSON re-encodes the current state in the envelope it arrived in.
func (s *Session) ExportJSON() ([]byte, error) {
	s.mu.RLock()
	batch := models.Batch{
		Records:  cloneRecords(s.batch.Records),
		Metadata: s.batch.Metadata,
		Shape:    s.batch.Shape,
	}
	s.mu.RUnlock()
	return models.MarshalBatch(&batch)
}

// Subscribe returns a channel that receives a signal after every committed
// change. The channel is buffered; a slow subscriber coalesces signals
// instead of blocking writers.
func (s *Session) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Session) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func cloneRecords(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	return out
}
