package mocks

import (
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/prodyhq/prody/internal/models"
)

// MockRecorder collects recorded audit entries; it notes whether each
// one arrived inside a transaction.
type MockRecorder struct {
	mu      sync.Mutex
	Entries []RecordedEntry
}

type RecordedEntry struct {
	Log  *models.ActivityLog
	InTx bool
}

func (r *MockRecorder) Record(entry *models.ActivityLog, tx *sqlx.Tx) (*models.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, RecordedEntry{Log: entry, InTx: tx != nil})
	return entry, nil
}

func (r *MockRecorder) Recorded() []RecordedEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedEntry(nil), r.Entries...)
}
