// Package memory provides in-memory implementations of the campsite sink
// and progress store, used for dry runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/opencampsites/ridb-collector/internal/collector"
)

// Store keeps campsite rows and checkpoints in process memory. Safe for
// concurrent use.
type Store struct {
	mu        sync.RWMutex
	campsites map[string]collector.CampsiteRecord
	progress  map[string]collector.Progress
	now       func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		campsites: make(map[string]collector.CampsiteRecord),
		progress:  make(map[string]collector.Progress),
		now:       time.Now,
	}
}

// UpsertCampsites stores records keyed by campsite ID, replacing existing
// rows.
func (s *Store) UpsertCampsites(_ context.Context, records []collector.CampsiteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.campsites[rec.RIDBCampsiteID] = rec
	}
	return nil
}

// CampsiteCount reports how many distinct campsites have been stored.
func (s *Store) CampsiteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.campsites)
}

// Campsite returns a stored record by campsite ID.
func (s *Store) Campsite(id string) (collector.CampsiteRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.campsites[id]
	return rec, ok
}

// Load returns the checkpoint for a collection type, or nil when none has
// been saved.
func (s *Store) Load(_ context.Context, collectionType string) (*collector.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.progress[collectionType]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Save stores the checkpoint, stamping LastUpdated.
func (s *Store) Save(_ context.Context, p collector.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.LastUpdated = s.now()
	s.progress[p.CollectionType] = p
	return nil
}
