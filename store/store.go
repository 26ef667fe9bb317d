// Package store holds uploaded datasets in memory for the lifetime of the
// process. Datasets are immutable once loaded; every aggregation is a pure
// function of (dataset, criteria) recomputed on demand.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parvayadav-star/atcsv/metrics"
	"github.com/parvayadav-star/atcsv/models"
)

// Dataset is one uploaded call log. Records must not be mutated after Put.
type Dataset struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Hash     string    `json:"hash"`
	Count    int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`

	Records []models.CallRecord `json:"-"`
}

// MemoryStore maps dataset IDs to immutable record sets. Uploads are
// memoized by content hash so re-uploading the same bytes does not re-parse.
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
	byHash   map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		datasets: make(map[string]*Dataset),
		byHash:   make(map[string]string),
	}
}

// Hash returns the content hash used for upload memoization.
func Hash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the dataset previously loaded from bytes with this hash.
func (s *MemoryStore) Lookup(hash string) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hash]
	if !ok {
		return nil, false
	}
	ds, ok := s.datasets[id]
	return ds, ok
}

// Put stores a parsed dataset under a fresh ID. If the hash is already
// loaded, the existing dataset is returned instead and the second return is
// true.
func (s *MemoryStore) Put(name, hash string, records []models.CallRecord) (*Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byHash[hash]; ok {
		if ds, ok := s.datasets[id]; ok {
			metrics.UploadsMemoized.Inc()
			return ds, true
		}
	}

	ds := &Dataset{
		ID:       uuid.NewString(),
		Name:     name,
		Hash:     hash,
		Count:    len(records),
		LoadedAt: time.Now(),
		Records:  records,
	}
	s.datasets[ds.ID] = ds
	s.byHash[hash] = ds.ID
	s.updateGauges()
	return ds, false
}

// Get returns a dataset by ID.
func (s *MemoryStore) Get(id string) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[id]
	return ds, ok
}

// List returns all datasets ordered by load time, newest last.
func (s *MemoryStore) List() []*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		out = append(out, ds)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LoadedAt.Equal(out[j].LoadedAt) {
			return out[i].LoadedAt.Before(out[j].LoadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Delete removes a dataset and its memoization entry.
func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasets[id]
	if !ok {
		return false
	}
	delete(s.datasets, id)
	delete(s.byHash, ds.Hash)
	s.updateGauges()
	return true
}

// updateGauges must be called with the write lock held.
func (s *MemoryStore) updateGauges() {
	total := 0
	for _, ds := range s.datasets {
		total += ds.Count
	}
	metrics.DatasetsLoaded.Set(float64(len(s.datasets)))
	metrics.RecordsLoaded.Set(float64(total))
}
