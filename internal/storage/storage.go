package storage

import (
	"sync"

	"github.com/lehigh-university-libraries/reconciler/internal/resolve"
)

// BatchStore holds resolution results for the serve API, keyed by batch
// ID. In-memory only: results live for the lifetime of the process.
type BatchStore struct {
	batches map[string]*resolve.Result
	mu      sync.RWMutex
}

func New() *BatchStore {
	return &BatchStore{
		batches: make(map[string]*resolve.Result),
	}
}

func (s *BatchStore) Get(batchID string) (*resolve.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, exists := s.batches[batchID]
	return result, exists
}

func (s *BatchStore) Set(batchID string, result *resolve.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[batchID] = result
}

func (s *BatchStore) GetAll() map[string]*resolve.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*resolve.Result, len(s.batches))
	for k, v := range s.batches {
		result[k] = v
	}
	return result
}

func (s *BatchStore) Delete(batchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, batchID)
}
