package api

import (
	"sync"

	"github.com/google/uuid"
)

// OscillogramStore keeps computed oscillograms in memory, keyed by ID.
type OscillogramStore struct {
	mu      sync.Mutex
	results map[string]*OscillogramResponse
}

func NewOscillogramStore() *OscillogramStore {
	return &OscillogramStore{
		results: make(map[string]*OscillogramResponse),
	}
}

func (s *OscillogramStore) Save(resp *OscillogramResponse) {
	s.mu.Lock()
	s.results[resp.ID] = resp
	s.mu.Unlock()
}

func (s *OscillogramStore) Get(id string) (*OscillogramResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.results[id]
	return resp, ok
}

func (s *OscillogramStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[id]; !ok {
		return false
	}
	delete(s.results, id)
	return true
}

// List returns the stored IDs in unspecified order.
func (s *OscillogramStore) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.results))
	for id := range s.results {
		ids = append(ids, id)
	}
	return ids
}

func newOscillogramID() string {
	return "osc_" + uuid.NewString()
}
