package questionnaire

import (
	"context"
	"sync"
)

// MemoryCompletionStore is an in-process CompletionStore for tests and
// single-node offline use.
type MemoryCompletionStore struct {
	mu   sync.Mutex
	sets map[string]map[string]struct{}
}

// NewMemoryCompletionStore returns an empty in-memory store.
func NewMemoryCompletionStore() *MemoryCompletionStore {
	return &MemoryCompletionStore{sets: map[string]map[string]struct{}{}}
}

func (s *MemoryCompletionStore) Register(_ context.Context, questionnaireID, participant string, cap uint64) (bool, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.sets[questionnaireID]
	if set == nil {
		set = map[string]struct{}{}
		s.sets[questionnaireID] = set
	}
	if _, ok := set[participant]; ok {
		return true, uint64(len(set)), nil
	}
	if cap > 0 && uint64(len(set)) >= cap {
		return false, uint64(len(set)), nil
	}
	set[participant] = struct{}{}
	return true, uint64(len(set)), nil
}

func (s *MemoryCompletionStore) IsRegistered(_ context.Context, questionnaireID, participant string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sets[questionnaireID][participant]
	return ok, nil
}

func (s *MemoryCompletionStore) Count(_ context.Context, questionnaireID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(len(s.sets[questionnaireID])), nil
}
