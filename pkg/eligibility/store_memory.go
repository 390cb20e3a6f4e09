package eligibility

import (
	"context"

	"github.com/puzpuzpuz/xsync/v4"
)

// MemoryBudgetStore is an in-process BudgetStore for tests and single-node
// offline use.
type MemoryBudgetStore struct {
	m *xsync.Map[string, Budget]
}

// NewMemoryBudgetStore returns an empty in-memory store.
func NewMemoryBudgetStore() *MemoryBudgetStore {
	return &MemoryBudgetStore{m: xsync.NewMap[string, Budget]()}
}

func (s *MemoryBudgetStore) Get(_ context.Context, participant string, day Day) (*Budget, error) {
	b, ok := s.m.Load(budgetKey(participant, day))
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *MemoryBudgetStore) Put(_ context.Context, budget *Budget) error {
	s.m.Store(budgetKey(budget.Participant, budget.Day), *budget)
	return nil
}
