package eligibility

import "context"

// Budget is one participant's vote bookkeeping for one platform day. Created
// lazily on the first vote attempt of the day; VotesUsed only ever grows
// within a day, and the day rollover is the only reset.
type Budget struct {
	Participant   string `json:"participant"`
	Day           Day    `json:"day"`
	VotesUsed     int    `json:"votesUsed"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
}

// BudgetStore persists budgets keyed by participant and day. Get returns
// (nil, nil) when no record exists for that day.
type BudgetStore interface {
	Get(ctx context.Context, participant string, day Day) (*Budget, error)
	Put(ctx context.Context, budget *Budget) error
}
