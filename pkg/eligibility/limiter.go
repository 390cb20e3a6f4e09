package eligibility

import (
	"context"

	"github.com/vocapoll/vocax/pkg/ledger"
	"go.uber.org/zap"
)

// BalanceReader is the single ledger read the limiter performs: the combined
// balance that derives a participant's tier. ledger.Client satisfies it.
type BalanceReader interface {
	CombinedBalance(ctx context.Context, participant string) (ledger.Balance, error)
}

// Decision is the answer to "may this participant vote right now".
type Decision struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
	Tier      Tier `json:"tier"`
	Limit     int  `json:"limit"`
}

// Limiter gates vote attempts against the participant's tier allowance for
// an explicitly supplied platform day.
type Limiter struct {
	Store    BudgetStore
	Balances BalanceReader
	Tiers    []TierConfig
	Logger   *zap.Logger
}

// NewLimiter builds a limiter with the default tier table.
func NewLimiter(store BudgetStore, balances BalanceReader, logger *zap.Logger) *Limiter {
	return &Limiter{Store: store, Balances: balances, Tiers: DefaultTiers, Logger: logger}
}

// CanVote checks the participant's remaining budget for day. The tier limit
// is derived fresh from the current balance on every call: a participant who
// staked more mid-day gets the larger allowance immediately, while VotesUsed
// is never reduced retroactively.
func (l *Limiter) CanVote(ctx context.Context, participant string, day Day) (Decision, error) {
	tc, budget, err := l.load(ctx, participant, day)
	if err != nil {
		return Decision{}, err
	}

	remaining := tc.DailyVotes - budget.VotesUsed
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   remaining > 0,
		Remaining: remaining,
		Tier:      tc.Tier,
		Limit:     tc.DailyVotes,
	}, nil
}

// RecordVote consumes one unit of the day's budget after a vote landed on
// the ledger. The first vote of a day advances the streak: continued from
// the prior day's record when that record shows at least one vote, otherwise
// restarted at 1.
func (l *Limiter) RecordVote(ctx context.Context, participant string, day Day) (*Budget, error) {
	tc, budget, err := l.load(ctx, participant, day)
	if err != nil {
		return nil, err
	}

	if budget.VotesUsed >= tc.DailyVotes {
		return nil, ledger.NewPolicyError(ledger.CodeDailyLimitExceeded,
			"%s used %d of %d daily votes (%s tier)", participant, budget.VotesUsed, tc.DailyVotes, tc.Tier)
	}

	if budget.VotesUsed == 0 {
		prior, err := l.Store.Get(ctx, participant, day.Prev())
		if err != nil {
			return nil, err
		}
		if prior != nil && prior.VotesUsed > 0 {
			budget.CurrentStreak = prior.CurrentStreak + 1
		} else {
			budget.CurrentStreak = 1
		}
		if prior != nil && prior.LongestStreak > budget.LongestStreak {
			budget.LongestStreak = prior.LongestStreak
		}
		if budget.CurrentStreak > budget.LongestStreak {
			budget.LongestStreak = budget.CurrentStreak
		}
	}

	budget.VotesUsed++
	if err := l.Store.Put(ctx, budget); err != nil {
		return nil, err
	}

	l.Logger.Debug("vote recorded",
		zap.String("participant", participant),
		zap.String("day", string(day)),
		zap.Int("votesUsed", budget.VotesUsed),
		zap.Int("streak", budget.CurrentStreak))
	return budget, nil
}

// load fetches the tier and today's budget, creating the budget lazily. The
// streak fields of a lazily created record stay zero until the first
// recorded vote of the day resolves the carry-over.
func (l *Limiter) load(ctx context.Context, participant string, day Day) (TierConfig, *Budget, error) {
	if !day.Valid() {
		return TierConfig{}, nil, ledger.NewPolicyError(ledger.CodeWrongStatus, "invalid day %q", day)
	}

	bal, err := l.Balances.CombinedBalance(ctx, participant)
	if err != nil {
		return TierConfig{}, nil, err
	}
	tc := TierFor(l.Tiers, bal.Combined())

	budget, err := l.Store.Get(ctx, participant, day)
	if err != nil {
		return TierConfig{}, nil, err
	}
	if budget == nil {
		budget = &Budget{Participant: participant, Day: day}
	}
	return tc, budget, nil
}
