// Package voting orchestrates a vote attempt: budget gate first, ledger
// write second, bookkeeping last. The gate runs before the write so an
// attempt that will be refused never wastes a ledger transaction.
package voting

import (
	"context"

	"github.com/vocapoll/vocax/pkg/eligibility"
	"github.com/vocapoll/vocax/pkg/ledger"
	"go.uber.org/zap"
)

// Recorder receives a write-through notification once a vote has landed, so
// the status index converges without waiting for the platform's indexer.
type Recorder interface {
	MarkVoted(ctx context.Context, participant, pollID string) error
}

// Caster casts votes for participants within their daily budget.
type Caster struct {
	Limiter *eligibility.Limiter
	Ledger  ledger.Client
	Logger  *zap.Logger

	// Index is optional; a nil index skips write-through.
	Index Recorder
}

// NewCaster wires a caster.
func NewCaster(limiter *eligibility.Limiter, cli ledger.Client, logger *zap.Logger) *Caster {
	return &Caster{Limiter: limiter, Ledger: cli, Logger: logger}
}

// Cast submits one vote. Returns the updated budget on success. A budget
// refusal or a ledger policy refusal (duplicate vote, closed poll, voter cap)
// comes back as a policy error and is never retried here; a transport
// failure on the write is surfaced for an explicit user retry, because the
// vote may or may not have landed.
func (c *Caster) Cast(ctx context.Context, participant, pollID string, option uint32, day eligibility.Day) (*eligibility.Budget, error) {
	dec, err := c.Limiter.CanVote(ctx, participant, day)
	if err != nil {
		return nil, err
	}
	if !dec.Allowed {
		return nil, ledger.NewPolicyError(ledger.CodeDailyLimitExceeded,
			"%s reached the %s tier limit of %d votes for %s", participant, dec.Tier, dec.Limit, day)
	}

	if err := c.Ledger.CastVote(ctx, participant, pollID, option); err != nil {
		return nil, err
	}

	if c.Index != nil {
		// Best effort: the platform's indexer records the vote anyway, this
		// just shortens the staleness window.
		if err := c.Index.MarkVoted(ctx, participant, pollID); err != nil {
			c.Logger.Warn("index write-through failed",
				zap.String("participant", participant),
				zap.String("poll", pollID),
				zap.Error(err))
		}
	}

	budget, err := c.Limiter.RecordVote(ctx, participant, day)
	if err != nil {
		// The vote landed; budget bookkeeping is off-chain and best-effort
		// at this point. Surface the error but do not pretend the vote
		// failed.
		c.Logger.Error("vote landed but budget bookkeeping failed",
			zap.String("participant", participant),
			zap.String("poll", pollID),
			zap.Error(err))
		return nil, err
	}
	return budget, nil
}
