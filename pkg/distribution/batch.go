package distribution

import (
	"context"

	"github.com/vocapoll/vocax/pkg/ledger"
)

// ClaimOutcome is the per-poll result of a batch claim. Exactly one of
// Claimed/Skipped/Err describes what happened; a partially failed batch is
// resumable because every item is independently idempotent.
type ClaimOutcome struct {
	PollID  string `json:"pollId"`
	Amount  uint64 `json:"amount,omitempty"`
	Claimed bool   `json:"claimed"`
	Skipped bool   `json:"skipped,omitempty"`
	Err     error  `json:"-"`
}

// ClaimAll claims the participant's share from each poll in order. Items run
// sequentially with no cross-item atomicity: an already-claimed poll is
// recorded as skipped (a normal outcome, not a failure), any other error is
// recorded against its poll and the batch continues.
func (m *Machine) ClaimAll(ctx context.Context, participant string, pollIDs []string) []ClaimOutcome {
	outcomes := make([]ClaimOutcome, 0, len(pollIDs))
	for _, id := range pollIDs {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, ClaimOutcome{PollID: id, Err: err})
			continue
		}
		amount, err := m.Claim(ctx, participant, id)
		switch {
		case err == nil:
			outcomes = append(outcomes, ClaimOutcome{PollID: id, Amount: amount, Claimed: true})
		case ledger.IsPolicyCode(err, ledger.CodeAlreadyClaimed):
			outcomes = append(outcomes, ClaimOutcome{PollID: id, Skipped: true})
		default:
			outcomes = append(outcomes, ClaimOutcome{PollID: id, Err: err})
		}
	}
	return outcomes
}
