// Package distribution governs a reward pool's lifecycle and decides which
// operations are legal in each state. It never trusts cached poll state: every
// transition decision re-fetches the poll from the ledger first.
package distribution

import (
	"github.com/vocapoll/vocax/pkg/ledger"
)

// State is the interpreted lifecycle state of a reward pool. CLOSED carries
// the distribution mode chosen at close as part of its variant, so "change
// mode after close" is inexpressible here rather than merely disallowed.
type State interface {
	isState()
}

// Active is a pool still accepting votes. No distribution mode exists yet.
type Active struct{}

// PushPending is a pool closed in MANUAL_PUSH mode, awaiting the creator's
// single distribute action.
type PushPending struct {
	Distributed bool
}

// Claiming is a pool closed in MANUAL_PULL mode; claiming opened at close.
type Claiming struct{}

func (Active) isState()      {}
func (PushPending) isState() {}
func (Claiming) isState()    {}

// StateOf interprets a freshly fetched ledger poll into a State. A record
// whose status and mode disagree (for example CLOSED with mode UNSET) is a
// corrupt read and comes back as a wrong-status policy error so callers
// resynchronize instead of acting on it.
func StateOf(p *ledger.Poll) (State, error) {
	switch p.Status {
	case ledger.StatusActive:
		return Active{}, nil
	case ledger.StatusClaiming:
		if p.Mode != ledger.ModeManualPull {
			return nil, ledger.NewPolicyError(ledger.CodeWrongStatus, "poll %s claiming with mode %s", p.ID, p.Mode)
		}
		return Claiming{}, nil
	case ledger.StatusClosed:
		if p.Mode != ledger.ModeManualPush {
			return nil, ledger.NewPolicyError(ledger.CodeWrongStatus, "poll %s closed with mode %s", p.ID, p.Mode)
		}
		return PushPending{Distributed: p.RewardsDistributed}, nil
	default:
		return nil, ledger.NewPolicyError(ledger.CodeWrongStatus, "poll %s has unknown status %q", p.ID, p.Status)
	}
}

// splitBasis returns the net pool amount equal-split shares divide. Prefers
// the close-time snapshot; a pool read before any claim drained it still has
// the full pool in RewardPool.
func splitBasis(p *ledger.Poll) uint64 {
	if p.RewardPoolAtClose > 0 {
		return p.RewardPoolAtClose
	}
	return p.RewardPool
}
