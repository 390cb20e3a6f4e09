package distribution

import (
	"context"

	"github.com/vocapoll/vocax/pkg/ledger"
	"github.com/vocapoll/vocax/pkg/rewards"
	"go.uber.org/zap"
)

// Machine executes reward pool transitions against the ledger. Every
// operation re-reads the poll immediately before deciding; an illegal
// transition is rejected locally with a policy error and nothing is sent to
// the ledger, leaving state unchanged.
type Machine struct {
	Ledger ledger.Client
	Logger *zap.Logger
}

// New returns a Machine over the given ledger client.
func New(cli ledger.Client, logger *zap.Logger) *Machine {
	return &Machine{Ledger: cli, Logger: logger}
}

// Quote is the amounts a pool will pay at its current state, for display and
// for pre-claim checks.
type Quote struct {
	Status    ledger.Status `json:"status"`
	Mode      ledger.Mode   `json:"mode"`
	PerVoter  uint64        `json:"perVoter"`
	Remainder uint64        `json:"remainder"`
}

// PerVoterShare computes what one voter receives from this pool: the fixed
// per-vote reward when configured, otherwise an equal split of the close-time
// net pool over all recorded voters.
func PerVoterShare(p *ledger.Poll) uint64 {
	if p.FixedRewardPerVote > 0 {
		return p.FixedRewardPerVote
	}
	return rewards.EqualSplit(splitBasis(p), p.TotalVotes)
}

// QuoteFor returns the current payout quote for a poll.
func (m *Machine) QuoteFor(ctx context.Context, pollID string) (Quote, error) {
	p, err := m.Ledger.GetPoll(ctx, pollID)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Status:    p.Status,
		Mode:      p.Mode,
		PerVoter:  PerVoterShare(p),
		Remainder: p.RewardPool,
	}, nil
}

// Close transitions an ACTIVE pool to closed and irrevocably fixes its
// distribution mode. Pull-mode pools open for claiming immediately.
func (m *Machine) Close(ctx context.Context, creator, pollID string, mode ledger.Mode) error {
	if mode != ledger.ModeManualPull && mode != ledger.ModeManualPush {
		return ledger.NewPolicyError(ledger.CodeWrongStatus, "close requires an explicit distribution mode, got %q", mode)
	}
	p, err := m.Ledger.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if p.Creator != creator {
		return ledger.NewPolicyError(ledger.CodeNotCreator, "%s is not the creator of poll %s", creator, pollID)
	}
	if p.Status != ledger.StatusActive {
		return ledger.NewPolicyError(ledger.CodeWrongStatus, "poll %s is %s, only ACTIVE pools can close", pollID, p.Status)
	}
	if err := m.Ledger.ClosePool(ctx, creator, pollID, mode); err != nil {
		return err
	}
	m.Logger.Info("pool closed",
		zap.String("poll", pollID),
		zap.String("mode", string(mode)))
	return nil
}

// Claim pulls the caller's share from a claiming pool. The pre-flight checks
// reject obvious refusals (not a voter, already claimed, drained pool)
// without spending a ledger transaction; the ledger remains the final
// idempotency authority for concurrent duplicates.
func (m *Machine) Claim(ctx context.Context, participant, pollID string) (uint64, error) {
	p, err := m.Ledger.GetPoll(ctx, pollID)
	if err != nil {
		return 0, err
	}
	st, err := StateOf(p)
	if err != nil {
		return 0, err
	}
	if _, ok := st.(Claiming); !ok {
		return 0, ledger.NewPolicyError(ledger.CodeWrongStatus, "poll %s is not claiming", pollID)
	}
	if !p.HasVoter(participant) {
		return 0, ledger.NewPolicyError(ledger.CodeNotVoter, "%s has no recorded vote on poll %s", participant, pollID)
	}
	if p.HasClaimant(participant) {
		return 0, ledger.NewPolicyError(ledger.CodeAlreadyClaimed, "%s already claimed from poll %s", participant, pollID)
	}
	if p.RewardPool == 0 {
		return 0, ledger.NewPolicyError(ledger.CodePoolEmpty, "poll %s reward pool is empty", pollID)
	}
	amount, err := m.Ledger.Claim(ctx, participant, pollID)
	if err != nil {
		return 0, err
	}
	m.Logger.Info("claimed",
		zap.String("poll", pollID),
		zap.String("participant", participant),
		zap.Uint64("amount", amount))
	return amount, nil
}

// Distribute pays every recorded voter in one logical operation (push mode
// only, creator only, at most once per pool).
func (m *Machine) Distribute(ctx context.Context, creator, pollID string) error {
	p, err := m.Ledger.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	st, err := StateOf(p)
	if err != nil {
		return err
	}
	push, ok := st.(PushPending)
	if !ok {
		return ledger.NewPolicyError(ledger.CodeWrongStatus, "poll %s is not a closed push-mode pool", pollID)
	}
	if push.Distributed {
		return ledger.NewPolicyError(ledger.CodeAlreadyDistributed, "poll %s rewards were already distributed", pollID)
	}
	if p.Creator != creator {
		return ledger.NewPolicyError(ledger.CodeNotCreator, "%s is not the creator of poll %s", creator, pollID)
	}
	if err := m.Ledger.Distribute(ctx, creator, pollID); err != nil {
		return err
	}
	m.Logger.Info("distributed",
		zap.String("poll", pollID),
		zap.Uint64("perVoter", PerVoterShare(p)),
		zap.Uint64("voters", p.TotalVotes))
	return nil
}

// WithdrawRemainder collects unclaimed or undistributed funds back to the
// creator. Legal once the pool left ACTIVE and still holds funds; a zeroed
// pool cannot be withdrawn twice.
func (m *Machine) WithdrawRemainder(ctx context.Context, creator, pollID string) (uint64, error) {
	p, err := m.Ledger.GetPoll(ctx, pollID)
	if err != nil {
		return 0, err
	}
	if p.Creator != creator {
		return 0, ledger.NewPolicyError(ledger.CodeNotCreator, "%s is not the creator of poll %s", creator, pollID)
	}
	if p.Status == ledger.StatusActive {
		return 0, ledger.NewPolicyError(ledger.CodeWrongStatus, "poll %s is still active, funds may be needed for voting incentives", pollID)
	}
	if p.RewardPool == 0 {
		return 0, ledger.NewPolicyError(ledger.CodePoolEmpty, "poll %s has nothing left to withdraw", pollID)
	}
	amount, err := m.Ledger.WithdrawRemainder(ctx, creator, pollID)
	if err != nil {
		return 0, err
	}
	m.Logger.Info("remainder withdrawn",
		zap.String("poll", pollID),
		zap.Uint64("amount", amount))
	return amount, nil
}
