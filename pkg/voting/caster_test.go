package voting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vocapoll/vocax/pkg/eligibility"
	"github.com/vocapoll/vocax/pkg/ledger"
	"go.uber.org/zap/zaptest"
)

type mockVoteLedger struct {
	mock.Mock
}

func (m *mockVoteLedger) GetPoll(ctx context.Context, pollID string) (*ledger.Poll, error) {
	return nil, nil
}
func (m *mockVoteLedger) GetQuestionnaire(ctx context.Context, id string) (*ledger.Questionnaire, error) {
	return nil, nil
}
func (m *mockVoteLedger) HasVoted(ctx context.Context, participant, pollID string) (bool, error) {
	return false, nil
}
func (m *mockVoteLedger) HasClaimed(ctx context.Context, participant, pollID string) (bool, error) {
	return false, nil
}
func (m *mockVoteLedger) CombinedBalance(ctx context.Context, participant string) (ledger.Balance, error) {
	return ledger.Balance{}, nil
}
func (m *mockVoteLedger) CastVote(ctx context.Context, participant, pollID string, option uint32) error {
	args := m.Called(ctx, participant, pollID, option)
	return args.Error(0)
}
func (m *mockVoteLedger) Claim(ctx context.Context, participant, pollID string) (uint64, error) {
	return 0, nil
}
func (m *mockVoteLedger) Distribute(ctx context.Context, creator, pollID string) error { return nil }
func (m *mockVoteLedger) ClosePool(ctx context.Context, creator, pollID string, mode ledger.Mode) error {
	return nil
}
func (m *mockVoteLedger) WithdrawRemainder(ctx context.Context, creator, pollID string) (uint64, error) {
	return 0, nil
}

const day = eligibility.Day("2026-08-31")

func newCaster(t *testing.T) (*Caster, *mockVoteLedger) {
	ml := &mockVoteLedger{}
	limiter := eligibility.NewLimiter(eligibility.NewMemoryBudgetStore(), ml, zaptest.NewLogger(t))
	return NewCaster(limiter, ml, zaptest.NewLogger(t)), ml
}

func TestCastWithinBudget(t *testing.T) {
	c, ml := newCaster(t)
	ml.On("CastVote", mock.Anything, "bob", "poll-1", uint32(2)).Return(nil)

	budget, err := c.Cast(context.Background(), "bob", "poll-1", 2, day)
	require.NoError(t, err)
	assert.Equal(t, 1, budget.VotesUsed)
	assert.Equal(t, 1, budget.CurrentStreak)
}

func TestCastRejectedBeforeLedgerWriteWhenOverBudget(t *testing.T) {
	c, ml := newCaster(t)
	ml.On("CastVote", mock.Anything, "bob", mock.Anything, mock.Anything).Return(nil).Times(3)

	for i := 0; i < 3; i++ {
		_, err := c.Cast(context.Background(), "bob", "poll-1", 0, day)
		require.NoError(t, err)
	}

	_, err := c.Cast(context.Background(), "bob", "poll-1", 0, day)
	require.True(t, ledger.IsPolicyCode(err, ledger.CodeDailyLimitExceeded))
	ml.AssertNumberOfCalls(t, "CastVote", 3)
}

type failingRecorder struct{ calls int }

func (f *failingRecorder) MarkVoted(ctx context.Context, participant, pollID string) error {
	f.calls++
	return errors.New("index down")
}

func TestCastSucceedsWhenIndexWriteThroughFails(t *testing.T) {
	c, ml := newCaster(t)
	rec := &failingRecorder{}
	c.Index = rec
	ml.On("CastVote", mock.Anything, "bob", "poll-1", uint32(1)).Return(nil)

	budget, err := c.Cast(context.Background(), "bob", "poll-1", 1, day)
	require.NoError(t, err, "the ledger accepted the vote, the index is only an optimization")
	assert.Equal(t, 1, budget.VotesUsed)
	assert.Equal(t, 1, rec.calls)
}

func TestCastDoesNotConsumeBudgetOnLedgerRefusal(t *testing.T) {
	c, ml := newCaster(t)
	ml.On("CastVote", mock.Anything, "bob", "poll-1", uint32(0)).
		Return(ledger.NewPolicyError(ledger.CodeDuplicateVote, "already voted"))

	_, err := c.Cast(context.Background(), "bob", "poll-1", 0, day)
	require.True(t, ledger.IsPolicyCode(err, ledger.CodeDuplicateVote))

	dec, err := c.Limiter.CanVote(context.Background(), "bob", day)
	require.NoError(t, err)
	assert.Equal(t, 3, dec.Remaining, "a refused vote must not consume budget")
}
