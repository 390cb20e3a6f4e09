package distribution

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vocapoll/vocax/pkg/ledger"
	"go.uber.org/zap/zaptest"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) GetPoll(ctx context.Context, pollID string) (*ledger.Poll, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Poll), args.Error(1)
}

func (m *mockLedger) GetQuestionnaire(ctx context.Context, id string) (*ledger.Questionnaire, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Questionnaire), args.Error(1)
}

func (m *mockLedger) HasVoted(ctx context.Context, participant, pollID string) (bool, error) {
	args := m.Called(ctx, participant, pollID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) HasClaimed(ctx context.Context, participant, pollID string) (bool, error) {
	args := m.Called(ctx, participant, pollID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) CombinedBalance(ctx context.Context, participant string) (ledger.Balance, error) {
	args := m.Called(ctx, participant)
	return args.Get(0).(ledger.Balance), args.Error(1)
}

func (m *mockLedger) CastVote(ctx context.Context, participant, pollID string, option uint32) error {
	args := m.Called(ctx, participant, pollID, option)
	return args.Error(0)
}

func (m *mockLedger) Claim(ctx context.Context, participant, pollID string) (uint64, error) {
	args := m.Called(ctx, participant, pollID)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockLedger) Distribute(ctx context.Context, creator, pollID string) error {
	args := m.Called(ctx, creator, pollID)
	return args.Error(0)
}

func (m *mockLedger) ClosePool(ctx context.Context, creator, pollID string, mode ledger.Mode) error {
	args := m.Called(ctx, creator, pollID, mode)
	return args.Error(0)
}

func (m *mockLedger) WithdrawRemainder(ctx context.Context, creator, pollID string) (uint64, error) {
	args := m.Called(ctx, creator, pollID)
	return args.Get(0).(uint64), args.Error(1)
}

func newMachine(t *testing.T) (*Machine, *mockLedger) {
	ml := &mockLedger{}
	return New(ml, zaptest.NewLogger(t)), ml
}

func claimingPoll() *ledger.Poll {
	return &ledger.Poll{
		ID:                "poll-1",
		Creator:           "alice",
		Status:            ledger.StatusClaiming,
		Mode:              ledger.ModeManualPull,
		RewardPool:        99,
		RewardPoolAtClose: 99,
		TotalVotes:        10,
		Voters:            []string{"bob", "carol"},
	}
}

func TestCloseFixesMode(t *testing.T) {
	m, ml := newMachine(t)
	ml.On("GetPoll", mock.Anything, "poll-1").Return(&ledger.Poll{
		ID: "poll-1", Creator: "alice", Status: ledger.StatusActive, Mode: ledger.ModeUnset,
	}, nil)
	ml.On("ClosePool", mock.Anything, "alice", "poll-1", ledger.ModeManualPull).Return(nil)

	require.NoError(t, m.Close(context.Background(), "alice", "poll-1", ledger.ModeManualPull))
	ml.AssertExpectations(t)
}

func TestCloseRejectsNonCreator(t *testing.T) {
	m, ml := newMachine(t)
	ml.On("GetPoll", mock.Anything, "poll-1").Return(&ledger.Poll{
		ID: "poll-1", Creator: "alice", Status: ledger.StatusActive,
	}, nil)

	err := m.Close(context.Background(), "mallory", "poll-1", ledger.ModeManualPush)
	require.True(t, ledger.IsPolicyCode(err, ledger.CodeNotCreator))
	ml.AssertNotCalled(t, "ClosePool", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCloseRejectsReclose(t *testing.T) {
	m, ml := newMachine(t)
	ml.On("GetPoll", mock.Anything, "poll-1").Return(claimingPoll(), nil)

	err := m.Close(context.Background(), "alice", "poll-1", ledger.ModeManualPush)
	require.True(t, ledger.IsPolicyCode(err, ledger.CodeWrongStatus), "mode is fixed once, re-close must fail")
	ml.AssertNotCalled(t, "ClosePool", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCloseRequiresExplicitMode(t *testing.T) {
	m, ml := newMachine(t)
	err := m.Close(context.Background(), "alice", "poll-1", ledger.ModeUnset)
	require.True(t, ledger.IsPolicy(err))
	ml.AssertNotCalled(t, "GetPoll", mock.Anything, mock.Anything)
}

func TestClaimHappyPath(t *testing.T) {
	m, ml := newMachine(t)
	ml.On("GetPoll", mock.Anything, "poll-1").Return(claimingPoll(), nil)
	ml.On("Claim", mock.Anything, "bob", "poll-1").Return(uint64(9), nil)

	amount, err := m.Claim(context.Background(), "bob", "poll-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), amount)
}

func TestClaimRejectsDoubleClaimBeforeLedgerCall(t *testing.T) {
	m, ml := newMachine(t)
	p := claimingPoll()
	p.Claimants = []string{"bob"}
	ml.On("GetPoll", mock.Anything, "poll-1").Return(p, nil)

	_, err := m.Claim(context.Background(), "bob", "poll-1")
	require.True(t, ledger.IsPolicyCode(err, ledger.CodeAlreadyClaimed))
	ml.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimRejectsNonVoter(t *testing.T) {
	m, ml := newMachine(t)
	ml.On("GetPoll", mock.Anything, "poll-1").Return(claimingPoll(), nil)

	_, err := m.Claim(context.Background(), "mallory", "poll-1")
	require.True(t, ledger.IsPolicyCode(err, ledger.CodeNotVoter))
	ml.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimRejectsWrongState(t *testing.T) {
	m, ml := newMachine(t)
	ml.On("GetPoll", mock.Anything, "poll-1").Return(&ledger.Poll{
		ID: "poll-1", Creator: "alice", Status: ledger.StatusActive, Voters: []string{"bob"},
	}, nil)

	_, err := m.Claim(context.Background(), "bob", "poll-1")
	require.True(t, ledger.IsPolicy(err))
	ml.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimRejectsEmptyPool(t *testing.T) {
	m, ml := newMachine(t)
	p := claimingPoll()
	p.RewardPool = 0
	ml.On("GetPoll", mock.Anything, "poll-1").Return(p, nil)

	_, err := m.Claim(context.Background(), "bob", "poll-1")
	require.True(t, ledger.IsPolicyCode(err, ledger.CodePoolEmpty))
}

func TestDistributeOncePushOnly(t *testing.T) {
	m, ml := newMachine(t)
	pushPoll := &ledger.Poll{
		ID: "poll-2", Creator: "alice", Status: ledger.StatusClosed, Mode: ledger.ModeManualPush,
		RewardPool: 100, RewardPoolAtClose: 100, TotalVotes: 4,
	}
	ml.On("GetPoll", mock.Anything, "poll-2").Return(pushPoll, nil).Once()
	ml.On("Distribute", mock.Anything, "alice", "poll-2").Return(nil).Once()
	require.NoError(t, m.Distribute(context.Background(), "alice", "poll-2"))

	done := *pushPoll
	done.RewardsDistributed = true
	ml.On("GetPoll", mock.Anything, "poll-2").Return(&done, nil).Once()
	err := m.Distribute(context.Background(), "alice", "poll-2")
	require.True(t, ledger.IsPolicyCode(err, ledger.CodeAlreadyDistributed))
	ml.AssertExpectations(t)
}

func TestDistributeRejectsPullMode(t *testing.T) {
	m, ml := newMachine(t)
	ml.On("GetPoll", mock.Anything, "poll-1").Return(claimingPoll(), nil)

	err := m.Distribute(context.Background(), "alice", "poll-1")
	require.True(t, ledger.IsPolicyCode(err, ledger.CodeWrongStatus))
	ml.AssertNotCalled(t, "Distribute", mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawRemainder(t *testing.T) {
	m, ml := newMachine(t)
	p := claimingPoll()
	p.RewardPool = 9
	ml.On("GetPoll", mock.Anything, "poll-1").Return(p, nil)
	ml.On("WithdrawRemainder", mock.Anything, "alice", "poll-1").Return(uint64(9), nil)

	amount, err := m.WithdrawRemainder(context.Background(), "alice", "poll-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), amount)
}

func TestWithdrawRejectedWhileActive(t *testing.T) {
	m, ml := newMachine(t)
	ml.On("GetPoll", mock.Anything, "poll-1").Return(&ledger.Poll{
		ID: "poll-1", Creator: "alice", Status: ledger.StatusActive, RewardPool: 99,
	}, nil)

	_, err := m.WithdrawRemainder(context.Background(), "alice", "poll-1")
	require.True(t, ledger.IsPolicyCode(err, ledger.CodeWrongStatus))
	ml.AssertNotCalled(t, "WithdrawRemainder", mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawRejectedWhenZeroed(t *testing.T) {
	m, ml := newMachine(t)
	p := claimingPoll()
	p.RewardPool = 0
	ml.On("GetPoll", mock.Anything, "poll-1").Return(p, nil)

	_, err := m.WithdrawRemainder(context.Background(), "alice", "poll-1")
	require.True(t, ledger.IsPolicyCode(err, ledger.CodePoolEmpty))
}

func TestPerVoterShareFixedOverridesSplit(t *testing.T) {
	p := claimingPoll()
	assert.Equal(t, uint64(9), PerVoterShare(p))
	p.FixedRewardPerVote = 5
	assert.Equal(t, uint64(5), PerVoterShare(p))
}

func TestPerVoterShareUsesCloseSnapshot(t *testing.T) {
	p := claimingPoll()
	p.RewardPool = 45 // six claims already drained the pool
	assert.Equal(t, uint64(9), PerVoterShare(p), "share basis is the close-time pool, not the drained remainder")
}

func TestClaimAllPartialFailureIsResumable(t *testing.T) {
	m, ml := newMachine(t)

	ok := claimingPoll()
	ml.On("GetPoll", mock.Anything, "poll-1").Return(ok, nil)
	ml.On("Claim", mock.Anything, "bob", "poll-1").Return(uint64(9), nil)

	already := claimingPoll()
	already.ID = "poll-2"
	already.Claimants = []string{"bob"}
	ml.On("GetPoll", mock.Anything, "poll-2").Return(already, nil)

	ml.On("GetPoll", mock.Anything, "poll-3").Return(nil, &ledger.TransportError{Op: "get-poll", Err: errors.New("timeout")})

	outcomes := m.ClaimAll(context.Background(), "bob", []string{"poll-1", "poll-2", "poll-3"})
	require.Len(t, outcomes, 3)

	assert.True(t, outcomes[0].Claimed)
	assert.Equal(t, uint64(9), outcomes[0].Amount)
	assert.True(t, outcomes[1].Skipped, "already-claimed is a normal outcome, not an error")
	assert.NoError(t, outcomes[1].Err)
	require.Error(t, outcomes[2].Err)
	assert.True(t, ledger.IsTransport(outcomes[2].Err))
}

func TestStateOfRejectsInconsistentRecord(t *testing.T) {
	_, err := StateOf(&ledger.Poll{ID: "p", Status: ledger.StatusClosed, Mode: ledger.ModeUnset})
	require.True(t, ledger.IsPolicy(err))
	_, err = StateOf(&ledger.Poll{ID: "p", Status: ledger.StatusClaiming, Mode: ledger.ModeManualPush})
	require.True(t, ledger.IsPolicy(err))
}
