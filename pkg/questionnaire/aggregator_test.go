package questionnaire

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vocapoll/vocax/pkg/eligibility"
	"github.com/vocapoll/vocax/pkg/ledger"
	"github.com/vocapoll/vocax/pkg/status"
	"github.com/vocapoll/vocax/pkg/voting"
	"go.uber.org/zap/zaptest"
)

// fakeLedger backs both the questionnaire record and vote submission, so the
// resolver view follows votes as they land.
type fakeLedger struct {
	q     *ledger.Questionnaire
	voted map[string]bool

	castErr map[string]error
}

func (f *fakeLedger) GetPoll(context.Context, string) (*ledger.Poll, error) { return nil, nil }
func (f *fakeLedger) GetQuestionnaire(_ context.Context, id string) (*ledger.Questionnaire, error) {
	if f.q == nil || f.q.ID != id {
		return nil, ledger.NewPolicyError(ledger.CodeUnknownPoll, "no questionnaire %s", id)
	}
	return f.q, nil
}
func (f *fakeLedger) HasVoted(_ context.Context, _ string, pollID string) (bool, error) {
	return f.voted[pollID], nil
}
func (f *fakeLedger) HasClaimed(context.Context, string, string) (bool, error) { return false, nil }
func (f *fakeLedger) CombinedBalance(context.Context, string) (ledger.Balance, error) {
	return ledger.Balance{Liquid: 100_000_000}, nil // Platinum: budget is not under test here
}
func (f *fakeLedger) CastVote(_ context.Context, _ string, pollID string, _ uint32) error {
	if err := f.castErr[pollID]; err != nil {
		return err
	}
	f.voted[pollID] = true
	return nil
}
func (f *fakeLedger) Claim(context.Context, string, string) (uint64, error)   { return 0, nil }
func (f *fakeLedger) Distribute(context.Context, string, string) error        { return nil }
func (f *fakeLedger) ClosePool(context.Context, string, string, ledger.Mode) error {
	return nil
}
func (f *fakeLedger) WithdrawRemainder(context.Context, string, string) (uint64, error) {
	return 0, nil
}

// fakeResolver reads the fake ledger directly; individual polls can be
// forced unknown.
type fakeResolver struct {
	ledger  *fakeLedger
	unknown map[string]error
}

func (r *fakeResolver) Resolve(_ context.Context, _ string, pollIDs []string) (status.Result, error) {
	res := status.Result{Statuses: map[string]status.PollStatus{}, Unknown: map[string]error{}}
	for _, id := range pollIDs {
		if err, ok := r.unknown[id]; ok {
			res.Unknown[id] = err
			continue
		}
		res.Statuses[id] = status.PollStatus{Voted: r.ledger.voted[id]}
	}
	return res, nil
}

func sharedPool(pollIDs []string, maxCompleters uint64) *ledger.Questionnaire {
	return &ledger.Questionnaire{
		ID:            "q1",
		Creator:       "alice",
		PollIDs:       pollIDs,
		Policy:        ledger.PolicySharedPool,
		SharedFunding: 99,
		RewardMode:    ledger.RewardEqualSplit,
		MaxCompleters: maxCompleters,
		Status:        ledger.QuestionnaireActive,
	}
}

func newAggregator(t *testing.T, q *ledger.Questionnaire) (*Aggregator, *fakeLedger, *fakeResolver) {
	fl := &fakeLedger{q: q, voted: map[string]bool{}, castErr: map[string]error{}}
	fr := &fakeResolver{ledger: fl, unknown: map[string]error{}}
	agg := NewAggregator(fl, fr, NewMemoryCompletionStore(), zaptest.NewLogger(t))
	return agg, fl, fr
}

func TestCompletenessFlipsOnLastVote(t *testing.T) {
	agg, fl, _ := newAggregator(t, sharedPool([]string{"p1", "p2", "p3"}, 0))
	ctx := context.Background()

	fl.voted["p1"] = true
	fl.voted["p2"] = true

	comp, err := agg.Completion(ctx, "bob", "q1")
	require.NoError(t, err)
	assert.False(t, comp.Complete, "all-but-one answered is not complete")
	assert.Equal(t, 2, comp.Answered)

	fl.voted["p3"] = true
	comp, err = agg.Completion(ctx, "bob", "q1")
	require.NoError(t, err)
	assert.True(t, comp.Complete)
}

func TestUnknownMemberStatusRefusesToDecide(t *testing.T) {
	agg, fl, fr := newAggregator(t, sharedPool([]string{"p1", "p2"}, 0))
	fl.voted["p1"] = true
	fl.voted["p2"] = true
	fr.unknown["p2"] = errors.New("index timeout")

	_, err := agg.Completion(context.Background(), "bob", "q1")
	require.True(t, ledger.IsPolicyCode(err, ledger.CodeUnknownPoll),
		"unknown status must not be guessed as not-voted")
}

func TestRegisterCompleterRequiresCompleteness(t *testing.T) {
	agg, fl, _ := newAggregator(t, sharedPool([]string{"p1", "p2"}, 0))
	fl.voted["p1"] = true

	_, err := agg.RegisterCompleter(context.Background(), "bob", "q1")
	require.True(t, ledger.IsPolicyCode(err, ledger.CodeNotComplete))
}

func TestRegisterCompleterCapIsANormalOutcome(t *testing.T) {
	agg, fl, _ := newAggregator(t, sharedPool([]string{"p1"}, 2))
	fl.voted["p1"] = true
	ctx := context.Background()

	for _, participant := range []string{"bob", "carol"} {
		ok, err := agg.RegisterCompleter(ctx, participant, "q1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := agg.RegisterCompleter(ctx, "dave", "q1")
	require.NoError(t, err, "a reached cap is not a failure")
	assert.False(t, ok, "dave is simply not eligible for the payout")

	// Re-registering an existing completer stays idempotent.
	ok, err = agg.RegisterCompleter(ctx, "bob", "q1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompleterRewardEqualSplit(t *testing.T) {
	agg, fl, _ := newAggregator(t, sharedPool([]string{"p1"}, 0))
	fl.voted["p1"] = true
	ctx := context.Background()

	for _, participant := range []string{"bob", "carol", "dave"} {
		_, err := agg.RegisterCompleter(ctx, participant, "q1")
		require.NoError(t, err)
	}

	reward, err := agg.CompleterReward(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, uint64(33), reward, "99 split over 3 completers")
}

func TestCompleterRewardFixed(t *testing.T) {
	q := sharedPool([]string{"p1"}, 0)
	q.RewardMode = ledger.RewardFixed
	q.FixedAmount = 5
	agg, _, _ := newAggregator(t, q)

	reward, err := agg.CompleterReward(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), reward)
}

func TestCompleterRewardRejectsPerPollPolicy(t *testing.T) {
	q := sharedPool([]string{"p1"}, 0)
	q.Policy = ledger.PolicyPerPoll
	agg, _, _ := newAggregator(t, q)

	_, err := agg.CompleterReward(context.Background(), "q1")
	require.True(t, ledger.IsPolicy(err))
}

const day = eligibility.Day("2026-08-31")

func newCaster(t *testing.T, fl *fakeLedger) *voting.Caster {
	limiter := eligibility.NewLimiter(eligibility.NewMemoryBudgetStore(), fl, zaptest.NewLogger(t))
	return voting.NewCaster(limiter, fl, zaptest.NewLogger(t))
}

func TestSubmitAllSkipsAnsweredAndResumes(t *testing.T) {
	agg, fl, _ := newAggregator(t, sharedPool([]string{"p1", "p2", "p3"}, 0))
	ctx := context.Background()
	caster := newCaster(t, fl)

	fl.voted["p1"] = true // answered earlier
	fl.castErr["p2"] = &ledger.TransportError{Op: "cast-vote", Err: errors.New("timeout")}

	answers := map[string]uint32{"p1": 0, "p2": 1, "p3": 2}
	outcomes, err := agg.SubmitAll(ctx, caster, "bob", "q1", answers, day)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Skipped)
	require.Error(t, outcomes[1].Err)
	assert.True(t, outcomes[2].Voted, "a failed item must not block later items")

	// Resubmitting after the transport failure clears only the missing poll.
	delete(fl.castErr, "p2")
	outcomes, err = agg.SubmitAll(ctx, caster, "bob", "q1", answers, day)
	require.NoError(t, err)
	assert.True(t, outcomes[0].Skipped)
	assert.True(t, outcomes[1].Voted)
	assert.True(t, outcomes[2].Skipped)

	comp, err := agg.Completion(ctx, "bob", "q1")
	require.NoError(t, err)
	assert.True(t, comp.Complete)
}

func TestSubmitAllRejectsInactiveQuestionnaire(t *testing.T) {
	q := sharedPool([]string{"p1"}, 0)
	q.Status = ledger.QuestionnaireEnded
	agg, fl, _ := newAggregator(t, q)

	_, err := agg.SubmitAll(context.Background(), newCaster(t, fl), "bob", "q1", nil, day)
	require.True(t, ledger.IsPolicyCode(err, ledger.CodeWrongStatus))
}
