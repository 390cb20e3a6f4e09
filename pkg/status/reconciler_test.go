package status

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fixture is one synthetic ledger state serving both retrieval paths, so the
// equivalence contract can be checked against a single source of truth.
type fixture struct {
	voted   map[string]bool
	claimed map[string]bool

	failVoted   map[string]error
	failClaimed map[string]error

	votedCalls   atomic.Int64
	claimedCalls atomic.Int64
}

func (f *fixture) HasVoted(_ context.Context, _ string, pollID string) (bool, error) {
	f.votedCalls.Add(1)
	if err := f.failVoted[pollID]; err != nil {
		return false, err
	}
	return f.voted[pollID], nil
}

func (f *fixture) HasClaimed(_ context.Context, _ string, pollID string) (bool, error) {
	f.claimedCalls.Add(1)
	if err := f.failClaimed[pollID]; err != nil {
		return false, err
	}
	return f.claimed[pollID], nil
}

func (f *fixture) GetUserPollStatusBatch(_ context.Context, _ string, pollIDs []string) (map[string]PollStatus, error) {
	out := make(map[string]PollStatus, len(pollIDs))
	for _, id := range pollIDs {
		if f.voted[id] {
			out[id] = PollStatus{Voted: true, Claimed: f.claimed[id]}
		}
	}
	return out, nil
}

func newFixture() *fixture {
	return &fixture{
		voted:       map[string]bool{"p1": true, "p2": true, "p4": true},
		claimed:     map[string]bool{"p1": true},
		failVoted:   map[string]error{},
		failClaimed: map[string]error{},
	}
}

var allPolls = []string{"p1", "p2", "p3", "p4", "p5"}

func noRetry(d *DirectResolver) *DirectResolver {
	d.retry.MaxRetries = 1
	return d
}

func TestDirectAndIndexedPathsAgree(t *testing.T) {
	f := newFixture()
	logger := zaptest.NewLogger(t)

	direct := noRetry(NewDirectResolver(f, logger, 4))
	indexed := NewIndexedResolver(f)

	dRes, err := direct.Resolve(context.Background(), "bob", allPolls)
	require.NoError(t, err)
	iRes, err := indexed.Resolve(context.Background(), "bob", allPolls)
	require.NoError(t, err)

	require.True(t, dRes.Complete())
	require.True(t, iRes.Complete())
	assert.Equal(t, iRes.Statuses, dRes.Statuses, "both strategies must agree for the same ledger state")

	assert.Equal(t, PollStatus{Voted: true, Claimed: true}, dRes.Statuses["p1"])
	assert.Equal(t, PollStatus{Voted: true, Claimed: false}, dRes.Statuses["p2"])
	assert.Equal(t, PollStatus{}, dRes.Statuses["p3"])
}

func TestDirectSkipsClaimedQueryForNonVoters(t *testing.T) {
	f := newFixture()
	direct := noRetry(NewDirectResolver(f, zaptest.NewLogger(t), 4))

	_, err := direct.Resolve(context.Background(), "bob", allPolls)
	require.NoError(t, err)

	assert.Equal(t, int64(len(allPolls)), f.votedCalls.Load())
	assert.Equal(t, int64(3), f.claimedCalls.Load(), "claimed is only queried for the three voters")
}

func TestDirectFailureMarksPollUnknownNotFalse(t *testing.T) {
	f := newFixture()
	f.failVoted["p2"] = errors.New("gateway timeout")
	direct := noRetry(NewDirectResolver(f, zaptest.NewLogger(t), 4))

	res, err := direct.Resolve(context.Background(), "bob", allPolls)
	require.NoError(t, err, "one failing poll must not abort the batch")

	require.Contains(t, res.Unknown, "p2")
	assert.NotContains(t, res.Statuses, "p2", "a failed poll is unknown, never silently false")
	assert.Len(t, res.Statuses, len(allPolls)-1, "the rest of the batch still resolves")
}

func TestDirectClaimedFailureAlsoUnknown(t *testing.T) {
	f := newFixture()
	f.failClaimed["p1"] = errors.New("connection reset")
	direct := noRetry(NewDirectResolver(f, zaptest.NewLogger(t), 4))

	res, err := direct.Resolve(context.Background(), "bob", []string{"p1"})
	require.NoError(t, err)
	require.Contains(t, res.Unknown, "p1")
	assert.Empty(t, res.Statuses)
}

func TestReconcilerPrefersIndexWhenAvailable(t *testing.T) {
	f := newFixture()
	logger := zaptest.NewLogger(t)
	rec := NewReconciler(noRetry(NewDirectResolver(f, logger, 4)), NewIndexedResolver(f), func() bool { return true }, logger)

	res, err := rec.Resolve(context.Background(), "bob", allPolls)
	require.NoError(t, err)
	assert.True(t, res.Complete())
	assert.Equal(t, int64(0), f.votedCalls.Load(), "indexed path must not issue per-poll reads")
}

func TestReconcilerFallsBackWhenIndexUnavailable(t *testing.T) {
	f := newFixture()
	logger := zaptest.NewLogger(t)
	rec := NewReconciler(noRetry(NewDirectResolver(f, logger, 4)), NewIndexedResolver(f), func() bool { return false }, logger)

	res, err := rec.Resolve(context.Background(), "bob", allPolls)
	require.NoError(t, err)
	assert.True(t, res.Complete())
	assert.Greater(t, f.votedCalls.Load(), int64(0), "direct path serves when the index probe fails")
}

type failingIndex struct{}

func (failingIndex) GetUserPollStatusBatch(context.Context, string, []string) (map[string]PollStatus, error) {
	return nil, errors.New("index offline")
}

func TestReconcilerFallsBackOnWhollyUnknownBatch(t *testing.T) {
	f := newFixture()
	logger := zaptest.NewLogger(t)
	rec := NewReconciler(noRetry(NewDirectResolver(f, logger, 4)), NewIndexedResolver(failingIndex{}), func() bool { return true }, logger)

	res, err := rec.Resolve(context.Background(), "bob", allPolls)
	require.NoError(t, err)
	assert.True(t, res.Complete(), "a dead index degrades to the slow path, not to a degraded answer")
}
