package status

import (
	"context"
	"errors"

	"github.com/alitto/pond/v2"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/vocapoll/vocax/pkg/ledger"
	"github.com/vocapoll/vocax/pkg/retry"
	"go.uber.org/zap"
)

// DirectResolver answers from per-poll ledger reads. Polls fan out over a
// bounded worker pool; reads are safe to retry so each gets backoff. A poll
// whose reads keep failing lands in Result.Unknown without aborting the rest
// of the batch.
type DirectResolver struct {
	Ledger ItemQuerier
	Logger *zap.Logger

	pool  pond.Pool
	retry retry.Config
}

// NewDirectResolver builds a direct resolver with the given fan-out width.
func NewDirectResolver(cli ItemQuerier, logger *zap.Logger, workers int) *DirectResolver {
	if workers <= 0 {
		workers = 8
	}
	cfg := retry.DefaultConfig()
	cfg.MaxRetries = 3
	cfg.Abort = ledger.IsPolicy
	return &DirectResolver{
		Ledger: cli,
		Logger: logger,
		pool:   pond.NewPool(workers),
		retry:  cfg,
	}
}

// Resolve queries HasVoted per poll and, only for voters, HasClaimed.
// Claimed status is meaningless for a non-voter and is not queried, saving a
// round-trip per non-voter.
func (d *DirectResolver) Resolve(ctx context.Context, participant string, pollIDs []string) (Result, error) {
	statuses := xsync.NewMap[string, PollStatus]()
	unknown := xsync.NewMap[string, error]()

	group := d.pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for _, id := range pollIDs {
		pollID := id
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				unknown.Store(pollID, err)
				return
			}
			st, err := d.resolveOne(groupCtx, participant, pollID)
			if err != nil {
				d.Logger.Warn("poll status unresolved",
					zap.String("poll", pollID),
					zap.String("participant", participant),
					zap.Error(err))
				unknown.Store(pollID, err)
				return
			}
			statuses.Store(pollID, st)
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		d.Logger.Warn("direct status group encountered error", zap.Error(err))
	}

	res := Result{
		Statuses: make(map[string]PollStatus, statuses.Size()),
		Unknown:  make(map[string]error, unknown.Size()),
	}
	statuses.Range(func(k string, v PollStatus) bool {
		res.Statuses[k] = v
		return true
	})
	unknown.Range(func(k string, v error) bool {
		res.Unknown[k] = v
		return true
	})
	return res, nil
}

func (d *DirectResolver) resolveOne(ctx context.Context, participant, pollID string) (PollStatus, error) {
	var voted bool
	err := retry.WithBackoff(ctx, d.retry, d.Logger, "has-voted", func() error {
		var e error
		voted, e = d.Ledger.HasVoted(ctx, participant, pollID)
		return e
	})
	if err != nil {
		return PollStatus{}, err
	}
	if !voted {
		return PollStatus{}, nil
	}

	var claimed bool
	err = retry.WithBackoff(ctx, d.retry, d.Logger, "has-claimed", func() error {
		var e error
		claimed, e = d.Ledger.HasClaimed(ctx, participant, pollID)
		return e
	})
	if err != nil {
		return PollStatus{}, err
	}
	return PollStatus{Voted: true, Claimed: claimed}, nil
}
