package status

import (
	"context"
)

// IndexedResolver answers from one batched index query. The index is
// eventually consistent with the ledger; callers that cannot tolerate the
// staleness margin use the direct path instead.
type IndexedResolver struct {
	Index BatchQuerier
}

// NewIndexedResolver builds a resolver over the batched index.
func NewIndexedResolver(index BatchQuerier) *IndexedResolver {
	return &IndexedResolver{Index: index}
}

// Resolve issues a single batch query. A failed batch marks every requested
// poll unknown; the caller decides whether to fall back or surface degraded
// state.
func (r *IndexedResolver) Resolve(ctx context.Context, participant string, pollIDs []string) (Result, error) {
	batch, err := r.Index.GetUserPollStatusBatch(ctx, participant, pollIDs)
	if err != nil {
		unknown := make(map[string]error, len(pollIDs))
		for _, id := range pollIDs {
			unknown[id] = err
		}
		return Result{Statuses: map[string]PollStatus{}, Unknown: unknown}, nil
	}

	res := Result{
		Statuses: make(map[string]PollStatus, len(pollIDs)),
		Unknown:  map[string]error{},
	}
	for _, id := range pollIDs {
		// A poll absent from the index result has no recorded activity.
		res.Statuses[id] = batch[id]
	}
	return res, nil
}
