// Package status computes the "who voted / who claimed" view for a
// participant across polls. Two retrieval strategies exist behind one
// contract: a batched index query (fast, eventually consistent) and
// per-poll ledger reads (authoritative, slower). For the same underlying
// ledger state both must produce identical results.
package status

import "context"

// PollStatus is the derived voted/claimed pair for one participant and poll.
// It is a pure function of ledger state at query time and owns no lifecycle.
type PollStatus struct {
	Voted   bool `json:"voted"`
	Claimed bool `json:"claimed"`
}

// Result carries the resolved statuses plus the polls whose status could not
// be determined. An unknown poll is never coerced to false: eligibility
// decisions must refuse to proceed on it rather than guess.
type Result struct {
	Statuses map[string]PollStatus
	Unknown  map[string]error
}

// Complete reports whether every requested poll resolved.
func (r Result) Complete() bool { return len(r.Unknown) == 0 }

// Resolver resolves the voted/claimed status of a participant for a set of
// polls. Implementations are read-only and side-effect-free.
type Resolver interface {
	Resolve(ctx context.Context, participant string, pollIDs []string) (Result, error)
}

// BatchQuerier is the batched index read used by the indexed strategy. The
// index may lag the ledger by a bounded, acceptable margin.
type BatchQuerier interface {
	GetUserPollStatusBatch(ctx context.Context, participant string, pollIDs []string) (map[string]PollStatus, error)
}

// ItemQuerier is the per-poll ledger read surface used by the direct
// strategy. ledger.Client satisfies it.
type ItemQuerier interface {
	HasVoted(ctx context.Context, participant, pollID string) (bool, error)
	HasClaimed(ctx context.Context, participant, pollID string) (bool, error)
}
