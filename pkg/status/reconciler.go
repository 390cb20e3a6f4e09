package status

import (
	"context"

	"go.uber.org/zap"
)

// Reconciler selects between the indexed and direct strategies at each call.
// The business result is identical either way; only retrieval differs.
type Reconciler struct {
	Direct  Resolver
	Indexed Resolver

	// Available reports whether the batched index can currently serve.
	// Typically wired to an index prober; nil means never.
	Available func() bool

	Logger *zap.Logger
}

// NewReconciler wires the two strategies behind one resolver.
func NewReconciler(direct, indexed Resolver, available func() bool, logger *zap.Logger) *Reconciler {
	return &Reconciler{Direct: direct, Indexed: indexed, Available: available, Logger: logger}
}

// Resolve prefers the batched index when it is available and falls back to
// direct ledger reads otherwise. An indexed call that resolves nothing (the
// whole batch unknown) also falls back, so a flapping index degrades to the
// slow path instead of a degraded answer.
func (r *Reconciler) Resolve(ctx context.Context, participant string, pollIDs []string) (Result, error) {
	if r.Indexed != nil && r.Available != nil && r.Available() {
		res, err := r.Indexed.Resolve(ctx, participant, pollIDs)
		if err == nil && (len(pollIDs) == 0 || len(res.Statuses) > 0) {
			return res, nil
		}
		r.Logger.Warn("indexed status path unavailable, falling back to direct reads",
			zap.String("participant", participant),
			zap.Int("polls", len(pollIDs)),
			zap.Error(err))
	}
	return r.Direct.Resolve(ctx, participant, pollIDs)
}
