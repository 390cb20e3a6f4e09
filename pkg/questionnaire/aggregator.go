// Package questionnaire composes member polls into one completion unit and
// gates shared-pool rewards on full completion. Answering all-but-one member
// poll earns nothing: completeness is a hard gate, never pro-rated.
package questionnaire

import (
	"context"

	"github.com/vocapoll/vocax/pkg/ledger"
	"github.com/vocapoll/vocax/pkg/rewards"
	"github.com/vocapoll/vocax/pkg/status"
	"go.uber.org/zap"
)

// CompletionStore is the off-chain registration bookkeeping for shared-pool
// completers. Registration is capped, not funds-exhausted: once MaxCompleters
// register, later completers are simply not eligible for the payout.
type CompletionStore interface {
	// Register adds the participant as a completer unless the cap (0 = no
	// cap) is already reached. Reports whether the participant is now (or
	// already was) registered, and the registered count.
	Register(ctx context.Context, questionnaireID, participant string, cap uint64) (registered bool, count uint64, err error)
	// IsRegistered reports whether the participant registered as a completer.
	IsRegistered(ctx context.Context, questionnaireID, participant string) (bool, error)
	// Count returns the number of registered completers.
	Count(ctx context.Context, questionnaireID string) (uint64, error)
}

// Aggregator computes questionnaire completion and shared-pool eligibility
// from per-poll voted status.
type Aggregator struct {
	Ledger      ledger.Client
	Resolver    status.Resolver
	Completions CompletionStore
	Logger      *zap.Logger
}

// NewAggregator wires an aggregator.
func NewAggregator(cli ledger.Client, resolver status.Resolver, completions CompletionStore, logger *zap.Logger) *Aggregator {
	return &Aggregator{Ledger: cli, Resolver: resolver, Completions: completions, Logger: logger}
}

// IsComplete reports whether every member poll has a recorded vote in res.
// A member poll whose status is unknown makes completeness undecidable: the
// unknown is surfaced instead of being guessed as "not voted".
func IsComplete(res status.Result, pollIDs []string) (bool, error) {
	for _, id := range pollIDs {
		if err, unknown := res.Unknown[id]; unknown {
			return false, ledger.NewPolicyError(ledger.CodeUnknownPoll,
				"status of member poll %s is unknown: %v", id, err)
		}
		if !res.Statuses[id].Voted {
			return false, nil
		}
	}
	return true, nil
}

// Completion is a participant's view of one questionnaire.
type Completion struct {
	QuestionnaireID string                       `json:"questionnaireId"`
	Complete        bool                         `json:"complete"`
	Answered        int                          `json:"answered"`
	Total           int                          `json:"total"`
	Statuses        map[string]status.PollStatus `json:"statuses"`
}

// Completion resolves the participant's per-poll status and folds it into a
// completion view.
func (a *Aggregator) Completion(ctx context.Context, participant, questionnaireID string) (Completion, error) {
	q, err := a.Ledger.GetQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return Completion{}, err
	}
	res, err := a.Resolver.Resolve(ctx, participant, q.PollIDs)
	if err != nil {
		return Completion{}, err
	}

	complete, err := IsComplete(res, q.PollIDs)
	if err != nil {
		return Completion{}, err
	}

	answered := 0
	for _, id := range q.PollIDs {
		if res.Statuses[id].Voted {
			answered++
		}
	}
	return Completion{
		QuestionnaireID: questionnaireID,
		Complete:        complete,
		Answered:        answered,
		Total:           len(q.PollIDs),
		Statuses:        res.Statuses,
	}, nil
}

// RegisterCompleter registers the participant for the shared-pool payout.
// Requires a SHARED_POOL questionnaire and full completion. A reached cap is
// a normal outcome (registered=false), not a failure.
func (a *Aggregator) RegisterCompleter(ctx context.Context, participant, questionnaireID string) (bool, error) {
	q, err := a.Ledger.GetQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return false, err
	}
	if q.Policy != ledger.PolicySharedPool {
		return false, ledger.NewPolicyError(ledger.CodeWrongStatus,
			"questionnaire %s rewards per poll, not from a shared pool", questionnaireID)
	}

	comp, err := a.Completion(ctx, participant, questionnaireID)
	if err != nil {
		return false, err
	}
	if !comp.Complete {
		return false, ledger.NewPolicyError(ledger.CodeNotComplete,
			"%s answered %d of %d member polls", participant, comp.Answered, comp.Total)
	}

	registered, count, err := a.Completions.Register(ctx, questionnaireID, participant, q.MaxCompleters)
	if err != nil {
		return false, err
	}
	if !registered {
		a.Logger.Info("completer cap reached",
			zap.String("questionnaire", questionnaireID),
			zap.String("participant", participant),
			zap.Uint64("cap", q.MaxCompleters))
		return false, nil
	}
	a.Logger.Debug("completer registered",
		zap.String("questionnaire", questionnaireID),
		zap.String("participant", participant),
		zap.Uint64("completers", count))
	return true, nil
}

// CompleterReward returns what one registered completer receives from the
// shared pool: the configured fixed amount, or an equal split of the funded
// total over the completer count known at claim time.
func (a *Aggregator) CompleterReward(ctx context.Context, questionnaireID string) (uint64, error) {
	q, err := a.Ledger.GetQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return 0, err
	}
	if q.Policy != ledger.PolicySharedPool {
		return 0, ledger.NewPolicyError(ledger.CodeWrongStatus,
			"questionnaire %s rewards per poll, not from a shared pool", questionnaireID)
	}
	if q.RewardMode == ledger.RewardFixed {
		return q.FixedAmount, nil
	}
	count, err := a.Completions.Count(ctx, questionnaireID)
	if err != nil {
		return 0, err
	}
	return rewards.EqualSplit(q.SharedFunding, count), nil
}
