package questionnaire

import (
	"context"

	"github.com/vocapoll/vocax/pkg/eligibility"
	"github.com/vocapoll/vocax/pkg/ledger"
	"github.com/vocapoll/vocax/pkg/voting"
)

// VoteOutcome is the per-poll result of a bulk submission. Already-answered
// polls are skipped, so a partially failed batch can simply be resubmitted.
type VoteOutcome struct {
	PollID  string `json:"pollId"`
	Voted   bool   `json:"voted"`
	Skipped bool   `json:"skipped,omitempty"`
	Err     error  `json:"-"`
}

// SubmitAll casts the participant's answers across a questionnaire's member
// polls, sequentially and with no cross-item atomicity. Each vote passes the
// daily budget gate individually; the first budget refusal stops the batch
// (later votes would be refused identically today), while per-poll ledger
// errors are recorded and the batch continues.
func (a *Aggregator) SubmitAll(ctx context.Context, caster *voting.Caster, participant, questionnaireID string, answers map[string]uint32, day eligibility.Day) ([]VoteOutcome, error) {
	q, err := a.Ledger.GetQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	if q.Status != ledger.QuestionnaireActive {
		return nil, ledger.NewPolicyError(ledger.CodeWrongStatus,
			"questionnaire %s is %s, votes are only accepted while ACTIVE", questionnaireID, q.Status)
	}

	res, err := a.Resolver.Resolve(ctx, participant, q.PollIDs)
	if err != nil {
		return nil, err
	}

	outcomes := make([]VoteOutcome, 0, len(q.PollIDs))
	for _, pollID := range q.PollIDs {
		if err, unknown := res.Unknown[pollID]; unknown {
			// Unknown status must not be coerced: without knowing whether a
			// vote exists, submitting could double-vote.
			outcomes = append(outcomes, VoteOutcome{PollID: pollID, Err: ledger.NewPolicyError(
				ledger.CodeUnknownPoll, "status of poll %s is unknown: %v", pollID, err)})
			continue
		}
		if res.Statuses[pollID].Voted {
			outcomes = append(outcomes, VoteOutcome{PollID: pollID, Skipped: true})
			continue
		}
		option, answered := answers[pollID]
		if !answered {
			outcomes = append(outcomes, VoteOutcome{PollID: pollID, Skipped: true})
			continue
		}

		_, castErr := caster.Cast(ctx, participant, pollID, option, day)
		switch {
		case castErr == nil:
			outcomes = append(outcomes, VoteOutcome{PollID: pollID, Voted: true})
		case ledger.IsPolicyCode(castErr, ledger.CodeDailyLimitExceeded):
			outcomes = append(outcomes, VoteOutcome{PollID: pollID, Err: castErr})
			return outcomes, castErr
		default:
			outcomes = append(outcomes, VoteOutcome{PollID: pollID, Err: castErr})
		}
	}
	return outcomes, nil
}
