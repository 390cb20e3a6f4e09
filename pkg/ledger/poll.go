package ledger

import (
	"context"
	"net/http"
)

type pollRequest struct {
	PollID string `json:"pollId"`
}

type questionnaireRequest struct {
	QuestionnaireID string `json:"questionnaireId"`
}

// GetPoll fetches the current poll record from the ledger. Callers that are
// about to decide a state transition must call this immediately before the
// decision; a cached poll must never authorize a transition.
func (c *HTTPClient) GetPoll(ctx context.Context, pollID string) (*Poll, error) {
	var poll Poll
	if err := c.doJSON(ctx, "get-poll", http.MethodPost, pollPath, pollRequest{PollID: pollID}, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

// GetQuestionnaire fetches the current questionnaire record from the ledger.
func (c *HTTPClient) GetQuestionnaire(ctx context.Context, questionnaireID string) (*Questionnaire, error) {
	var q Questionnaire
	if err := c.doJSON(ctx, "get-questionnaire", http.MethodPost, questionnairePath, questionnaireRequest{QuestionnaireID: questionnaireID}, &q); err != nil {
		return nil, err
	}
	return &q, nil
}
