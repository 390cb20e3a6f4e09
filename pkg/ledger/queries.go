package ledger

import (
	"context"
	"net/http"
)

type participantPollRequest struct {
	Participant string `json:"participant"`
	PollID      string `json:"pollId"`
}

type flagResponse struct {
	Value bool `json:"value"`
}

// HasVoted reports whether the participant has a recorded vote on the poll.
func (c *HTTPClient) HasVoted(ctx context.Context, participant, pollID string) (bool, error) {
	var out flagResponse
	err := c.doJSON(ctx, "has-voted", http.MethodPost, hasVotedPath,
		participantPollRequest{Participant: participant, PollID: pollID}, &out)
	if err != nil {
		return false, err
	}
	return out.Value, nil
}

// HasClaimed reports whether the participant already claimed from the poll's
// reward pool. Claimed status is meaningless for a non-voter; callers should
// only ask after HasVoted returned true.
func (c *HTTPClient) HasClaimed(ctx context.Context, participant, pollID string) (bool, error) {
	var out flagResponse
	err := c.doJSON(ctx, "has-claimed", http.MethodPost, hasClaimedPath,
		participantPollRequest{Participant: participant, PollID: pollID}, &out)
	if err != nil {
		return false, err
	}
	return out.Value, nil
}

type balanceRequest struct {
	Participant string `json:"participant"`
}

// CombinedBalance returns the participant's liquid and staked balances,
// used to derive the daily voting tier.
func (c *HTTPClient) CombinedBalance(ctx context.Context, participant string) (Balance, error) {
	var out Balance
	err := c.doJSON(ctx, "balance", http.MethodPost, balancePath, balanceRequest{Participant: participant}, &out)
	if err != nil {
		return Balance{}, err
	}
	return out, nil
}
