package ledger

import (
	"context"
	"net/http"
)

// Transaction-submitting calls. Each may come back with a *PolicyError (the
// ledger refused: already claimed, wrong status, not the creator, ...) or a
// *TransportError (the outcome is unknown). Neither is retried here; a
// transport failure on a write is surfaced for an explicit user retry.

type castVoteRequest struct {
	Participant string `json:"participant"`
	PollID      string `json:"pollId"`
	Option      uint32 `json:"option"`
}

// CastVote records the participant's vote for an option on the ledger.
func (c *HTTPClient) CastVote(ctx context.Context, participant, pollID string, option uint32) error {
	return c.doJSONWrite(ctx, "cast-vote", http.MethodPost, castVotePath,
		castVoteRequest{Participant: participant, PollID: pollID, Option: option}, nil)
}

type claimRequest struct {
	Participant string `json:"participant"`
	PollID      string `json:"pollId"`
}

type claimResponse struct {
	Amount uint64 `json:"amount"`
}

// Claim pulls the participant's share from a claiming pool and returns the
// paid amount. The ledger itself is the idempotency authority: a concurrent
// duplicate comes back as CodeAlreadyClaimed.
func (c *HTTPClient) Claim(ctx context.Context, participant, pollID string) (uint64, error) {
	var out claimResponse
	err := c.doJSONWrite(ctx, "claim", http.MethodPost, claimPath,
		claimRequest{Participant: participant, PollID: pollID}, &out)
	if err != nil {
		return 0, err
	}
	return out.Amount, nil
}

type creatorPollRequest struct {
	Creator string `json:"creator"`
	PollID  string `json:"pollId"`
}

// Distribute pays every recorded voter their share in one ledger operation.
func (c *HTTPClient) Distribute(ctx context.Context, creator, pollID string) error {
	return c.doJSONWrite(ctx, "distribute", http.MethodPost, distributePath,
		creatorPollRequest{Creator: creator, PollID: pollID}, nil)
}

type closePoolRequest struct {
	Creator string `json:"creator"`
	PollID  string `json:"pollId"`
	Mode    Mode   `json:"mode"`
}

// ClosePool transitions the poll out of ACTIVE and fixes its distribution
// mode. The mode choice is irrevocable.
func (c *HTTPClient) ClosePool(ctx context.Context, creator, pollID string, mode Mode) error {
	return c.doJSONWrite(ctx, "close-pool", http.MethodPost, closePoolPath,
		closePoolRequest{Creator: creator, PollID: pollID, Mode: mode}, nil)
}

type withdrawResponse struct {
	Amount uint64 `json:"amount"`
}

// WithdrawRemainder returns unclaimed or undistributed funds to the creator
// and reports the withdrawn amount.
func (c *HTTPClient) WithdrawRemainder(ctx context.Context, creator, pollID string) (uint64, error) {
	var out withdrawResponse
	err := c.doJSONWrite(ctx, "withdraw-remainder", http.MethodPost, withdrawPath,
		creatorPollRequest{Creator: creator, PollID: pollID}, &out)
	if err != nil {
		return 0, err
	}
	return out.Amount, nil
}
