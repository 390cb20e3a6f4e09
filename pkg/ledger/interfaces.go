package ledger

import "context"

// Client captures every ledger call the incentive engine performs. Reads are
// safe to retry; mutating calls (CastVote, Claim, Distribute, ClosePool,
// WithdrawRemainder) must never be retried automatically, because a timed-out
// write may have landed on the ledger anyway.
type Client interface {
	GetPoll(ctx context.Context, pollID string) (*Poll, error)
	GetQuestionnaire(ctx context.Context, questionnaireID string) (*Questionnaire, error)
	HasVoted(ctx context.Context, participant, pollID string) (bool, error)
	HasClaimed(ctx context.Context, participant, pollID string) (bool, error)
	CombinedBalance(ctx context.Context, participant string) (Balance, error)

	CastVote(ctx context.Context, participant, pollID string, option uint32) error
	Claim(ctx context.Context, participant, pollID string) (uint64, error)
	Distribute(ctx context.Context, creator, pollID string) error
	ClosePool(ctx context.Context, creator, pollID string, mode Mode) error
	WithdrawRemainder(ctx context.Context, creator, pollID string) (uint64, error)
}

// Balance is a participant's liquid and staked holdings in the funding token.
type Balance struct {
	Liquid uint64 `json:"liquid"`
	Staked uint64 `json:"staked"`
}

// Combined is the balance used for tier derivation.
func (b Balance) Combined() uint64 { return b.Liquid + b.Staked }

// Factory produces ledger clients for a given set of gateway endpoints.
type Factory interface {
	NewClient(endpoints []string) Client
}

type httpFactory struct {
	opts Opts
}

// NewHTTPFactory returns a factory that builds HTTP clients with shared defaults.
func NewHTTPFactory(opts Opts) Factory {
	return &httpFactory{opts: opts}
}

func (f *httpFactory) NewClient(endpoints []string) Client {
	o := f.opts
	o.Endpoints = endpoints
	return NewHTTPWithOpts(o)
}
