package ledger

import (
	"errors"
	"fmt"
)

// Ledger error codes returned inside 4xx response bodies. These identify
// policy violations: the request was understood and authoritatively refused.
// Retrying an identical request can never succeed.
const (
	CodeAlreadyClaimed     = "already_claimed"
	CodeAlreadyDistributed = "already_distributed"
	CodeNotVoter           = "not_voter"
	CodeNotCreator         = "not_creator"
	CodeWrongStatus        = "wrong_status"
	CodePoolEmpty          = "pool_empty"
	CodeVoterCapReached    = "voter_cap_reached"
	CodeDuplicateVote      = "duplicate_vote"
	CodeUnknownPoll        = "unknown_poll"
	CodeDailyLimitExceeded = "daily_limit_exceeded"
	CodeNotComplete        = "questionnaire_incomplete"
	CodeCompletersCapped   = "completers_capped"
)

// PolicyError is an authoritative refusal from the ledger or from local
// state-machine checks. It is surfaced verbatim to the caller and never
// retried automatically.
type PolicyError struct {
	Code    string
	Message string
}

func (e *PolicyError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("policy violation: %s", e.Code)
	}
	return fmt.Sprintf("policy violation: %s: %s", e.Code, e.Message)
}

// NewPolicyError builds a PolicyError with a formatted message.
func NewPolicyError(code, format string, args ...any) *PolicyError {
	return &PolicyError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// TransportError wraps a network, timeout, or server-side failure. Reads may
// be retried; mutating operations are left to explicit user-initiated retry.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsPolicy reports whether err is (or wraps) a policy violation.
func IsPolicy(err error) bool {
	var pe *PolicyError
	return errors.As(err, &pe)
}

// IsPolicyCode reports whether err is a policy violation with the given code.
func IsPolicyCode(err error, code string) bool {
	var pe *PolicyError
	return errors.As(err, &pe) && pe.Code == code
}

// IsTransport reports whether err is (or wraps) a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
