package controller

import (
	"errors"
	"net/http"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/vocapoll/vocax/pkg/ledger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeLedgerError maps engine errors onto HTTP. Policy refusals keep their
// code in the body so clients can branch on it; transport failures surface
// as 502 because the refusal-or-not question is still open.
func writeLedgerError(w http.ResponseWriter, err error) {
	var pe *ledger.PolicyError
	if errors.As(err, &pe) {
		writeJSON(w, policyStatus(pe.Code), map[string]string{
			"code":  pe.Code,
			"error": pe.Message,
		})
		return
	}
	if ledger.IsTransport(err) {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func policyStatus(code string) int {
	switch code {
	case ledger.CodeUnknownPoll:
		return http.StatusNotFound
	case ledger.CodeNotVoter, ledger.CodeNotCreator:
		return http.StatusForbidden
	case ledger.CodeDailyLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusConflict
	}
}
