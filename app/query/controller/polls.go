package controller

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandlePoll returns the poll as the authoritative ledger reports it.
func (c *Controller) HandlePoll(w http.ResponseWriter, r *http.Request) {
	pollID := mux.Vars(r)["id"]
	if pollID == "" {
		writeError(w, http.StatusBadRequest, "missing poll id")
		return
	}

	poll, err := c.App.Ledger.GetPoll(r.Context(), pollID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, poll)
}

// HandleQuote returns the per-voter share a claimant would receive right now.
// The share is informational until the pool closes; afterwards it is the
// amount Claim pays out.
func (c *Controller) HandleQuote(w http.ResponseWriter, r *http.Request) {
	pollID := mux.Vars(r)["id"]
	if pollID == "" {
		writeError(w, http.StatusBadRequest, "missing poll id")
		return
	}

	quote, err := c.App.Machine.QuoteFor(r.Context(), pollID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}
