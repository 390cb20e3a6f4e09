package controller

import (
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"github.com/vocapoll/vocax/pkg/eligibility"
)

// HandleCastVote spends one unit of the participant's daily budget and casts
// the vote on the ledger. A ledger refusal never consumes budget. The budget
// day is always the platform's current UTC day: accepting a caller-chosen
// day here would let an exhausted participant borrow tomorrow's budget.
func (c *Controller) HandleCastVote(w http.ResponseWriter, r *http.Request) {
	pollID := mux.Vars(r)["id"]
	if pollID == "" {
		writeError(w, http.StatusBadRequest, "missing poll id")
		return
	}

	var in struct {
		Participant string `json:"participant"`
		Option      uint32 `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if in.Participant == "" {
		writeError(w, http.StatusBadRequest, "missing participant")
		return
	}

	day := eligibility.DayFromTime(time.Now())

	budget, err := c.App.Caster.Cast(r.Context(), in.Participant, pollID, in.Option, day)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, budget)
}
