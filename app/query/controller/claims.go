package controller

import (
	"net/http"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"github.com/vocapoll/vocax/pkg/distribution"
)

// HandleClaim pays out the caller's share from a single closed pull-mode pool.
func (c *Controller) HandleClaim(w http.ResponseWriter, r *http.Request) {
	pollID := mux.Vars(r)["id"]
	if pollID == "" {
		writeError(w, http.StatusBadRequest, "missing poll id")
		return
	}

	var in struct {
		Participant string `json:"participant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Participant == "" {
		writeError(w, http.StatusBadRequest, "missing participant")
		return
	}

	amount, err := c.App.Machine.Claim(r.Context(), in.Participant, pollID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]uint64{"amount": amount})
}

// HandleClaimAll runs a best-effort claim over a list of polls. Each item
// settles independently; the response carries per-poll outcomes so the
// client can re-submit only the failed ones.
func (c *Controller) HandleClaimAll(w http.ResponseWriter, r *http.Request) {
	participant := mux.Vars(r)["participant"]
	if participant == "" {
		writeError(w, http.StatusBadRequest, "missing participant")
		return
	}

	var in struct {
		PollIDs []string `json:"pollIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if len(in.PollIDs) == 0 {
		writeError(w, http.StatusBadRequest, "missing poll ids")
		return
	}

	outcomes := c.App.Machine.ClaimAll(r.Context(), participant, in.PollIDs)

	type outcomeView struct {
		distribution.ClaimOutcome
		Error string `json:"error,omitempty"`
	}
	views := make([]outcomeView, 0, len(outcomes))
	for _, o := range outcomes {
		v := outcomeView{ClaimOutcome: o}
		if o.Err != nil {
			v.Error = o.Err.Error()
		}
		views = append(views, v)
	}

	writeJSON(w, http.StatusOK, views)
}
