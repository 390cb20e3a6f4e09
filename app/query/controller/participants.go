package controller

import (
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"github.com/vocapoll/vocax/pkg/eligibility"
	"github.com/vocapoll/vocax/pkg/status"
)

// parseDay reads the optional "day" query parameter. Callers that settle
// cross-timezone disputes pass the day explicitly; everyone else gets the
// current UTC day.
func parseDay(r *http.Request) (eligibility.Day, bool) {
	raw := r.URL.Query().Get("day")
	if raw == "" {
		return eligibility.DayFromTime(time.Now()), true
	}
	day := eligibility.Day(raw)
	return day, day.Valid()
}

// HandleStatus resolves voted/claimed flags for a batch of polls through the
// index-or-direct reconciler. Polls the resolver could not settle come back
// under "unknown" rather than defaulting to false.
func (c *Controller) HandleStatus(w http.ResponseWriter, r *http.Request) {
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

	res, err := c.App.Reconciler.Resolve(r.Context(), participant, in.PollIDs)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	unknown := make(map[string]string, len(res.Unknown))
	for id, uerr := range res.Unknown {
		unknown[id] = uerr.Error()
	}

	writeJSON(w, http.StatusOK, struct {
		Statuses map[string]status.PollStatus `json:"statuses"`
		Unknown  map[string]string            `json:"unknown,omitempty"`
	}{Statuses: res.Statuses, Unknown: unknown})
}

// HandleBudget returns the participant's remaining vote allowance for a day
// without consuming any of it.
func (c *Controller) HandleBudget(w http.ResponseWriter, r *http.Request) {
	participant := mux.Vars(r)["participant"]
	if participant == "" {
		writeError(w, http.StatusBadRequest, "missing participant")
		return
	}

	day, ok := parseDay(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid day parameter")
		return
	}

	decision, err := c.App.Limiter.CanVote(r.Context(), participant, day)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Day eligibility.Day `json:"day"`
		eligibility.Decision
	}{Day: day, Decision: decision})
}
