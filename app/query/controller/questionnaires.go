package controller

import (
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"github.com/vocapoll/vocax/pkg/eligibility"
	"github.com/vocapoll/vocax/pkg/questionnaire"
)

// HandleCompletion returns how far a participant is through a questionnaire's
// member polls, with per-poll voted/claimed detail.
func (c *Controller) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	qid := mux.Vars(r)["id"]
	participant := r.URL.Query().Get("participant")
	if qid == "" || participant == "" {
		writeError(w, http.StatusBadRequest, "missing questionnaire id or participant")
		return
	}

	completion, err := c.App.Aggregator.Completion(r.Context(), participant, qid)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, completion)
}

// HandleSubmit casts a batch of answers across a questionnaire's member polls.
// The batch is best-effort: per-poll outcomes come back individually and a
// re-submission of the same answers resumes where the last one stopped.
func (c *Controller) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	qid := mux.Vars(r)["id"]
	if qid == "" {
		writeError(w, http.StatusBadRequest, "missing questionnaire id")
		return
	}

	var in struct {
		Participant string            `json:"participant"`
		Answers     map[string]uint32 `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if in.Participant == "" || len(in.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "missing participant or answers")
		return
	}

	// Mutating submissions always run against the platform's current UTC
	// day; a caller-chosen day would sidestep the daily budget.
	day := eligibility.DayFromTime(time.Now())

	outcomes, err := c.App.Aggregator.SubmitAll(r.Context(), c.App.Caster, in.Participant, qid, in.Answers, day)
	if err != nil && len(outcomes) == 0 {
		writeLedgerError(w, err)
		return
	}
	// A daily-limit stop still carries the outcomes recorded so far; the
	// client resubmits tomorrow and the voted polls are skipped.

	type outcomeView struct {
		questionnaire.VoteOutcome
		Error string `json:"error,omitempty"`
	}
	views := make([]outcomeView, 0, len(outcomes))
	for _, o := range outcomes {
		v := outcomeView{VoteOutcome: o}
		if o.Err != nil {
			v.Error = o.Err.Error()
		}
		views = append(views, v)
	}

	writeJSON(w, http.StatusOK, views)
}

// HandleRegisterCompleter records the participant in the questionnaire's
// capped completer set. A full cap is a normal outcome, not an error.
func (c *Controller) HandleRegisterCompleter(w http.ResponseWriter, r *http.Request) {
	qid := mux.Vars(r)["id"]
	if qid == "" {
		writeError(w, http.StatusBadRequest, "missing questionnaire id")
		return
	}

	var in struct {
		Participant string `json:"participant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Participant == "" {
		writeError(w, http.StatusBadRequest, "missing participant")
		return
	}

	registered, err := c.App.Aggregator.RegisterCompleter(r.Context(), in.Participant, qid)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"registered": registered})
}

// HandleCompleterReward returns the per-completer payout at this moment.
func (c *Controller) HandleCompleterReward(w http.ResponseWriter, r *http.Request) {
	qid := mux.Vars(r)["id"]
	if qid == "" {
		writeError(w, http.StatusBadRequest, "missing questionnaire id")
		return
	}

	reward, err := c.App.Aggregator.CompleterReward(r.Context(), qid)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]uint64{"reward": reward})
}
