package controller

import (
	"net/http"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"github.com/vocapoll/vocax/pkg/ledger"
	"go.uber.org/zap"
)

// HandlePoll returns the poll as the ledger reports it.
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

// HandleClose closes the poll's reward pool. The distribution mode chosen
// here is irrevocable: there is no reopen and no mode change afterwards.
func (c *Controller) HandleClose(w http.ResponseWriter, r *http.Request) {
	pollID := mux.Vars(r)["id"]
	if pollID == "" {
		writeError(w, http.StatusBadRequest, "missing poll id")
		return
	}

	var in struct {
		Creator string `json:"creator"`
		Mode    string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if in.Creator == "" {
		writeError(w, http.StatusBadRequest, "missing creator")
		return
	}

	mode := ledger.Mode(in.Mode)
	if mode != ledger.ModeManualPull && mode != ledger.ModeManualPush {
		writeError(w, http.StatusBadRequest, "mode must be MANUAL_PULL or MANUAL_PUSH")
		return
	}

	if err := c.App.Machine.Close(r.Context(), in.Creator, pollID, mode); err != nil {
		writeLedgerError(w, err)
		return
	}

	c.App.Logger.Info("Pool closed",
		zap.String("poll", pollID),
		zap.String("mode", string(mode)),
		zap.String("user", c.currentUser(r)))

	writeJSON(w, http.StatusOK, map[string]string{"status": "closed", "mode": string(mode)})
}

// HandleDistribute pushes every voter's share out of a push-mode pool. Not
// retried automatically on transport failure: the caller must re-check pool
// state first, because a timed-out push may have landed.
func (c *Controller) HandleDistribute(w http.ResponseWriter, r *http.Request) {
	pollID := mux.Vars(r)["id"]
	if pollID == "" {
		writeError(w, http.StatusBadRequest, "missing poll id")
		return
	}

	var in struct {
		Creator string `json:"creator"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Creator == "" {
		writeError(w, http.StatusBadRequest, "missing creator")
		return
	}

	if err := c.App.Machine.Distribute(r.Context(), in.Creator, pollID); err != nil {
		writeLedgerError(w, err)
		return
	}

	c.App.Logger.Info("Pool distributed",
		zap.String("poll", pollID),
		zap.String("user", c.currentUser(r)))

	writeJSON(w, http.StatusOK, map[string]string{"status": "distributed"})
}

// HandleWithdraw returns the undistributed remainder to the creator.
func (c *Controller) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	pollID := mux.Vars(r)["id"]
	if pollID == "" {
		writeError(w, http.StatusBadRequest, "missing poll id")
		return
	}

	var in struct {
		Creator string `json:"creator"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Creator == "" {
		writeError(w, http.StatusBadRequest, "missing creator")
		return
	}

	amount, err := c.App.Machine.WithdrawRemainder(r.Context(), in.Creator, pollID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	c.App.Logger.Info("Remainder withdrawn",
		zap.String("poll", pollID),
		zap.Uint64("amount", amount),
		zap.String("user", c.currentUser(r)))

	writeJSON(w, http.StatusOK, map[string]uint64{"amount": amount})
}
