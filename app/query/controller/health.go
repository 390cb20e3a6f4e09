package controller

import (
	"net/http"
)

// HandleHealth reports the reachability of each backing service. The engine
// stays up when the index or Redis is down (degraded modes exist for both),
// so a failed dependency is reported, not fatal.
func (c *Controller) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	out := map[string]string{"status": "ok"}

	if c.App.Index != nil {
		if err := c.App.Index.Ping(ctx); err != nil {
			out["index"] = err.Error()
		} else {
			out["index"] = "ok"
		}
	} else {
		out["index"] = "disabled"
	}

	if c.App.RedisClient != nil {
		if err := c.App.RedisClient.Ping(ctx); err != nil {
			out["redis"] = err.Error()
		} else {
			out["redis"] = "ok"
		}
	} else {
		out["redis"] = "disabled"
	}

	writeJSON(w, http.StatusOK, out)
}
