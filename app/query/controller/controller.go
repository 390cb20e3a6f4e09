package controller

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vocapoll/vocax/app/query/types"
)

type Controller struct {
	App *types.App
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	return &Controller{
		App: app,
	}
}

// WithCORS is a middleware that adds CORS headers to the response.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Development: Echo back the origin to allow credentials with any origin
		// TODO: Restrict this in production to specific domains
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodPost+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods(http.MethodGet)

	// Polls: views and participant actions.
	r.HandleFunc("/v1/polls/{id}", c.HandlePoll).Methods(http.MethodGet)
	r.HandleFunc("/v1/polls/{id}/quote", c.HandleQuote).Methods(http.MethodGet)
	r.HandleFunc("/v1/polls/{id}/votes", c.HandleCastVote).Methods(http.MethodPost)
	r.HandleFunc("/v1/polls/{id}/claims", c.HandleClaim).Methods(http.MethodPost)

	// Participant-scoped reads and batch claims.
	r.HandleFunc("/v1/participants/{participant}/status", c.HandleStatus).Methods(http.MethodPost)
	r.HandleFunc("/v1/participants/{participant}/budget", c.HandleBudget).Methods(http.MethodGet)
	r.HandleFunc("/v1/participants/{participant}/claims", c.HandleClaimAll).Methods(http.MethodPost)

	// Questionnaires.
	r.HandleFunc("/v1/questionnaires/{id}/completion", c.HandleCompletion).Methods(http.MethodGet)
	r.HandleFunc("/v1/questionnaires/{id}/submit", c.HandleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/v1/questionnaires/{id}/completers", c.HandleRegisterCompleter).Methods(http.MethodPost)
	r.HandleFunc("/v1/questionnaires/{id}/reward", c.HandleCompleterReward).Methods(http.MethodGet)

	return r, nil
}
