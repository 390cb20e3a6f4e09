package controller

import (
	"net/http"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"github.com/vocapoll/vocax/app/creator/types"
	"github.com/vocapoll/vocax/pkg/utils"
)

type Controller struct {
	App       *types.App
	APIToken  string
	AuthUser  string
	Users     map[string]types.User
	AuthHash  []byte
	JWTSecret []byte
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	apiToken := utils.Env("CREATOR_TOKEN", "devtoken")
	authUser := utils.Env("CREATOR_USER", "creator")
	usersJSON := utils.Env("CREATOR_USERS", "")
	authPass := utils.Env("CREATOR_PASSWORD", "creator")
	jwtSecret := []byte(utils.Env("SESSION_SECRET", "change-me-please"))

	phash, _ := utils.HashOrRead(authPass)
	users := map[string]types.User{}
	users[authUser] = types.User{Username: authUser, Hash: phash, Role: "creator"}
	if usersJSON != "" {
		_ = json.Unmarshal([]byte(usersJSON), &users)
	}

	return &Controller{
		App:       app,
		APIToken:  apiToken,
		AuthUser:  authUser,
		Users:     users,
		AuthHash:  phash,
		JWTSecret: jwtSecret,
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

	r.Handle("/api/health", http.HandlerFunc(c.HandleHealth)).Methods(http.MethodGet)

	// Creator console - Login/Logout
	r.HandleFunc("/api/auth/login", c.HandleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", c.HandleLogout).Methods(http.MethodPost)

	// Pool lifecycle actions. Every action carries the creator identity and
	// is refused by the ledger when it doesn't match the poll's creator.
	r.Handle("/api/polls/{id}", c.RequireAuth(http.HandlerFunc(c.HandlePoll))).Methods(http.MethodGet)
	r.Handle("/api/polls/{id}/close", c.RequireAuth(http.HandlerFunc(c.HandleClose))).Methods(http.MethodPost)
	r.Handle("/api/polls/{id}/distribute", c.RequireAuth(http.HandlerFunc(c.HandleDistribute))).Methods(http.MethodPost)
	r.Handle("/api/polls/{id}/withdraw", c.RequireAuth(http.HandlerFunc(c.HandleWithdraw))).Methods(http.MethodPost)

	return r, nil
}
