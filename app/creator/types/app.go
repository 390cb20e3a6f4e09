package types

import (
	"context"
	"net/http"
	"time"

	"github.com/vocapoll/vocax/pkg/distribution"
	"github.com/vocapoll/vocax/pkg/ledger"
	"go.uber.org/zap"
)

// User is a creator console account. The password hash is bcrypt.
type User struct {
	Username string `json:"username"`
	Hash     []byte `json:"hash"`
	Role     string `json:"role"`
}

// App holds the components behind the creator console: pool lifecycle
// actions that only the poll's creator may perform.
type App struct {
	Ledger  ledger.Client
	Machine *distribution.Machine

	// Zap Logger
	Logger *zap.Logger

	// HTTP Server
	Server *http.Server
}

// Start starts the application and blocks until ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	a.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = a.Server.Shutdown(shutdownCtx)

	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
