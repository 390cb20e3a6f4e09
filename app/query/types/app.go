package types

import (
	"context"
	"net/http"
	"time"

	"github.com/vocapoll/vocax/pkg/distribution"
	"github.com/vocapoll/vocax/pkg/eligibility"
	"github.com/vocapoll/vocax/pkg/index"
	"github.com/vocapoll/vocax/pkg/ledger"
	"github.com/vocapoll/vocax/pkg/questionnaire"
	"github.com/vocapoll/vocax/pkg/redis"
	"github.com/vocapoll/vocax/pkg/status"
	"github.com/vocapoll/vocax/pkg/voting"
	"go.uber.org/zap"
)

// App holds the wired engine components behind the participant-facing API.
type App struct {
	Ledger      ledger.Client
	Index       *index.Client
	Prober      *index.Prober
	RedisClient *redis.Client

	Reconciler *status.Reconciler
	Machine    *distribution.Machine
	Limiter    *eligibility.Limiter
	Aggregator *questionnaire.Aggregator
	Caster     *voting.Caster

	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// Start starts the application and blocks until ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.Index != nil {
		if err := a.Index.Close(); err != nil {
			a.Logger.Error("Failed to close index connection", zap.Error(err))
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	_ = a.Server.Shutdown(shutdownCtx)
	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
