package creator

import (
	"context"
	"strings"
	"time"

	"github.com/vocapoll/vocax/app/creator/types"
	"github.com/vocapoll/vocax/pkg/distribution"
	"github.com/vocapoll/vocax/pkg/ledger"
	"github.com/vocapoll/vocax/pkg/logging"
	"github.com/vocapoll/vocax/pkg/utils"
)

// Initialize initializes the application.
func Initialize(_ context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	endpoints := strings.Split(utils.Env("LEDGER_ENDPOINTS", "http://localhost:50002"), ",")
	ledgerClient := ledger.NewHTTPFactory(ledger.Opts{
		RPS:     utils.EnvInt("LEDGER_RPS", 20),
		Burst:   utils.EnvInt("LEDGER_BURST", 40),
		Timeout: utils.EnvDuration("LEDGER_TIMEOUT", 15*time.Second),
	}).NewClient(endpoints)

	return &types.App{
		Ledger:  ledgerClient,
		Machine: distribution.New(ledgerClient, logger),
		Logger:  logger,
	}
}
