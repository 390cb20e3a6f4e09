package query

import (
	"context"
	"strings"
	"time"

	"github.com/vocapoll/vocax/app/query/types"
	"github.com/vocapoll/vocax/pkg/distribution"
	"github.com/vocapoll/vocax/pkg/eligibility"
	"github.com/vocapoll/vocax/pkg/index"
	"github.com/vocapoll/vocax/pkg/ledger"
	"github.com/vocapoll/vocax/pkg/logging"
	"github.com/vocapoll/vocax/pkg/questionnaire"
	"github.com/vocapoll/vocax/pkg/redis"
	"github.com/vocapoll/vocax/pkg/status"
	"github.com/vocapoll/vocax/pkg/utils"
	"github.com/vocapoll/vocax/pkg/voting"
	"go.uber.org/zap"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
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

	// ClickHouse status index is optional: without it every status read
	// takes the direct ledger path.
	var indexClient *index.Client
	if utils.Env("INDEX_ENABLED", "true") == "true" {
		indexClient, err = index.New(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize status index - all status reads will use the direct path",
				zap.Error(err))
			indexClient = nil
		} else if err := indexClient.InitUserPollStatus(ctx); err != nil {
			logger.Fatal("Unable to initialize status index schema", zap.Error(err))
		}
	} else {
		logger.Info("Status index disabled - all status reads will use the direct path")
	}

	prober := index.NewProber(indexClient, logger)
	if err := prober.Start(ctx); err != nil {
		logger.Fatal("Unable to start index prober", zap.Error(err))
	}

	// Redis backs budget/streak and completer bookkeeping; without it the
	// in-memory stores serve a single node.
	var redisClient *redis.Client
	var budgets eligibility.BudgetStore
	var completions questionnaire.CompletionStore
	if utils.Env("REDIS_ENABLED", "true") == "true" {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Fatal("Unable to initialize Redis for budget bookkeeping", zap.Error(err))
		}
		budgets = eligibility.NewRedisBudgetStore(redisClient)
		completions = questionnaire.NewRedisCompletionStore(redisClient)
	} else {
		logger.Warn("Redis disabled - budgets and completer registration are process-local")
		budgets = eligibility.NewMemoryBudgetStore()
		completions = questionnaire.NewMemoryCompletionStore()
	}

	direct := status.NewDirectResolver(ledgerClient, logger, utils.EnvInt("STATUS_WORKERS", 8))
	var indexed status.Resolver
	if indexClient != nil {
		indexed = status.NewIndexedResolver(indexClient)
	}
	reconciler := status.NewReconciler(direct, indexed, prober.Available, logger)

	limiter := eligibility.NewLimiter(budgets, ledgerClient, logger)
	aggregator := questionnaire.NewAggregator(ledgerClient, reconciler, completions, logger)

	caster := voting.NewCaster(limiter, ledgerClient, logger)
	if indexClient != nil {
		caster.Index = indexClient
	}

	return &types.App{
		Ledger:      ledgerClient,
		Index:       indexClient,
		Prober:      prober,
		RedisClient: redisClient,
		Reconciler:  reconciler,
		Machine:     distribution.New(ledgerClient, logger),
		Limiter:     limiter,
		Aggregator:  aggregator,
		Caster:      caster,
		Logger:      logger,
	}
}
