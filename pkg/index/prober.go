package index

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vocapoll/vocax/pkg/utils"
	"go.uber.org/zap"
)

// Prober tracks whether the batched index can currently serve queries. The
// INDEX_ENABLED flag gates it entirely; beyond the flag, a scheduled ping
// keeps the availability bit fresh so callers never probe on the hot path.
type Prober struct {
	client  *Client
	logger  *zap.Logger
	cron    *cron.Cron
	enabled bool
	healthy atomic.Bool
}

// NewProber builds a prober over the index client. A nil client (index not
// configured) is a permanently unavailable prober.
func NewProber(client *Client, logger *zap.Logger) *Prober {
	return &Prober{
		client:  client,
		logger:  logger,
		enabled: client != nil && utils.Env("INDEX_ENABLED", "true") == "true",
	}
}

// Start probes once immediately and then on a schedule (INDEX_PROBE_SPEC,
// default every 15 seconds) until ctx is done.
func (p *Prober) Start(ctx context.Context) error {
	if !p.enabled {
		p.logger.Info("Status index disabled, all status reads use the direct path")
		return nil
	}

	p.probe(ctx)

	p.cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	spec := utils.Env("INDEX_PROBE_SPEC", "@every 15s")
	if _, err := p.cron.AddFunc(spec, func() { p.probe(ctx) }); err != nil {
		return err
	}
	p.cron.Start()

	go func() {
		<-ctx.Done()
		p.cron.Stop()
	}()
	return nil
}

func (p *Prober) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.client.Ping(pingCtx)
	was := p.healthy.Swap(err == nil)
	if err != nil && was {
		p.logger.Warn("Status index became unavailable", zap.Error(err))
	} else if err == nil && !was {
		p.logger.Info("Status index available")
	}
}

// Available reports whether the indexed path may be used right now.
func (p *Prober) Available() bool {
	return p.enabled && p.healthy.Load()
}
