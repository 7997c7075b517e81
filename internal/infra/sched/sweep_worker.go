package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"subscription-cancellation/internal/infra/metrics"
	"subscription-cancellation/internal/infra/security"
)

// SweepWorker periodically evicts expired entries from an in-memory security
// store. Redis-backed stores expire keys natively and never get a worker.
type SweepWorker struct {
	name     string
	interval time.Duration
	store    security.Sweeper
	log      *zerolog.Logger
}

func NewSweepWorker(name string, interval time.Duration, store security.Sweeper, logger *zerolog.Logger) *SweepWorker {
	compLog := logger.With().Str("component", "SweepWorker").Str("store", name).Logger()
	return &SweepWorker{
		name:     name,
		interval: interval,
		store:    store,
		log:      &compLog,
	}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting sweep worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping sweep worker")
			return ctx.Err()
		case <-ticker.C:
			n := w.store.Sweep(time.Now())
			if n > 0 {
				metrics.AddSweepRemoved(w.name, n)
				w.log.Debug().Int("removed", n).Msg("expired entries swept")
			}
		}
	}
}
