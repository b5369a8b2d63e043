// Package reaper periodically evicts idle games from the Registry.
package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/kazip/minesweeper-server/internal/registry"
)

// Reaper owns the periodic idle-game sweep.
type Reaper struct {
	registry           *registry.Registry
	interval           time.Duration
	thresholdConnected time.Duration
	thresholdEmpty     time.Duration
	log                *slog.Logger
}

// New constructs a Reaper that sweeps registry every interval, evicting
// games idle past thresholdConnected (subscribers attached) or
// thresholdEmpty (no subscribers attached).
func New(reg *registry.Registry, interval, thresholdConnected, thresholdEmpty time.Duration, log *slog.Logger) *Reaper {
	return &Reaper{
		registry:           reg,
		interval:           interval,
		thresholdConnected: thresholdConnected,
		thresholdEmpty:     thresholdEmpty,
		log:                log,
	}
}

// Run blocks, sweeping on every tick until ctx is canceled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("reaper started", "interval", r.interval, "threshold_connected", r.thresholdConnected, "threshold_empty", r.thresholdEmpty)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep runs one pass: identify idle games, then remove them. Splitting
// identification from removal keeps the per-game critical section (taking
// the Game's own lock via IsIdle) short and avoids holding any lock across
// the registry mutation.
func (r *Reaper) sweep() {
	now := time.Now()
	var evicted []string

	for _, id := range r.registry.Ids() {
		g, ok := r.registry.Get(id)
		if !ok {
			continue
		}
		if g.IsIdle(now, r.thresholdConnected, r.thresholdEmpty) {
			evicted = append(evicted, id)
		}
	}

	for _, id := range evicted {
		g, ok := r.registry.Get(id)
		if !ok {
			continue
		}
		r.registry.Remove(id)
		g.CloseAll()
		r.log.Debug("evicted idle game", "id", id)
	}

	if len(evicted) > 0 {
		r.log.Info("cleanup swept idle games", "count", len(evicted))
	}
}
