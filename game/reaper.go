package game

import (
	"log/slog"
	"time"
)

// Reaper removes rooms once their age exceeds ttl, on a fixed sweep interval.
// Reclamation is purely age-based: player activity does not extend a room's
// life.
type Reaper struct {
	registry *Registry
	ttl      time.Duration
	interval time.Duration
	tickers  PeriodicTickerChannelCreator
	stop     chan struct{}
}

func NewReaper(registry *Registry, ttl, interval time.Duration, tickers PeriodicTickerChannelCreator) *Reaper {
	return &Reaper{
		registry: registry,
		ttl:      ttl,
		interval: interval,
		tickers:  tickers,
		stop:     make(chan struct{}),
	}
}

func (r *Reaper) Run(started chan struct{}) {
	ticks := r.tickers.Create(r.interval)
	close(started)

	for {
		select {
		case now := <-ticks:
			r.sweep(now)
		case <-r.stop:
			return
		}
	}
}

func (r *Reaper) Stop() {
	close(r.stop)
}

func (r *Reaper) sweep(now time.Time) {
	for _, code := range r.registry.expiredCodes(now, r.ttl) {
		slog.Info("reaping expired room", "room", code)
		r.registry.RemoveRoom(code)
	}
}
