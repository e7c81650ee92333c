package service

import (
	"context"
	"log/slog"
	"time"
)

// RequestExpirer periodically drops requested transactions older than a TTL.
type RequestExpirer struct {
	ledger   *Ledger
	ttl      time.Duration
	interval time.Duration
}

// NewRequestExpirer creates an expirer. A zero ttl disables it.
func NewRequestExpirer(ledger *Ledger, ttl, interval time.Duration) *RequestExpirer {
	return &RequestExpirer{ledger: ledger, ttl: ttl, interval: interval}
}

// Run sweeps once immediately and then every interval until ctx is done.
// Sweep failures are logged and retried on the next tick.
func (e *RequestExpirer) Run(ctx context.Context) error {
	if e.ttl <= 0 || e.interval <= 0 {
		slog.Info("Request expiry disabled")
		return nil
	}
	slog.Info("Request expiry started", "ttl", e.ttl, "interval", e.interval)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		e.sweep(ctx)
		select {
		case <-ctx.Done():
			slog.Info("Request expiry stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (e *RequestExpirer) sweep(ctx context.Context) {
	n, err := e.ledger.ExpireRequests(ctx, e.ttl)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("Request expiry failed", "error", err)
		}
		return
	}
	if n > 0 {
		slog.Info("Expired requests removed", "count", n)
	}
}
