package engine

import (
	"context"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialRetryBackoff = time.Second
	maxRetryBackoff     = 5 * time.Minute
)

// Run loads the source until it succeeds, then reloads it every reload
// interval. Failed reloads retry with exponential backoff while the previous
// snapshot keeps serving. Run returns when ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("reload loop started", "source", e.source.String(), "interval", e.interval)

	if e.current.Load() == nil && !e.loadUntilSuccess(ctx) {
		e.logger.Info("reload loop stopping", "reason", ctx.Err())
		return nil
	}

	if e.interval <= 0 {
		<-ctx.Done()
		e.logger.Info("reload loop stopping", "reason", ctx.Err())
		return nil
	}

	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("reload loop stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if !e.loadUntilSuccess(ctx) {
				e.logger.Info("reload loop stopping", "reason", ctx.Err())
				return nil
			}
		}
	}
}

// loadUntilSuccess returns false if ctx was cancelled first.
func (e *Engine) loadUntilSuccess(ctx context.Context) bool {
	backoff := initialRetryBackoff
	for {
		if _, err := e.Load(ctx); err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		e.logger.Warn("reload scheduled after failure", "backoff", backoff)
		if !e.sleepWithContext(ctx, backoff) {
			return false
		}
		backoff = retry.NextBackoff(backoff, maxRetryBackoff)
	}
}

func (e *Engine) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := e.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
