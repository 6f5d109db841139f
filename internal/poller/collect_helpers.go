package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"marketdata/internal/marketdata"
)

// Capabilities remembers which (venue, operation) combinations are not supported so
// they are never requested again.
type Capabilities struct {
	mu          sync.RWMutex
	unsupported map[string]struct{}
}

func NewCapabilities() *Capabilities {
	return &Capabilities{unsupported: make(map[string]struct{})}
}

func capabilityKey(venue, op string) string { return venue + "/" + op }

// Supported reports whether op has not yet been refused by venue.
func (c *Capabilities) Supported(venue, op string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.unsupported[capabilityKey(venue, op)]
	return !ok
}

// MarkUnsupported records a permanent capability gap.
func (c *Capabilities) MarkUnsupported(venue, op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsupported[capabilityKey(venue, op)] = struct{}{}
}

// Stats counts call outcomes across all cycles.
type Stats struct {
	Cycles        atomic.Int64
	Successes     atomic.Int64
	Unavailable   atomic.Int64
	Failures      atomic.Int64
	NotSupported  atomic.Int64
	TradesStored  atomic.Int64
	TickersStored atomic.Int64

	UserTradesStored atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Cycles        int64 `json:"cycles"`
	Successes     int64 `json:"successes"`
	Unavailable   int64 `json:"unavailable"`
	Failures      int64 `json:"failures"`
	NotSupported  int64 `json:"not_supported"`
	TradesStored  int64 `json:"trades_stored"`
	TickersStored int64 `json:"tickers_stored"`

	UserTradesStored int64 `json:"user_trades_stored"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Cycles:        s.Cycles.Load(),
		Successes:     s.Successes.Load(),
		Unavailable:   s.Unavailable.Load(),
		Failures:      s.Failures.Load(),
		NotSupported:  s.NotSupported.Load(),
		TradesStored:  s.TradesStored.Load(),
		TickersStored: s.TickersStored.Load(),

		UserTradesStored: s.UserTradesStored.Load(),
	}
}

// pollFunc performs one call for a target and handles a successful result.
type pollFunc func(ctx context.Context, svc marketdata.Service, target Target) error

// forEachTarget runs fn for every target concurrently and waits for all of them.
// Targets whose venue refused op before are skipped. It returns the number of targets
// that ended in a hard failure.
func forEachTarget(ctx context.Context, cc CollectorContext, op string, fn pollFunc) int {
	var wg sync.WaitGroup
	failures := make(chan error, len(cc.Targets))

	for _, t := range cc.Targets {
		if !cc.Capabilities.Supported(t.Venue, op) {
			continue
		}
		svc, ok := cc.Registry.Get(t.Venue)
		if !ok {
			cc.Logger.Error("No service registered for venue", zap.String("venue", t.Venue))
			continue
		}

		wg.Add(1)
		go func(target Target) {
			defer wg.Done()
			err := fn(ctx, svc, target)
			if handleOutcome(cc, target, op, err) {
				failures <- err
			}
		}(t)
	}

	// Wait for all goroutines to finish, then close the channel
	go func() {
		wg.Wait()
		close(failures)
	}()

	count := 0
	for range failures {
		count++
	}
	return count
}

// handleOutcome logs and counts the three outcomes of a call and reports whether it was
// a hard failure. A NotSupported error is remembered so the call is not repeated.
func handleOutcome(cc CollectorContext, target Target, op string, err error) bool {
	l := cc.Logger.With(zap.String("venue", target.Venue), zap.String("pair", target.Pair.String()), zap.String("operation", op))

	switch {
	case err == nil:
		cc.Stats.Successes.Add(1)
	case marketdata.Outcome(err) == marketdata.ResultUnavailable:
		cc.Stats.Unavailable.Add(1)
		l.Warn("Venue unavailable, skipping this cycle", zap.Error(err))
	case errors.Is(err, marketdata.ErrNotSupported):
		cc.Stats.NotSupported.Add(1)
		cc.Capabilities.MarkUnsupported(target.Venue, op)
		l.Info("Operation not supported by venue, disabling it", zap.Error(err))
	default:
		cc.Stats.Failures.Add(1)
		l.Error("Polling failed", zap.Bool("retryable", marketdata.IsRetryable(err)), zap.Error(err))
		return true
	}
	return false
}

func cycleError(collector string, failed int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%s: %d target(s) failed", collector, failed)
}
