package poller

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"marketdata/internal/marketdata"
	"marketdata/internal/models"
)

// tradeCursor is what the collector remembers about one target between cycles.
type tradeCursor struct {
	lastID string
	seen   map[string]struct{}
}

// TradesCollector polls public trades and forwards only those not seen in the previous
// batch of the same target.
type TradesCollector struct {
	mu      sync.Mutex
	cursors map[string]*tradeCursor
}

func NewTradesCollector() *TradesCollector {
	return &TradesCollector{cursors: make(map[string]*tradeCursor)}
}

func (c *TradesCollector) Name() string { return "trades" }

// Initialize seeds the cursors from the most recently stored trades, so a restart does not
// republish what the previous run already handled.
func (c *TradesCollector) Initialize(ctx context.Context, cc CollectorContext) error {
	for _, target := range cc.Targets {
		stored, err := cc.Store.ListTrades(ctx, target.Venue, target.Pair, cc.TradesLimit)
		if err != nil {
			return fmt.Errorf("failed to seed trades cursor for %s: %w", target, err)
		}
		if stored.Len() == 0 {
			continue
		}
		c.remember(target, stored)
		cc.Logger.Debug("Seeded trades cursor",
			zap.String("target", target.String()),
			zap.String("last_id", stored.LastID),
			zap.Int("count", stored.Len()))
	}
	return nil
}

func (c *TradesCollector) Collect(ctx context.Context, cc CollectorContext) error {
	failed := forEachTarget(ctx, cc, marketdata.OpTrades, func(ctx context.Context, svc marketdata.Service, target Target) error {
		return c.collectTarget(ctx, cc, svc, target)
	})
	return cycleError(c.Name(), failed)
}

func (c *TradesCollector) collectTarget(ctx context.Context, cc CollectorContext, svc marketdata.Service, target Target) error {
	opts := []marketdata.TradesOption{marketdata.WithLimit(cc.TradesLimit)}
	if since := c.lastID(target); since != "" {
		opts = append(opts, marketdata.WithSinceID(since))
	}

	trades, err := svc.GetTrades(ctx, target.Pair.Base().String(), target.Pair.Counter().String(), opts...)
	if err != nil {
		return err
	}
	if trades == nil || trades.Len() == 0 {
		return nil
	}

	fresh := c.filterNew(target, *trades)
	if len(fresh) == 0 {
		return nil
	}

	inserted, err := cc.Store.SaveTrades(ctx, target.Venue, fresh)
	if err != nil {
		return err
	}
	cc.Stats.TradesStored.Add(inserted)

	if err := cc.Publisher.PublishTrades(ctx, target.Venue, fresh); err != nil {
		return err
	}
	cc.Logger.Debug("Collected trades",
		zap.String("target", target.String()),
		zap.Int("received", trades.Len()),
		zap.Int("new", len(fresh)),
		zap.Int64("stored", inserted))
	return nil
}

func (c *TradesCollector) lastID(target Target) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.cursors[target.String()]; ok {
		return cur.lastID
	}
	return ""
}

// filterNew drops trades whose identity was in the previous batch, then makes this batch
// the new reference. Trades without an ID are always kept.
func (c *TradesCollector) filterNew(target Target, trades models.Trades) []models.Trade {
	c.mu.Lock()
	defer c.mu.Unlock()

	var previous map[string]struct{}
	if cur, ok := c.cursors[target.String()]; ok {
		previous = cur.seen
	}

	fresh := make([]models.Trade, 0, trades.Len())
	for _, t := range trades.Trades {
		if key := t.Key(); key != "" {
			if _, dup := previous[key]; dup {
				continue
			}
		}
		fresh = append(fresh, t)
	}
	c.rememberLocked(target, trades)
	return fresh
}

func (c *TradesCollector) remember(target Target, trades models.Trades) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rememberLocked(target, trades)
}

func (c *TradesCollector) rememberLocked(target Target, trades models.Trades) {
	cur, ok := c.cursors[target.String()]
	if !ok {
		cur = &tradeCursor{}
		c.cursors[target.String()] = cur
	}
	cur.seen = make(map[string]struct{}, trades.Len())
	for _, t := range trades.Trades {
		if key := t.Key(); key != "" {
			cur.seen[key] = struct{}{}
		}
	}
	if trades.LastID != "" {
		cur.lastID = trades.LastID
	}
}
