package poller

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"marketdata/internal/marketdata"
	"marketdata/internal/models"
)

// UserTradesCollector stores the account's own fills on venues that serve them. Fills are
// private, so they go to the store only and are never published.
type UserTradesCollector struct {
	mu      sync.Mutex
	cursors map[string]*tradeCursor
}

func NewUserTradesCollector() *UserTradesCollector {
	return &UserTradesCollector{cursors: make(map[string]*tradeCursor)}
}

func (c *UserTradesCollector) Name() string { return "user_trades" }

// Initialize resumes every target after its newest stored fill.
func (c *UserTradesCollector) Initialize(ctx context.Context, cc CollectorContext) error {
	for _, target := range cc.Targets {
		stored, err := cc.Store.ListUserTrades(ctx, target.Venue, target.Pair)
		if err != nil {
			return fmt.Errorf("failed to seed user trades cursor for %s: %w", target, err)
		}
		if len(stored) == 0 {
			continue
		}
		if cc.TradesLimit > 0 && len(stored) > cc.TradesLimit {
			stored = stored[len(stored)-cc.TradesLimit:]
		}
		c.remember(target, stored)
	}
	return nil
}

func (c *UserTradesCollector) Collect(ctx context.Context, cc CollectorContext) error {
	failed := forEachTarget(ctx, cc, marketdata.OpUserTrades, func(ctx context.Context, svc marketdata.Service, target Target) error {
		account, ok := svc.(marketdata.UserTradeService)
		if !ok {
			return &marketdata.NotSupportedError{Venue: target.Venue, Operation: marketdata.OpUserTrades}
		}
		return c.collectTarget(ctx, cc, account, target)
	})
	return cycleError(c.Name(), failed)
}

func (c *UserTradesCollector) collectTarget(ctx context.Context, cc CollectorContext, svc marketdata.UserTradeService, target Target) error {
	opts := []marketdata.TradesOption{marketdata.WithLimit(cc.TradesLimit)}
	if since := c.lastID(target); since != "" {
		opts = append(opts, marketdata.WithSinceID(since))
	}

	trades, err := svc.GetUserTrades(ctx, target.Pair.Base().String(), target.Pair.Counter().String(), opts...)
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		return nil
	}

	fresh := c.filterNew(target, trades)
	if len(fresh) == 0 {
		return nil
	}

	inserted, err := cc.Store.SaveUserTrades(ctx, target.Venue, fresh)
	if err != nil {
		return err
	}
	cc.Stats.UserTradesStored.Add(inserted)
	cc.Logger.Debug("Collected user trades",
		zap.String("target", target.String()),
		zap.Int("new", len(fresh)),
		zap.Int64("stored", inserted))
	return nil
}

func (c *UserTradesCollector) lastID(target Target) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.cursors[target.String()]; ok {
		return cur.lastID
	}
	return ""
}

func (c *UserTradesCollector) filterNew(target Target, trades []models.UserTrade) []models.UserTrade {
	c.mu.Lock()
	defer c.mu.Unlock()

	var previous map[string]struct{}
	if cur, ok := c.cursors[target.String()]; ok {
		previous = cur.seen
	}

	fresh := make([]models.UserTrade, 0, len(trades))
	for _, t := range trades {
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

func (c *UserTradesCollector) remember(target Target, trades []models.UserTrade) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rememberLocked(target, trades)
}

// rememberLocked takes the last fill with an ID as the cursor; batches are oldest first.
func (c *UserTradesCollector) rememberLocked(target Target, trades []models.UserTrade) {
	cur, ok := c.cursors[target.String()]
	if !ok {
		cur = &tradeCursor{}
		c.cursors[target.String()] = cur
	}
	cur.seen = make(map[string]struct{}, len(trades))
	for _, t := range trades {
		if key := t.Key(); key != "" {
			cur.seen[key] = struct{}{}
		}
		if t.ID() != "" {
			cur.lastID = t.ID()
		}
	}
}
