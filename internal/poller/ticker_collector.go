package poller

import (
	"context"

	"go.uber.org/zap"

	"marketdata/internal/marketdata"
)

// TickerCollector snapshots the ticker of every target once per cycle.
type TickerCollector struct{}

func NewTickerCollector() *TickerCollector { return &TickerCollector{} }

func (c *TickerCollector) Name() string { return "ticker" }

func (c *TickerCollector) Initialize(ctx context.Context, cc CollectorContext) error { return nil }

func (c *TickerCollector) Collect(ctx context.Context, cc CollectorContext) error {
	failed := forEachTarget(ctx, cc, marketdata.OpTicker, func(ctx context.Context, svc marketdata.Service, target Target) error {
		ticker, err := svc.GetTicker(ctx, target.Pair.Base().String(), target.Pair.Counter().String())
		if err != nil {
			return err
		}
		if ticker == nil {
			return nil
		}

		if err := cc.Store.SaveTicker(ctx, target.Venue, *ticker); err != nil {
			return err
		}
		cc.Stats.TickersStored.Add(1)

		if err := cc.Publisher.PublishTicker(ctx, target.Venue, *ticker); err != nil {
			return err
		}
		cc.Logger.Debug("Collected ticker", zap.String("target", target.String()), zap.Stringer("last", ticker.Last))
		return nil
	})
	return cycleError(c.Name(), failed)
}
