package poller

import (
	"context"

	"go.uber.org/zap"

	"marketdata/internal/marketdata"
	"marketdata/internal/models"
	"marketdata/internal/publisher"
)

// Target is one (venue, pair) the engine polls.
type Target struct {
	Venue string
	Pair  models.CurrencyPair
}

func (t Target) String() string { return t.Venue + ":" + t.Pair.String() }

// Store is the persistence the collectors need.
type Store interface {
	SaveTrades(ctx context.Context, venue string, trades []models.Trade) (int64, error)
	ListTrades(ctx context.Context, venue string, pair models.CurrencyPair, limit int) (models.Trades, error)
	SaveTicker(ctx context.Context, venue string, ticker models.Ticker) error
	SaveUserTrades(ctx context.Context, venue string, trades []models.UserTrade) (int64, error)
	ListUserTrades(ctx context.Context, venue string, pair models.CurrencyPair) ([]models.UserTrade, error)
}

// CollectorContext provides a collector with access to the engine's components.
type CollectorContext struct {
	Logger       *zap.Logger
	Registry     *marketdata.Registry
	Targets      []Target
	Store        Store
	Publisher    publisher.Publisher
	Capabilities *Capabilities
	Stats        *Stats
	TradesLimit  int
}

// Collector gathers one kind of market data for every target.
type Collector interface {
	// Name returns the unique name of the collector.
	Name() string

	// Initialize gives the collector a chance to load state before the first cycle.
	Initialize(ctx context.Context, cc CollectorContext) error

	// Collect runs one polling cycle, called periodically by the engine.
	Collect(ctx context.Context, cc CollectorContext) error
}
