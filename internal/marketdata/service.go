// Package marketdata defines the polling market-data contract every venue implements,
// the error taxonomy shared by all venues, and the pair validation step.
package marketdata

import (
	"context"

	"marketdata/internal/models"
)

// Operation names used in errors and logs.
const (
	OpTicker           = "getTicker"
	OpPartialOrderBook = "getPartialOrderBook"
	OpFullOrderBook    = "getFullOrderBook"
	OpTrades           = "getTrades"
	OpUserTrades       = "getUserTrades"
)

// Service is the per-venue polling facade. Callers pass plain symbols, e.g. ("BTC", "USD").
//
// Every call returns one of three outcomes:
//   - a value and a nil error,
//   - a nil value and an error matching ErrVenueUnavailable (the venue reported an error),
//   - a nil value and any other error (hard failure).
//
// Implementations keep no per-call state and are safe for concurrent use when their
// transport is.
type Service interface {
	// Venue returns the venue name, e.g. "campbx".
	Venue() string

	GetTicker(ctx context.Context, base, counter string) (*models.Ticker, error)
	GetPartialOrderBook(ctx context.Context, base, counter string) (*models.OrderBook, error)
	GetFullOrderBook(ctx context.Context, base, counter string) (*models.OrderBook, error)
	GetTrades(ctx context.Context, base, counter string, opts ...TradesOption) (*models.Trades, error)

	// GetExchangeSymbols returns the static set of supported pairs. It never does IO.
	GetExchangeSymbols() []models.CurrencyPair
}

// UserTradeService is implemented by venues that can return the authenticated user's
// own trade history.
type UserTradeService interface {
	GetUserTrades(ctx context.Context, base, counter string, opts ...TradesOption) ([]models.UserTrade, error)
}

// TradesParams holds the venue-specific arguments of GetTrades.
type TradesParams struct {
	// Limit caps the number of trades requested; 0 leaves the venue default.
	Limit int
	// SinceID asks for trades after the given trade ID, when the venue supports it.
	SinceID string
}

// TradesOption configures TradesParams.
type TradesOption func(*TradesParams)

// WithLimit caps the number of returned trades.
func WithLimit(n int) TradesOption {
	return func(p *TradesParams) { p.Limit = n }
}

// WithSinceID requests trades newer than id.
func WithSinceID(id string) TradesOption {
	return func(p *TradesParams) { p.SinceID = id }
}

// ApplyTradesOptions folds opts into a TradesParams value.
func ApplyTradesOptions(opts ...TradesOption) TradesParams {
	var p TradesParams
	for _, opt := range opts {
		opt(&p)
	}
	return p
}
