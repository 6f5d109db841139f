package campbx

import (
	"context"

	"go.uber.org/zap"

	"marketdata/internal/marketdata"
	"marketdata/internal/models"
	"marketdata/internal/restclient"
)

const (
	VenueName      = "campbx"
	DefaultBaseURL = "https://campbx.com"

	tickerEndpoint = "/api/xticker.php"
	depthEndpoint  = "/api/xdepth.php"
)

// Symbols is the static set of pairs CampBX trades.
var Symbols = marketdata.NewSymbolSet(models.MustCurrencyPair("BTC", "USD"))

// Service polls CampBX. It offers the ticker and the full order book only.
type Service struct {
	transport restclient.Transport
	logger    *zap.Logger
}

var _ marketdata.Service = (*Service)(nil)

// NewService creates a CampBX service on top of transport.
func NewService(transport restclient.Transport, logger *zap.Logger) *Service {
	return &Service{transport: transport, logger: logger}
}

func (s *Service) Venue() string { return VenueName }

func (s *Service) GetExchangeSymbols() []models.CurrencyPair { return Symbols.Pairs() }

// GetTicker fetches the BTC/USD ticker.
func (s *Service) GetTicker(ctx context.Context, base, counter string) (*models.Ticker, error) {
	pair, err := marketdata.Verify(VenueName, Symbols, base, counter)
	if err != nil {
		return nil, err
	}

	var raw Ticker
	if err := s.transport.Get(ctx, tickerEndpoint, nil, &raw); err != nil {
		return nil, err
	}

	ticker, err := AdaptTicker(raw, counter, base)
	if err != nil {
		return nil, marketdata.WarnIfUnavailable(s.logger, pair, err)
	}
	return &ticker, nil
}

// GetPartialOrderBook is not offered by CampBX.
func (s *Service) GetPartialOrderBook(context.Context, string, string) (*models.OrderBook, error) {
	return nil, &marketdata.NotSupportedError{Venue: VenueName, Operation: marketdata.OpPartialOrderBook}
}

// GetFullOrderBook fetches the complete depth.
func (s *Service) GetFullOrderBook(ctx context.Context, base, counter string) (*models.OrderBook, error) {
	pair, err := marketdata.Verify(VenueName, Symbols, base, counter)
	if err != nil {
		return nil, err
	}

	var raw OrderBook
	if err := s.transport.Get(ctx, depthEndpoint, nil, &raw); err != nil {
		return nil, err
	}

	book, err := AdaptOrderBook(raw, counter, base)
	if err != nil {
		return nil, marketdata.WarnIfUnavailable(s.logger, pair, err)
	}
	return &book, nil
}

// GetTrades is not offered by CampBX.
func (s *Service) GetTrades(context.Context, string, string, ...marketdata.TradesOption) (*models.Trades, error) {
	return nil, &marketdata.NotSupportedError{Venue: VenueName, Operation: marketdata.OpTrades}
}
