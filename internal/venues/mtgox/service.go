package mtgox

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"marketdata/internal/marketdata"
	"marketdata/internal/models"
	"marketdata/internal/restclient"
)

const (
	VenueName      = "mtgox"
	DefaultBaseURL = "https://mtgox.com/api/0"

	tickerEndpoint    = "/data/ticker.php"
	depthEndpoint     = "/data/getDepth.php"
	fullDepthEndpoint = "/data/fullDepth.php"
	tradesEndpoint    = "/data/getTrades.php"
)

// Symbols is the static set of pairs the v0 API quotes.
var Symbols = marketdata.NewSymbolSet(
	models.MustCurrencyPair("BTC", "USD"),
	models.MustCurrencyPair("BTC", "EUR"),
	models.MustCurrencyPair("BTC", "GBP"),
	models.MustCurrencyPair("BTC", "JPY"),
	models.MustCurrencyPair("BTC", "AUD"),
	models.MustCurrencyPair("BTC", "CAD"),
	models.MustCurrencyPair("BTC", "CHF"),
	models.MustCurrencyPair("BTC", "CNY"),
	models.MustCurrencyPair("BTC", "PLN"),
	models.MustCurrencyPair("BTC", "RUB"),
	models.MustCurrencyPair("BTC", "SEK"),
)

// Service polls the Mt.Gox v0 API.
type Service struct {
	transport restclient.Transport
	logger    *zap.Logger
}

var _ marketdata.Service = (*Service)(nil)

// NewService creates a Mt.Gox service on top of transport.
func NewService(transport restclient.Transport, logger *zap.Logger) *Service {
	return &Service{transport: transport, logger: logger}
}

func (s *Service) Venue() string { return VenueName }

func (s *Service) GetExchangeSymbols() []models.CurrencyPair { return Symbols.Pairs() }

func currencyQuery(pair models.CurrencyPair) url.Values {
	return url.Values{"Currency": {pair.Counter().String()}}
}

func (s *Service) GetTicker(ctx context.Context, base, counter string) (*models.Ticker, error) {
	pair, err := marketdata.Verify(VenueName, Symbols, base, counter)
	if err != nil {
		return nil, err
	}

	var raw TickerResponse
	if err := s.transport.Get(ctx, tickerEndpoint, currencyQuery(pair), &raw); err != nil {
		return nil, err
	}

	ticker, err := AdaptTicker(raw, pair.Counter().String(), pair.Base().String())
	if err != nil {
		return nil, marketdata.WarnIfUnavailable(s.logger, pair, err)
	}
	return &ticker, nil
}

func (s *Service) GetPartialOrderBook(ctx context.Context, base, counter string) (*models.OrderBook, error) {
	return s.orderBook(ctx, base, counter, depthEndpoint, marketdata.OpPartialOrderBook)
}

func (s *Service) GetFullOrderBook(ctx context.Context, base, counter string) (*models.OrderBook, error) {
	return s.orderBook(ctx, base, counter, fullDepthEndpoint, marketdata.OpFullOrderBook)
}

func (s *Service) orderBook(ctx context.Context, base, counter, endpoint, op string) (*models.OrderBook, error) {
	pair, err := marketdata.Verify(VenueName, Symbols, base, counter)
	if err != nil {
		return nil, err
	}

	var raw Depth
	if err := s.transport.Get(ctx, endpoint, currencyQuery(pair), &raw); err != nil {
		return nil, err
	}

	book, err := AdaptOrderBook(raw, pair.Counter().String(), pair.Base().String(), op)
	if err != nil {
		return nil, marketdata.WarnIfUnavailable(s.logger, pair, err)
	}
	return &book, nil
}

// GetTrades fetches the public trade history. WithSinceID is passed to the venue and
// everything after the cursor is returned. WithLimit keeps only the most recent trades
// and applies only without a cursor, so a resumed poll never skips trades.
func (s *Service) GetTrades(ctx context.Context, base, counter string, opts ...marketdata.TradesOption) (*models.Trades, error) {
	pair, err := marketdata.Verify(VenueName, Symbols, base, counter)
	if err != nil {
		return nil, err
	}

	params := marketdata.ApplyTradesOptions(opts...)
	query := currencyQuery(pair)
	if params.SinceID != "" {
		query.Set("since", params.SinceID)
	}

	var raw TradesResponse
	if err := s.transport.Get(ctx, tradesEndpoint, query, &raw); err != nil {
		return nil, err
	}

	trades, err := AdaptTrades(raw, pair.Counter().String(), pair.Base().String())
	if err != nil {
		return nil, marketdata.WarnIfUnavailable(s.logger, pair, err)
	}
	if params.SinceID == "" && params.Limit > 0 && trades.Len() > params.Limit {
		trades = models.NewTrades(trades.Trades[trades.Len()-params.Limit:])
	}
	return &trades, nil
}
