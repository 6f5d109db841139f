package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gbinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"go.uber.org/zap"

	"marketdata/internal/config"
	"marketdata/internal/marketdata"
	"marketdata/internal/models"
)

const (
	VenueName = "binance"

	partialDepthLimit = 20
	fullDepthLimit    = 5000
	maxTradesLimit    = 1000
)

// Symbols is the default pair set polled on Binance.
var Symbols = marketdata.NewSymbolSet(
	models.MustCurrencyPair("BTC", "USDT"),
	models.MustCurrencyPair("ETH", "USDT"),
	models.MustCurrencyPair("BNB", "USDT"),
	models.MustCurrencyPair("LTC", "USDT"),
	models.MustCurrencyPair("ETH", "BTC"),
	models.MustCurrencyPair("BNB", "BTC"),
	models.MustCurrencyPair("LTC", "BTC"),
)

// Service polls Binance spot market data. It also serves the account's own trades when
// created with API credentials.
type Service struct {
	client  *gbinance.Client
	symbols marketdata.SymbolSet
	logger  *zap.Logger
}

var (
	_ marketdata.Service          = (*Service)(nil)
	_ marketdata.UserTradeService = (*Service)(nil)
)

// NewClient builds the SDK client for cfg.
func NewClient(cfg config.Venue) *gbinance.Client {
	client := gbinance.NewClient(cfg.ApiKey, cfg.SecretKey)
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}
	if cfg.TimeoutSeconds > 0 {
		client.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	return client
}

// NewService creates a Binance service. An empty symbols set falls back to Symbols.
func NewService(client *gbinance.Client, symbols marketdata.SymbolSet, logger *zap.Logger) *Service {
	if symbols.Len() == 0 {
		symbols = Symbols
	}
	return &Service{client: client, symbols: symbols, logger: logger}
}

func (s *Service) Venue() string { return VenueName }

func (s *Service) GetExchangeSymbols() []models.CurrencyPair { return s.symbols.Pairs() }

func (s *Service) GetTicker(ctx context.Context, base, counter string) (*models.Ticker, error) {
	pair, err := marketdata.Verify(VenueName, s.symbols, base, counter)
	if err != nil {
		return nil, err
	}

	stats, err := s.client.NewListPriceChangeStatsService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return nil, s.mapError(pair, marketdata.OpTicker, "/api/v3/ticker/24hr", err)
	}
	if len(stats) == 0 {
		return nil, marketdata.NewAdapterError(VenueName, "no statistics for "+pair.Symbol(), nil)
	}

	ticker, err := AdaptTicker(stats[0], pair.Counter().String(), pair.Base().String())
	if err != nil {
		return nil, err
	}
	return &ticker, nil
}

func (s *Service) GetPartialOrderBook(ctx context.Context, base, counter string) (*models.OrderBook, error) {
	return s.orderBook(ctx, base, counter, partialDepthLimit, marketdata.OpPartialOrderBook)
}

func (s *Service) GetFullOrderBook(ctx context.Context, base, counter string) (*models.OrderBook, error) {
	return s.orderBook(ctx, base, counter, fullDepthLimit, marketdata.OpFullOrderBook)
}

func (s *Service) orderBook(ctx context.Context, base, counter string, limit int, op string) (*models.OrderBook, error) {
	pair, err := marketdata.Verify(VenueName, s.symbols, base, counter)
	if err != nil {
		return nil, err
	}

	depth, err := s.client.NewDepthService().Symbol(pair.Symbol()).Limit(limit).Do(ctx)
	if err != nil {
		return nil, s.mapError(pair, op, "/api/v3/depth", err)
	}

	book, err := AdaptOrderBook(depth, pair.Counter().String(), pair.Base().String())
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetTrades returns recent public trades. With an API key, WithSinceID reads forward from
// the historical endpoint. Without one the recent endpoint is used and the caller dedupes
// against what it has already seen.
func (s *Service) GetTrades(ctx context.Context, base, counter string, opts ...marketdata.TradesOption) (*models.Trades, error) {
	pair, err := marketdata.Verify(VenueName, s.symbols, base, counter)
	if err != nil {
		return nil, err
	}

	params := marketdata.ApplyTradesOptions(opts...)
	limit := clampLimit(params.Limit)

	var raw []*gbinance.Trade
	endpoint := "/api/v1/trades"
	if params.SinceID != "" {
		sinceID, convErr := strconv.ParseInt(params.SinceID, 10, 64)
		if convErr != nil {
			return nil, &marketdata.InvalidArgumentError{Venue: VenueName, Base: base, Counter: counter, Reason: "since id must be numeric", Err: convErr}
		}
		if s.client.APIKey != "" {
			endpoint = "/api/v3/historicalTrades"
			raw, err = s.client.NewHistoricalTradesService().Symbol(pair.Symbol()).Limit(limit).FromID(sinceID + 1).Do(ctx)
		} else {
			raw, err = s.client.NewRecentTradesService().Symbol(pair.Symbol()).Limit(limit).Do(ctx)
		}
	} else {
		raw, err = s.client.NewRecentTradesService().Symbol(pair.Symbol()).Limit(limit).Do(ctx)
	}
	if err != nil {
		return nil, s.mapError(pair, marketdata.OpTrades, endpoint, err)
	}

	trades, err := AdaptTrades(raw, pair.Counter().String(), pair.Base().String())
	if err != nil {
		return nil, err
	}
	return &trades, nil
}

// GetUserTrades returns the account's fills for the pair. A service without API
// credentials reports the operation as not supported.
func (s *Service) GetUserTrades(ctx context.Context, base, counter string, opts ...marketdata.TradesOption) ([]models.UserTrade, error) {
	pair, err := marketdata.Verify(VenueName, s.symbols, base, counter)
	if err != nil {
		return nil, err
	}
	if !s.hasCredentials() {
		return nil, &marketdata.NotSupportedError{Venue: VenueName, Operation: marketdata.OpUserTrades}
	}

	params := marketdata.ApplyTradesOptions(opts...)
	svc := s.client.NewListTradesService().Symbol(pair.Symbol()).Limit(clampLimit(params.Limit))
	if params.SinceID != "" {
		sinceID, convErr := strconv.ParseInt(params.SinceID, 10, 64)
		if convErr != nil {
			return nil, &marketdata.InvalidArgumentError{Venue: VenueName, Base: base, Counter: counter, Reason: "since id must be numeric", Err: convErr}
		}
		svc = svc.FromID(sinceID + 1)
	}

	raw, err := svc.Do(ctx)
	if err != nil {
		return nil, s.mapError(pair, marketdata.OpUserTrades, "/api/v3/myTrades", err)
	}
	return AdaptUserTrades(raw, pair.Counter().String(), pair.Base().String())
}

// hasCredentials reports whether signed account endpoints can be called.
func (s *Service) hasCredentials() bool {
	return s.client.APIKey != "" && s.client.SecretKey != ""
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxTradesLimit {
		return maxTradesLimit
	}
	return limit
}

// mapError turns an SDK error into the shared taxonomy. A coded API error means Binance
// answered and refused, which is the unavailable signal. Uncoded bodies are transport
// failures.
func (s *Service) mapError(pair models.CurrencyPair, op, endpoint string, err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		venueErr := &marketdata.VenueError{
			Venue:     VenueName,
			Operation: op,
			Message:   fmt.Sprintf("code=%d, msg=%s", apiErr.Code, apiErr.Message),
		}
		return marketdata.WarnIfUnavailable(s.logger, pair, venueErr)
	}
	return &marketdata.TransportError{Venue: VenueName, Endpoint: endpoint, Err: err}
}
