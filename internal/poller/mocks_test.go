package poller

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketdata/internal/marketdata"
	"marketdata/internal/models"
)

// MockService is a mock implementation of marketdata.Service.
type MockService struct {
	mock.Mock
	venue string
	pairs []models.CurrencyPair
}

func (m *MockService) Venue() string                             { return m.venue }
func (m *MockService) GetExchangeSymbols() []models.CurrencyPair { return m.pairs }

func (m *MockService) GetTicker(ctx context.Context, base, counter string) (*models.Ticker, error) {
	args := m.Called(base, counter)
	t, _ := args.Get(0).(*models.Ticker)
	return t, args.Error(1)
}

func (m *MockService) GetPartialOrderBook(ctx context.Context, base, counter string) (*models.OrderBook, error) {
	args := m.Called(base, counter)
	b, _ := args.Get(0).(*models.OrderBook)
	return b, args.Error(1)
}

func (m *MockService) GetFullOrderBook(ctx context.Context, base, counter string) (*models.OrderBook, error) {
	args := m.Called(base, counter)
	b, _ := args.Get(0).(*models.OrderBook)
	return b, args.Error(1)
}

// GetTrades records the resolved options so expectations can match on them.
func (m *MockService) GetTrades(ctx context.Context, base, counter string, opts ...marketdata.TradesOption) (*models.Trades, error) {
	args := m.Called(base, counter, marketdata.ApplyTradesOptions(opts...))
	t, _ := args.Get(0).(*models.Trades)
	return t, args.Error(1)
}

// MockStore is a mock implementation of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveTrades(ctx context.Context, venue string, trades []models.Trade) (int64, error) {
	args := m.Called(venue, trades)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListTrades(ctx context.Context, venue string, pair models.CurrencyPair, limit int) (models.Trades, error) {
	args := m.Called(venue, pair, limit)
	return args.Get(0).(models.Trades), args.Error(1)
}

func (m *MockStore) SaveTicker(ctx context.Context, venue string, ticker models.Ticker) error {
	args := m.Called(venue, ticker)
	return args.Error(0)
}

func (m *MockStore) SaveUserTrades(ctx context.Context, venue string, trades []models.UserTrade) (int64, error) {
	args := m.Called(venue, trades)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListUserTrades(ctx context.Context, venue string, pair models.CurrencyPair) ([]models.UserTrade, error) {
	args := m.Called(venue, pair)
	trades, _ := args.Get(0).([]models.UserTrade)
	return trades, args.Error(1)
}

// MockAccountService is a MockService that also serves the account's own trades.
type MockAccountService struct {
	MockService
}

func (m *MockAccountService) GetUserTrades(ctx context.Context, base, counter string, opts ...marketdata.TradesOption) ([]models.UserTrade, error) {
	args := m.Called(base, counter, marketdata.ApplyTradesOptions(opts...))
	trades, _ := args.Get(0).([]models.UserTrade)
	return trades, args.Error(1)
}

// MockPublisher is a mock implementation of publisher.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishTrades(ctx context.Context, venue string, trades []models.Trade) error {
	args := m.Called(venue, trades)
	return args.Error(0)
}

func (m *MockPublisher) PublishTicker(ctx context.Context, venue string, ticker models.Ticker) error {
	args := m.Called(venue, ticker)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

var btcUSD = models.MustCurrencyPair("BTC", "USD")

// setupCollectorContext wires one mock venue serving BTC/USD.
func setupCollectorContext(t *testing.T, logger *zap.Logger) (CollectorContext, *MockService, *MockStore, *MockPublisher) {
	svc := &MockService{venue: "mtgox", pairs: []models.CurrencyPair{btcUSD}}
	registry, err := marketdata.NewRegistry(svc)
	require.NoError(t, err)

	store := new(MockStore)
	pub := new(MockPublisher)
	cc := CollectorContext{
		Logger:       logger,
		Registry:     registry,
		Targets:      TargetsFor(registry),
		Store:        store,
		Publisher:    pub,
		Capabilities: NewCapabilities(),
		Stats:        &Stats{},
		TradesLimit:  100,
	}
	return cc, svc, store, pub
}

func newTestTrade(t *testing.T, id string, minute int) models.Trade {
	trade, err := models.NewTradeBuilder().
		Type(models.Bid).
		OriginalAmount(decimal.RequireFromString("0.5")).
		CurrencyPair(btcUSD).
		Price(decimal.RequireFromString("16.634")).
		Timestamp(time.Date(2013, 3, 1, 12, minute, 0, 0, time.UTC)).
		ID(id).
		Build()
	require.NoError(t, err)
	return trade
}

func newTestUserTrade(t *testing.T, id string, minute int) models.UserTrade {
	trade, err := models.UserTradeBuilderFrom(models.UserTrade{Trade: newTestTrade(t, id, minute)}).
		OrderID("order-" + id).
		Fee(decimal.RequireFromString("0.001"), models.Currency("BTC")).
		Build()
	require.NoError(t, err)
	return trade
}

func newTestTicker(t *testing.T) *models.Ticker {
	ticker, err := models.NewTickerBuilder().
		CurrencyPair(btcUSD).
		Last(decimal.RequireFromString("34.5")).
		Bid(decimal.RequireFromString("34.4")).
		Ask(decimal.RequireFromString("34.6")).
		Build()
	require.NoError(t, err)
	return &ticker
}
