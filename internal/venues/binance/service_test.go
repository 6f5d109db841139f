package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"marketdata/internal/config"
	"marketdata/internal/marketdata"
)

// setupTestServer creates a test server and a Service whose SDK client points at it.
func setupTestServer(handler http.Handler, logger *zap.Logger) (*Service, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(config.Venue{BaseURL: server.URL, ApiKey: "test_api_key", SecretKey: "test_secret_key", TimeoutSeconds: 5})
	return NewService(client, marketdata.SymbolSet{}, logger), server
}

func TestGetTicker(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
			assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"symbol":"BTCUSDT","lastPrice":"16.634","bidPrice":"16.63","askPrice":"16.64","highPrice":"17","lowPrice":"16","volume":"10","closeTime":1700000000000}]`))
		})
		svc, server := setupTestServer(handler, zap.NewNop())
		defer server.Close()

		// Act
		ticker, err := svc.GetTicker(context.Background(), "BTC", "USDT")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "16.634", ticker.Last.String())
		assert.Equal(t, "16.64", ticker.Ask.String())
	})

	t.Run("APIErrorIsUnavailable", func(t *testing.T) {
		// Arrange
		core, logs := observer.New(zapcore.WarnLevel)
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"code":-1003,"msg":"Too many requests."}`))
		})
		svc, server := setupTestServer(handler, zap.New(core))
		defer server.Close()

		// Act
		ticker, err := svc.GetTicker(context.Background(), "BTC", "USDT")

		// Assert
		assert.Nil(t, ticker)
		assert.ErrorIs(t, err, marketdata.ErrVenueUnavailable)
		require.Equal(t, 1, logs.Len())
		assert.Contains(t, logs.All()[0].ContextMap()["venue_message"], "-1003")
	})

	t.Run("UnreachableIsTransportError", func(t *testing.T) {
		svc, server := setupTestServer(http.NotFoundHandler(), zap.NewNop())
		server.Close()

		ticker, err := svc.GetTicker(context.Background(), "BTC", "USDT")

		assert.Nil(t, ticker)
		assert.ErrorIs(t, err, marketdata.ErrTransport)
	})

	t.Run("InvalidPairMakesNoCall", func(t *testing.T) {
		calls := 0
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ })
		svc, server := setupTestServer(handler, zap.NewNop())
		defer server.Close()

		_, err := svc.GetTicker(context.Background(), "XXX", "YYY")

		assert.ErrorIs(t, err, marketdata.ErrInvalidArgument)
		assert.Zero(t, calls)
	})
}

func TestGetOrderBooks(t *testing.T) {
	// Arrange
	var limits []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/depth", r.URL.Path)
		limits = append(limits, r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"lastUpdateId":1,"bids":[["100","1"],["110","0.5"]],"asks":[["120","1"],["115","2"]]}`))
	})
	svc, server := setupTestServer(handler, zap.NewNop())
	defer server.Close()

	// Act
	partial, err := svc.GetPartialOrderBook(context.Background(), "ETH", "BTC")
	require.NoError(t, err)
	full, err := svc.GetFullOrderBook(context.Background(), "ETH", "BTC")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "110", partial.Bids[0].LimitPrice.String())
	assert.Equal(t, "115", full.Asks[0].LimitPrice.String())
	assert.Equal(t, []string{"20", "5000"}, limits)
}

func TestGetTrades(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/trades":
			assert.Equal(t, "50", r.URL.Query().Get("limit"))
		case "/api/v3/historicalTrades":
			assert.Equal(t, "11", r.URL.Query().Get("fromId"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":11,"price":"100","qty":"1","quoteQty":"100","time":1000,"isBuyerMaker":true,"isBestMatch":true}]`))
	})
	svc, server := setupTestServer(handler, zap.NewNop())
	defer server.Close()

	recent, err := svc.GetTrades(context.Background(), "BTC", "USDT", marketdata.WithLimit(50))
	require.NoError(t, err)
	assert.Equal(t, "11", recent.LastID)

	since, err := svc.GetTrades(context.Background(), "BTC", "USDT", marketdata.WithSinceID("10"))
	require.NoError(t, err)
	assert.Equal(t, 1, since.Len())

	_, err = svc.GetTrades(context.Background(), "BTC", "USDT", marketdata.WithSinceID("abc"))
	assert.ErrorIs(t, err, marketdata.ErrInvalidArgument)
}

func TestGetTrades_WithoutAPIKeyUsesRecentTrades(t *testing.T) {
	// Arrange
	var paths []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Empty(t, r.Header.Get("X-MBX-APIKEY"))
		assert.Empty(t, r.URL.Query().Get("fromId"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":11,"price":"100","qty":"1","quoteQty":"100","time":1000,"isBuyerMaker":true,"isBestMatch":true}]`))
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	svc := NewService(NewClient(config.Venue{BaseURL: server.URL, TimeoutSeconds: 5}), marketdata.SymbolSet{}, zap.NewNop())

	// Act
	trades, err := svc.GetTrades(context.Background(), "BTC", "USDT", marketdata.WithSinceID("10"), marketdata.WithLimit(50))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, trades.Len())
	assert.Equal(t, []string{"/api/v1/trades"}, paths)

	_, err = svc.GetTrades(context.Background(), "BTC", "USDT", marketdata.WithSinceID("abc"))
	assert.ErrorIs(t, err, marketdata.ErrInvalidArgument)
}

func TestGetUserTrades_WithoutCredentialsIsNotSupported(t *testing.T) {
	// Arrange
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer server.Close()
	svc := NewService(NewClient(config.Venue{BaseURL: server.URL}), marketdata.SymbolSet{}, zap.NewNop())

	// Act
	trades, err := svc.GetUserTrades(context.Background(), "BTC", "USDT")

	// Assert
	assert.Nil(t, trades)
	assert.ErrorIs(t, err, marketdata.ErrNotSupported)
	assert.Equal(t, 0, calls)
}

func TestGetUserTrades(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/myTrades", r.URL.Path)
		assert.Equal(t, "test_api_key", r.Header.Get("X-MBX-APIKEY"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"symbol":"BTCUSDT","id":5,"orderId":50,"price":"100","qty":"0.5","quoteQty":"50","commission":"0.0005","commissionAsset":"BTC","time":1000,"isBuyer":false,"isMaker":true,"isBestMatch":true}]`))
	})
	svc, server := setupTestServer(handler, zap.NewNop())
	defer server.Close()

	trades, err := svc.GetUserTrades(context.Background(), "BTC", "USDT")

	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "50", trades[0].OrderID())
	assert.Equal(t, "0.0005 BTC", trades[0].Fee().String())
}

func TestNewService_DefaultSymbols(t *testing.T) {
	svc := NewService(NewClient(config.Venue{}), marketdata.SymbolSet{}, zap.NewNop())

	assert.Equal(t, Symbols.Len(), len(svc.GetExchangeSymbols()))
	assert.Equal(t, VenueName, svc.Venue())
}
