package restclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"marketdata/internal/config"
	"marketdata/internal/marketdata"
)

type tickerPayload struct {
	Last decimal.Decimal `json:"last"`
}

// setupTestServer creates a new test server and a RestClient configured to use it.
func setupTestServer(handler http.Handler) (*RestClient, *httptest.Server) {
	server := httptest.NewServer(handler)

	rc := &RestClient{
		venue:      "testvenue",
		client:     resty.New().SetBaseURL(server.URL),
		logger:     zap.NewNop(), // Use a no-op logger for tests
		limiter:    rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
		maxRetries: 3,
		backoff:    func(int) time.Duration { return time.Millisecond },
	}

	return rc, server
}

func TestGet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/ticker.php", r.URL.Path)
			assert.Equal(t, "USD", r.URL.Query().Get("Currency"))
			// Some venues serve JSON as text/html.
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`{"last":"16.634"}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		var result tickerPayload
		err := rc.Get(context.Background(), "/api/ticker.php", url.Values{"Currency": {"USD"}}, &result)

		// Assert
		require.NoError(t, err)
		assert.True(t, result.Last.Equal(decimal.RequireFromString("16.634")))
	})

	t.Run("ClientErrorIsNotRetried", func(t *testing.T) {
		// Arrange
		var calls int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusNotFound)
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		err := rc.Get(context.Background(), "/missing", nil, &tickerPayload{})

		// Assert
		var transportErr *marketdata.TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, http.StatusNotFound, transportErr.StatusCode)
		assert.Equal(t, "testvenue", transportErr.Venue)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("ServerErrorRetriedThenSucceeds", func(t *testing.T) {
		// Arrange
		var calls int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"last":1}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		var result tickerPayload
		err := rc.Get(context.Background(), "/ticker", nil, &result)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
		assert.Equal(t, "1", result.Last.String())
	})

	t.Run("RetriesExhausted", func(t *testing.T) {
		// Arrange
		var calls int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusTooManyRequests)
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		err := rc.Get(context.Background(), "/ticker", nil, &tickerPayload{})

		// Assert
		assert.ErrorIs(t, err, marketdata.ErrTransport)
		assert.Contains(t, err.Error(), "request failed after 3 attempts")
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("MalformedBody", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		err := rc.Get(context.Background(), "/ticker", nil, &tickerPayload{})

		// Assert
		assert.ErrorIs(t, err, marketdata.ErrTransport)
		assert.Contains(t, err.Error(), "failed to decode response")
	})

	t.Run("CancelledContext", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Act
		err := rc.Get(ctx, "/ticker", nil, &tickerPayload{})

		// Assert
		assert.ErrorIs(t, err, marketdata.ErrTransport)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewRestClient(t *testing.T) {
	rc := NewRestClient("campbx", config.Venue{BaseURL: "http://campbx.test", RateLimit: 2, RateLimitBurst: 3}, zap.NewNop())

	assert.Equal(t, "http://campbx.test", rc.client.BaseURL)
	assert.Equal(t, rate.Limit(2), rc.limiter.Limit())
	assert.Equal(t, 3, rc.limiter.Burst())
	assert.Equal(t, defaultMaxRetries, rc.maxRetries)
	assert.Equal(t, 4*time.Second, rc.backoff(2))
}
