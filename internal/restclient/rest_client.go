// Package restclient is the HTTP transport shared by the JSON polling venues.
package restclient

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"marketdata/internal/config"
	"marketdata/internal/marketdata"
)

const defaultMaxRetries = 3

// Transport fetches a venue endpoint and decodes its JSON body into result.
// Failures are reported as *marketdata.TransportError.
type Transport interface {
	Get(ctx context.Context, endpoint string, query url.Values, result interface{}) error
}

// RestClient is a rate limited, retrying JSON client for one venue.
// It implements the Transport interface.
type RestClient struct {
	venue      string
	client     *resty.Client
	logger     *zap.Logger
	limiter    *rate.Limiter
	maxRetries int
	backoff    func(attempt int) time.Duration
}

// ensure RestClient implements the interface
var _ Transport = (*RestClient)(nil)

// NewRestClient creates a client for the venue described by cfg.
func NewRestClient(venue string, cfg config.Venue, logger *zap.Logger) *RestClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")
	if cfg.TimeoutSeconds > 0 {
		client.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &RestClient{
		venue:      venue,
		client:     client,
		logger:     logger,
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: maxRetries,
		backoff:    exponentialBackoff,
	}
}

// exponentialBackoff waits 1s, 2s, 4s, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

// Get issues a GET request for endpoint and decodes the JSON response into result.
// Venues serving JSON with a non-JSON content type are decoded all the same.
func (c *RestClient) Get(ctx context.Context, endpoint string, query url.Values, result interface{}) error {
	req := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetResult(result).
		ForceContentType("application/json")

	_, err := c.doRequest(ctx, http.MethodGet, endpoint, req)
	return err
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *RestClient) doRequest(ctx context.Context, method, endpoint string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	var lastStatus int

	for i := 0; i < c.maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.transportError(endpoint, 0, fmt.Errorf("rate limiter wait failed: %w", err))
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+endpoint))
		resp, err = req.Execute(method, endpoint)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, c.transportError(endpoint, 0, ctxErr)
		}

		// A 2xx with an error means the body could not be decoded; retrying won't fix it.
		if err != nil && resp != nil && resp.IsSuccess() {
			return nil, c.transportError(endpoint, resp.StatusCode(), fmt.Errorf("failed to decode response: %w", err))
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && resp.RawResponse != nil {
			lastStatus = resp.StatusCode()
			if lastStatus == http.StatusTooManyRequests || lastStatus == http.StatusTeapot {
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if lastStatus >= http.StatusInternalServerError {
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, c.transportError(endpoint, lastStatus, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String()))
		}

		if i == c.maxRetries-1 {
			break
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			retryAfter = c.backoff(i)
		}

		c.logger.Warn("Request failed, retrying...",
			zap.String("venue", c.venue),
			zap.String("endpoint", endpoint),
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, c.transportError(endpoint, lastStatus, ctx.Err())
		}
	}

	if err == nil {
		err = errors.New(resp.Status())
	}
	return nil, c.transportError(endpoint, lastStatus, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries, err))
}

func (c *RestClient) transportError(endpoint string, status int, err error) error {
	return &marketdata.TransportError{Venue: c.venue, Endpoint: endpoint, StatusCode: status, Err: err}
}
