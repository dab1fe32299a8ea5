package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/treviro/treviro_service/internal/infrastructure/config"
	"github.com/treviro/treviro_service/pkg/circuitbreaker"
	"github.com/treviro/treviro_service/pkg/logger"
	"github.com/treviro/treviro_service/pkg/retry"
)

// Client fetches the external market data endpoints. Each endpoint gets its
// own circuit breaker so one flaky source does not block the others.
type Client struct {
	httpClient *http.Client
	cfg        config.MarketDataConfig
	logger     *logger.Logger

	retryConfig retry.RetryConfig
	breakers    map[string]*gobreaker.CircuitBreaker
}

// NewClient creates a market data client per the config.
func NewClient(cfg config.MarketDataConfig, log *logger.Logger) *Client {
	endpoints := []string{"exchange_rates", "gold_prices", "stock_quotes"}
	breakers := make(map[string]*gobreaker.CircuitBreaker, len(endpoints))
	for _, name := range endpoints {
		breakers[name] = circuitbreaker.New("marketdata_"+name, circuitbreaker.Defaults())
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		cfg:    cfg,
		logger: log,
		retryConfig: retry.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Duration(cfg.RetryBackoffMs) * time.Millisecond,
			MaxDelay:    30 * time.Second,
			Multiplier:  2.0,
		},
		breakers: breakers,
	}
}

// fetchJSON gets url and decodes the body into out, retrying transient
// failures behind the endpoint's circuit breaker.
func (c *Client) fetchJSON(ctx context.Context, endpoint, url string, out interface{}) error {
	if url == "" {
		return fmt.Errorf("%s endpoint is not configured", endpoint)
	}

	breaker := c.breakers[endpoint]
	return retry.WithExponentialBackoff(ctx, c.retryConfig, func() error {
		_, err := breaker.Execute(func() (interface{}, error) {
			return nil, c.doFetch(ctx, url, out)
		})
		return err
	}, func(err error) bool {
		// An open breaker fails fast; retrying inside the same run is futile.
		return err != gobreaker.ErrOpenState && err != gobreaker.ErrTooManyRequests
	})
}

func (c *Client) doFetch(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
