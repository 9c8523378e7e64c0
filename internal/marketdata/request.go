package marketdata

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"
)

// ErrUnavailable is returned when the provider cannot produce a usable
// result for a symbol.
var ErrUnavailable = errors.New("market data unavailable")

// APIError represents a non-2xx response from the Finnhub API.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("finnhub api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// callFunc is one attempt against the generated SDK. The SDK already reads
// and closes the response body.
type callFunc func(ctx context.Context) (*http.Response, error)

// classify turns an SDK result into an *APIError when the server answered
// with an error status.
func classify(resp *http.Response, err error) error {
	if resp != nil && resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Err:        err,
		}
	}
	return err
}

// doWithRetry runs call with exponential backoff retry.
func (c *Client) doWithRetry(ctx context.Context, op string, call callFunc) error {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff
			if backoff > 0 {
				jitter = backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			}
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", jitter,
				"op", op,
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		err := classify(call(ctx))
		if err == nil {
			return nil
		}

		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
