package marketdata

import (
	"log/slog"
	"net/http"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"github.com/rickgao/tickerwatch/internal/version"
)

// DefaultBaseURL is the production Finnhub API root.
const DefaultBaseURL = "https://finnhub.io/api/v1"

const tokenHeader = "X-Finnhub-Token"

// Client provides access to the Finnhub REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	location   *time.Location
	now        func() time.Time

	maxRetries   int
	retryBackoff time.Duration

	api *finnhub.DefaultApiService
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Finnhub client. An empty baseURL selects
// DefaultBaseURL.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:       slog.Default(),
		location:     time.UTC,
		now:          time.Now,
		maxRetries:   2,
		retryBackoff: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader(tokenHeader, c.apiKey)
	cfg.UserAgent = version.UserAgent()
	cfg.HTTPClient = c.httpClient
	cfg.Servers = finnhub.ServerConfigurations{{URL: c.baseURL}}
	c.api = finnhub.NewAPIClient(cfg).DefaultApi

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLocation sets the market timezone used to compute news date windows.
func WithLocation(loc *time.Location) ClientOption {
	return func(c *Client) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithClock overrides the wall clock. Used by tests.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
