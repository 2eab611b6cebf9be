// Package scryfall is a client for the Scryfall card API, trimmed to the
// batch collection lookup the resolution pipeline needs.
package scryfall

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production Scryfall API endpoint.
	DefaultBaseURL = "https://api.scryfall.com"

	rateLimitDelay = 100 * time.Millisecond // 100ms between requests (10 req/sec)
	requestTimeout = 30 * time.Second
)

// Client represents a Scryfall API client with rate limiting.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	logger      *slog.Logger
}

// Options configures a Client. The zero value gives production defaults.
type Options struct {
	// BaseURL overrides the API endpoint. Tests point it at a local
	// server.
	BaseURL string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// UserAgent identifies this client to Scryfall.
	UserAgent string

	// Logger receives batch-failure and not-found diagnostics.
	Logger *slog.Logger
}

// NewClient creates a new Scryfall API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = requestTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "proxygen/1.0"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		// Rate limiter: 1 request per 100ms = 10 req/sec
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:   opts.UserAgent,
		logger:      opts.Logger,
	}
}
