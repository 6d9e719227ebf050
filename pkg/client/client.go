// Package client performs single-page requests against a Reddit-style JSON
// listing endpoint and classifies failures.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/reddit-harvest/pkg/listing"
	"github.com/Sternrassler/reddit-harvest/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public subreddit listing root.
const DefaultBaseURL = "https://www.reddit.com/r"

// Prometheus metrics for listing requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_requests_total",
		Help: "Total listing page requests by collection and status",
	}, []string{"collection", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "harvest_request_duration_seconds",
		Help:    "Listing page request duration in seconds by collection",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"collection"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_errors_total",
		Help: "Total listing page errors by class",
	}, []string{"class"})
)

// Client fetches listing pages.
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	rateLimiter *ratelimit.Tracker
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the listing root; collections are appended as path segments.
	BaseURL string

	// UserAgent identifies the client (REQUIRED by Reddit).
	UserAgent string

	// Timeout per page request. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the default client (optional).
	HTTPClient *http.Client
}

// DefaultConfig returns the configuration for the public listing endpoint.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// New creates a new listing client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := log.With().Str("component", "listing-client").Logger()

	return &Client{
		httpClient:  httpClient,
		baseURL:     base,
		rateLimiter: ratelimit.NewTracker(logger),
		config:      cfg,
		logger:      logger,
	}, nil
}

// listingEnvelope is the wire shape of a listing response.
type listingEnvelope struct {
	Data struct {
		After    *string `json:"after"`
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchPage requests one page of up to limit items from collection,
// continuing after the given cursor when it is non-empty.
// Any outcome other than 200 with a decodable body is a *ListingError.
func (c *Client) FetchPage(ctx context.Context, collection string, limit int, after string) (*listing.Page, error) {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(collection).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(collection, limit, after), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("collection", collection).
		Int("limit", limit).
		Str("after", after).
		Msg("Requesting listing page")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(collection, "network_error").Inc()
		return nil, &ListingError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.UpdateFromHeaders(resp.Header); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to read quota headers")
	}

	requestsTotal.WithLabelValues(collection, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("collection", collection).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Listing request error")
		return nil, &ListingError{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    resp.Status,
		}
	}

	var env listingEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &ListingError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "decode listing body",
			Err:        err,
		}
	}

	page := &listing.Page{Items: make([]json.RawMessage, 0, len(env.Data.Children))}
	for _, child := range env.Data.Children {
		page.Items = append(page.Items, child.Data)
	}
	if env.Data.After != nil {
		page.After = *env.Data.After
	}

	c.logger.Debug().
		Str("collection", collection).
		Int("items", len(page.Items)).
		Bool("has_next", page.After != "").
		Dur("duration", time.Since(start)).
		Msg("Listing page received")

	return page, nil
}

// pageURL builds {base}/{collection}/.json?limit=N[&after=C].
func (c *Client) pageURL(collection string, limit int, after string) string {
	u := c.baseURL.JoinPath(strings.Trim(collection, "/"), ".json")
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if after != "" {
		q.Set("after", after)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RateLimit returns the quota tracker fed by this client's responses.
func (c *Client) RateLimit() *ratelimit.Tracker {
	return c.rateLimiter
}
