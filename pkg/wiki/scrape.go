package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds one article download.
const DefaultTimeout = 30 * time.Second

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Scraper downloads and parses articles.
type Scraper struct {
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger
}

// NewScraper creates a scraper. A nil httpClient gets DefaultTimeout.
func NewScraper(httpClient *http.Client, userAgent string) *Scraper {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Scraper{
		httpClient: httpClient,
		userAgent:  userAgent,
		logger:     log.With().Str("component", "wiki").Logger(),
	}
}

// Scrape downloads url with the given User-Agent and extracts its sections.
func Scrape(ctx context.Context, url, userAgent string) (*Article, error) {
	return NewScraper(nil, userAgent).Scrape(ctx, url)
}

// Scrape downloads url and extracts its sections.
func (s *Scraper) Scrape(ctx context.Context, url string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	s.logger.Debug().Str("url", url).Msg("Fetching article")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: %w %d", url, ErrUnexpectedStatus, resp.StatusCode)
	}

	a, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	a.URL = url

	s.logger.Info().
		Str("url", url).
		Int("sections", len(a.Sections)).
		Msg("Article extracted")

	return a, nil
}
