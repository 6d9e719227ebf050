package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/reddit-harvest/pkg/listing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxPageSize is Reddit's per-request item ceiling.
const MaxPageSize = 100

// Prometheus metrics for fetch runs.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_pages_fetched_total",
		Help: "Listing pages requested by collection",
	}, []string{"collection"})

	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_records_total",
		Help: "Records flattened by collection",
	}, []string{"collection"})

	itemsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_items_skipped_total",
		Help: "Listing items dropped at the flattening boundary by reason",
	}, []string{"reason"})

	fieldGapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_field_gaps_total",
		Help: "Required fields missing from otherwise valid items",
	}, []string{"field"})

	fetchStopsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_fetch_stops_total",
		Help: "Fetch runs by terminal reason",
	}, []string{"reason"})
)

// Argument errors returned by Fetch before any request is made.
var (
	ErrInvalidTarget   = errors.New("target count must be >= 1")
	ErrInvalidPageSize = errors.New("page size out of range")
)

// Config holds fetcher configuration.
type Config struct {
	// PageSize is the number of items requested per page.
	PageSize int

	// MaxPageSize is the source's per-request ceiling (default: MaxPageSize).
	MaxPageSize int

	// Delay is the fixed pause after every page that has a next cursor.
	Delay time.Duration

	// MaxPages caps the number of page requests. Zero means no cap.
	MaxPages int
}

// DefaultConfig returns the configuration used against Reddit.
func DefaultConfig() Config {
	return Config{
		PageSize:    100,
		MaxPageSize: MaxPageSize,
		Delay:       1 * time.Second,
	}
}

// PageFetcher is the single-page request the fetcher drives.
type PageFetcher interface {
	// FetchPage fetches up to limit items of collection after the cursor.
	FetchPage(ctx context.Context, collection string, limit int, after string) (*listing.Page, error)
}

// StopReason tells why a fetch run ended.
type StopReason string

const (
	StopTargetReached StopReason = "target_reached"
	StopEmptyPage     StopReason = "empty_page"
	StopNoCursor      StopReason = "no_cursor"
	StopPageFailed    StopReason = "page_failed"
	StopPageLimit     StopReason = "page_limit"
)

// Result is the outcome of one fetch run.
type Result struct {
	// Records are the first target records in source order.
	Records []listing.Record

	// Pages is the number of page requests attempted, including a failed one.
	Pages int

	// Delays is the number of inter-page pauses taken.
	Delays int

	// Skipped counts items dropped for a missing id or malformed body.
	Skipped int

	// Stop is the terminal condition.
	Stop StopReason

	// Err is the page failure when Stop is StopPageFailed.
	Err error
}

// Partial reports whether the run ended on a failed page.
func (r *Result) Partial() bool {
	return r.Stop == StopPageFailed
}

// Fetcher drives a PageFetcher through the listing cursor.
type Fetcher struct {
	pages  PageFetcher
	config Config
	sleep  func(time.Duration)
	logger zerolog.Logger
}

// NewFetcher creates a new fetcher.
func NewFetcher(pages PageFetcher, config Config) *Fetcher {
	if config.MaxPageSize <= 0 {
		config.MaxPageSize = MaxPageSize
	}
	if config.PageSize == 0 {
		config.PageSize = config.MaxPageSize
	}
	if config.Delay < 0 {
		config.Delay = 0
	}
	if config.MaxPages < 0 {
		config.MaxPages = 0
	}

	return &Fetcher{
		pages:  pages,
		config: config,
		sleep:  time.Sleep,
		logger: log.With().Str("component", "pagination").Logger(),
	}
}

// SetSleep replaces the inter-page pause (for testing).
func (f *Fetcher) SetSleep(sleep func(time.Duration)) {
	f.sleep = sleep
}

// Config returns the effective configuration.
func (f *Fetcher) Config() Config {
	return f.config
}

// Fetch retrieves up to target records from collection.
// The returned error is non-nil only for invalid arguments. A failed page
// ends the run with Result.Stop == StopPageFailed and Result.Err set, and
// the records of all earlier pages are kept.
func (f *Fetcher) Fetch(ctx context.Context, collection string, target int) (*Result, error) {
	if target < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidTarget, target)
	}
	if f.config.PageSize < 1 || f.config.PageSize > f.config.MaxPageSize {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidPageSize, f.config.PageSize, f.config.MaxPageSize)
	}

	start := time.Now()
	logger := f.logger.With().Str("collection", collection).Logger()
	logger.Info().
		Int("target", target).
		Int("page_size", f.config.PageSize).
		Dur("delay", f.config.Delay).
		Msg("Starting listing fetch")

	res := &Result{}
	after := ""

	for {
		page, err := f.pages.FetchPage(ctx, collection, f.config.PageSize, after)
		res.Pages++
		pagesFetchedTotal.WithLabelValues(collection).Inc()
		if err != nil {
			res.Stop = StopPageFailed
			res.Err = err
			logger.Warn().
				Err(err).
				Int("page", res.Pages).
				Int("collected", len(res.Records)).
				Msg("Page fetch failed - returning partial results")
			break
		}

		if len(page.Items) == 0 {
			res.Stop = StopEmptyPage
			break
		}

		before := len(res.Records)
		for _, raw := range page.Items {
			rec, gaps, err := listing.Flatten(raw)
			if err != nil {
				res.Skipped++
				itemsSkippedTotal.WithLabelValues(skipReason(err)).Inc()
				logger.Debug().Err(err).Int("page", res.Pages).Msg("Skipping listing item")
				continue
			}
			for _, field := range gaps {
				fieldGapsTotal.WithLabelValues(field).Inc()
			}
			if len(gaps) > 0 {
				logger.Debug().Str("id", rec.ID).Strs("missing", gaps).Msg("Item has field gaps")
			}
			res.Records = append(res.Records, rec)
		}
		recordsTotal.WithLabelValues(collection).Add(float64(len(res.Records) - before))

		logger.Info().
			Int("page", res.Pages).
			Int("collected", len(res.Records)).
			Msg("Collected page")

		if page.After == "" {
			res.Stop = StopNoCursor
			break
		}
		if page.After == after {
			// a cursor that does not advance would loop forever
			logger.Warn().Str("after", after).Msg("Cursor did not advance - treating as exhausted")
			res.Stop = StopNoCursor
			break
		}
		after = page.After

		if f.config.MaxPages > 0 && res.Pages >= f.config.MaxPages {
			res.Stop = StopPageLimit
			if len(res.Records) >= target {
				res.Stop = StopTargetReached
			}
			break
		}

		f.sleep(f.config.Delay)
		res.Delays++

		if len(res.Records) >= target {
			res.Stop = StopTargetReached
			break
		}
	}

	if len(res.Records) > target {
		res.Records = res.Records[:target]
	}
	fetchStopsTotal.WithLabelValues(string(res.Stop)).Inc()

	logger.Info().
		Int("records", len(res.Records)).
		Int("pages", res.Pages).
		Int("skipped", res.Skipped).
		Str("stop", string(res.Stop)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return res, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, listing.ErrMissingID):
		return "missing_id"
	case errors.Is(err, listing.ErrMalformedItem):
		return "malformed"
	default:
		return "other"
	}
}
