package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota observation.
var (
	quotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "harvest_ratelimit_remaining",
		Help: "Requests remaining in the current listing quota window",
	})

	quotaUsed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "harvest_ratelimit_used",
		Help: "Requests used in the current listing quota window",
	})

	quotaLowTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_ratelimit_low_total",
		Help: "Responses observed with the quota below the low threshold",
	})
)

// Tracker keeps the most recent quota State.
// It is safe for concurrent use.
type Tracker struct {
	mu     sync.RWMutex
	state  *State
	logger zerolog.Logger
	now    func() time.Time
}

// NewTracker creates a new quota tracker.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		logger: logger,
		now:    time.Now,
	}
}

// State returns a copy of the last observed state, or nil if no quota
// headers have been seen yet.
func (t *Tracker) State() *State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.state == nil {
		return nil
	}
	s := *t.state
	return &s
}

// UpdateFromHeaders parses the quota headers of a response.
// Responses without X-Ratelimit-Remaining are ignored.
func (t *Tracker) UpdateFromHeaders(headers http.Header) error {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil
	}

	remain, err := strconv.ParseFloat(remainStr, 64)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	var used int
	if usedStr := headers.Get(HeaderUsed); usedStr != "" {
		if used, err = strconv.Atoi(usedStr); err != nil {
			return fmt.Errorf("parse %s header: %w", HeaderUsed, err)
		}
	}

	var resetSeconds float64
	if resetStr := headers.Get(HeaderReset); resetStr != "" {
		if resetSeconds, err = strconv.ParseFloat(resetStr, 64); err != nil {
			return fmt.Errorf("parse %s header: %w", HeaderReset, err)
		}
	}

	now := t.now()
	state := &State{
		Used:       used,
		Remaining:  remain,
		ResetAt:    now.Add(time.Duration(resetSeconds * float64(time.Second))),
		LastUpdate: now,
	}

	t.mu.Lock()
	t.state = state
	t.mu.Unlock()

	quotaRemaining.Set(remain)
	quotaUsed.Set(float64(used))

	switch {
	case state.IsLow():
		quotaLowTotal.Inc()
		t.logger.Error().
			Float64("remaining", remain).
			Dur("reset_in", state.TimeUntilReset()).
			Msg("Listing quota nearly exhausted")
	case state.IsWarning():
		t.logger.Warn().
			Float64("remaining", remain).
			Dur("reset_in", state.TimeUntilReset()).
			Msg("Listing quota running low")
	default:
		t.logger.Debug().
			Float64("remaining", remain).
			Int("used", used).
			Msg("Listing quota updated")
	}

	return nil
}
