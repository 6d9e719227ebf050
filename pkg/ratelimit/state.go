// Package ratelimit records Reddit's request quota headers.
// It reads X-Ratelimit-Used, X-Ratelimit-Remaining and X-Ratelimit-Reset
// from each response and exposes the latest values as a gauge and log
// fields. It never delays or blocks a request.
package ratelimit

import (
	"time"
)

// Response headers carrying the request quota.
const (
	HeaderUsed      = "X-Ratelimit-Used"
	HeaderRemaining = "X-Ratelimit-Remaining"
	HeaderReset     = "X-Ratelimit-Reset"
)

// Thresholds used to pick the log level of a quota update.
const (
	// RemainingThresholdLow logs at error level below this value.
	RemainingThresholdLow = 5

	// RemainingThresholdWarning logs at warn level below this value.
	RemainingThresholdWarning = 20
)

// State is the last quota reported by the listing service.
type State struct {
	// Used is the number of requests made in the current window.
	Used int `json:"used"`

	// Remaining is the number of requests left in the current window.
	Remaining float64 `json:"remaining"`

	// ResetAt is when the window resets, from X-Ratelimit-Reset (seconds).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when the headers were observed.
	LastUpdate time.Time `json:"last_update"`
}

// IsStale returns true if the state is older than maxAge.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// IsLow returns true if almost no requests remain in the window.
func (s *State) IsLow() bool {
	return s.Remaining < RemainingThresholdLow
}

// IsWarning returns true if the quota is getting tight but not yet low.
func (s *State) IsWarning() bool {
	return s.Remaining < RemainingThresholdWarning && !s.IsLow()
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}
