package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestUpdateFromHeaders(t *testing.T) {
	fixed := time.Date(2025, 9, 16, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		headers       map[string]string
		wantErr       bool
		wantState     bool
		wantRemaining float64
		wantUsed      int
		wantResetIn   time.Duration
	}{
		{
			name: "full headers",
			headers: map[string]string{
				HeaderUsed:      "4",
				HeaderRemaining: "96.0",
				HeaderReset:     "412",
			},
			wantState:     true,
			wantRemaining: 96,
			wantUsed:      4,
			wantResetIn:   412 * time.Second,
		},
		{
			name: "remaining only",
			headers: map[string]string{
				HeaderRemaining: "3",
			},
			wantState:     true,
			wantRemaining: 3,
		},
		{
			name:      "no quota headers",
			headers:   map[string]string{"Content-Type": "application/json"},
			wantState: false,
		},
		{
			name:    "invalid remaining",
			headers: map[string]string{HeaderRemaining: "lots"},
			wantErr: true,
		},
		{
			name: "invalid used",
			headers: map[string]string{
				HeaderRemaining: "10",
				HeaderUsed:      "x",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(zerolog.Nop())
			tracker.now = func() time.Time { return fixed }

			headers := http.Header{}
			for k, v := range tt.headers {
				headers.Set(k, v)
			}

			err := tracker.UpdateFromHeaders(headers)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UpdateFromHeaders() error = %v, wantErr %v", err, tt.wantErr)
			}

			state := tracker.State()
			if !tt.wantState {
				if state != nil {
					t.Errorf("State() = %+v, want nil", state)
				}
				return
			}
			if state == nil {
				t.Fatal("State() = nil, want state")
			}
			if state.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %v, want %v", state.Remaining, tt.wantRemaining)
			}
			if state.Used != tt.wantUsed {
				t.Errorf("Used = %v, want %v", state.Used, tt.wantUsed)
			}
			if got := state.ResetAt.Sub(fixed); got != tt.wantResetIn {
				t.Errorf("reset in %v, want %v", got, tt.wantResetIn)
			}
		})
	}
}

func TestTracker_StateIsCopy(t *testing.T) {
	tracker := NewTracker(zerolog.Nop())
	headers := http.Header{}
	headers.Set(HeaderRemaining, "50")
	if err := tracker.UpdateFromHeaders(headers); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}

	s := tracker.State()
	s.Remaining = 0

	if got := tracker.State().Remaining; got != 50 {
		t.Errorf("Remaining = %v after mutating copy, want 50", got)
	}
}
