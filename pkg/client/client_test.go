package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sternrassler/reddit-harvest/internal/testutil"
)

const testUserAgent = "reddit-harvest-test/1.0 (test@example.com)"

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			config:      DefaultConfig(testUserAgent),
			expectError: false,
		},
		{
			name:        "empty user agent",
			config:      Config{BaseURL: DefaultBaseURL},
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name:        "relative base url",
			config:      Config{BaseURL: "/r", UserAgent: testUserAgent},
			expectError: true,
			errorMsg:    `base url must be absolute (got "/r")`,
		},
		{
			name:        "empty base url falls back to default",
			config:      Config{UserAgent: testUserAgent},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error but got nil")
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c == nil {
				t.Fatal("Client is nil")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(testUserAgent)

	if cfg.UserAgent != testUserAgent {
		t.Errorf("UserAgent = %q, want %q", cfg.UserAgent, testUserAgent)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.Timeout <= 0 {
		t.Errorf("Timeout = %v, should be > 0", cfg.Timeout)
	}
}

func TestPageURL(t *testing.T) {
	c, err := New(Config{BaseURL: "https://www.reddit.com/r", UserAgent: testUserAgent})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name       string
		collection string
		limit      int
		after      string
		want       string
	}{
		{
			name:       "first page",
			collection: "championsleague",
			limit:      100,
			want:       "https://www.reddit.com/r/championsleague/.json?limit=100",
		},
		{
			name:       "with cursor",
			collection: "championsleague",
			limit:      100,
			after:      "t3_1abcde",
			want:       "https://www.reddit.com/r/championsleague/.json?after=t3_1abcde&limit=100",
		},
		{
			name:       "sorted feed",
			collection: "/soccer/new/",
			limit:      25,
			want:       "https://www.reddit.com/r/soccer/new/.json?limit=25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.pageURL(tt.collection, tt.limit, tt.after); got != tt.want {
				t.Errorf("pageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchPage_Success(t *testing.T) {
	mock := testutil.NewMockReddit(150)
	defer mock.Close()

	c, err := New(Config{BaseURL: mock.URL(), UserAgent: testUserAgent})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	page, err := c.FetchPage(context.Background(), "test", 100, "")
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if len(page.Items) != 100 {
		t.Errorf("items = %d, want 100", len(page.Items))
	}
	if page.After != "t3_"+testutil.ItemID(100) {
		t.Errorf("After = %q, want %q", page.After, "t3_"+testutil.ItemID(100))
	}
	if mock.LastUserAgent() != testUserAgent {
		t.Errorf("User-Agent = %q, want %q", mock.LastUserAgent(), testUserAgent)
	}

	page, err = c.FetchPage(context.Background(), "test", 100, page.After)
	if err != nil {
		t.Fatalf("second FetchPage() error = %v", err)
	}
	if len(page.Items) != 50 {
		t.Errorf("items = %d, want 50", len(page.Items))
	}
	if page.After != "" {
		t.Errorf("After = %q, want empty on last page", page.After)
	}

	if got := mock.Paths()[0]; got != "/r/test/.json" {
		t.Errorf("path = %q, want /r/test/.json", got)
	}
}

func TestFetchPage_FeedsRateLimitTracker(t *testing.T) {
	mock := testutil.NewMockReddit(5)
	defer mock.Close()

	c, err := New(Config{BaseURL: mock.URL(), UserAgent: testUserAgent})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.RateLimit().State() != nil {
		t.Fatal("State() should be nil before any request")
	}

	if _, err := c.FetchPage(context.Background(), "test", 10, ""); err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	state := c.RateLimit().State()
	if state == nil {
		t.Fatal("State() = nil after request")
	}
	if state.Used != 1 || state.Remaining != 99 {
		t.Errorf("state = used %d remaining %v, want 1 and 99", state.Used, state.Remaining)
	}
}

func TestFetchPage_ErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		expected   ErrorClass
	}{
		{"not found", http.StatusNotFound, ErrorClassClient},
		{"forbidden", http.StatusForbidden, ErrorClassClient},
		{"too many requests", http.StatusTooManyRequests, ErrorClassRateLimit},
		{"server error", http.StatusInternalServerError, ErrorClassServer},
		{"bad gateway", http.StatusBadGateway, ErrorClassServer},
		{"no content", http.StatusNoContent, ErrorClassUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockReddit(10)
			defer mock.Close()
			mock.FailOnRequest(1, tt.statusCode)

			c, err := New(Config{BaseURL: mock.URL(), UserAgent: testUserAgent})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			page, err := c.FetchPage(context.Background(), "test", 10, "")
			if page != nil {
				t.Errorf("page = %+v, want nil", page)
			}

			var le *ListingError
			if !errors.As(err, &le) {
				t.Fatalf("error = %v, want *ListingError", err)
			}
			if le.ErrorClass != tt.expected {
				t.Errorf("ErrorClass = %q, want %q", le.ErrorClass, tt.expected)
			}
			if le.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %d, want %d", le.StatusCode, tt.statusCode)
			}
		})
	}
}

func TestFetchPage_DecodeError(t *testing.T) {
	mock := testutil.NewMockReddit(10)
	defer mock.Close()
	mock.SetRawPage(1, `<html>not json</html>`)

	c, err := New(Config{BaseURL: mock.URL(), UserAgent: testUserAgent})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.FetchPage(context.Background(), "test", 10, "")
	var le *ListingError
	if !errors.As(err, &le) || le.ErrorClass != ErrorClassDecode {
		t.Fatalf("error = %v, want decode ListingError", err)
	}
	if le.Unwrap() == nil {
		t.Error("decode error should wrap the json error")
	}
}

func TestFetchPage_NullCursor(t *testing.T) {
	mock := testutil.NewMockReddit(0)
	defer mock.Close()
	mock.SetRawPage(1, `{"data": {"after": null, "children": [{"kind": "t3", "data": {"id": "x"}}]}}`)

	c, err := New(Config{BaseURL: mock.URL(), UserAgent: testUserAgent})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	page, err := c.FetchPage(context.Background(), "test", 10, "")
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if len(page.Items) != 1 || page.After != "" {
		t.Errorf("page = %d items after %q, want 1 item and no cursor", len(page.Items), page.After)
	}
}

func TestFetchPage_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c, err := New(Config{
		BaseURL:   server.URL + "/r",
		UserAgent: testUserAgent,
		Timeout:   20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.FetchPage(context.Background(), "test", 10, "")
	var le *ListingError
	if !errors.As(err, &le) || le.ErrorClass != ErrorClassNetwork {
		t.Fatalf("error = %v, want network ListingError", err)
	}
}

func TestFetchPage_ContextCancelled(t *testing.T) {
	mock := testutil.NewMockReddit(10)
	defer mock.Close()

	c, err := New(Config{BaseURL: mock.URL(), UserAgent: testUserAgent})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.FetchPage(ctx, "test", 10, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled in chain", err)
	}
}
