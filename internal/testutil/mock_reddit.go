// Package testutil provides a mock listing server for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// MaxLimit is the per-request ceiling the mock enforces, matching Reddit.
const MaxLimit = 100

// MockReddit is a configurable mock listing server.
// Every collection serves the same synthetic items; ids are post001,
// post002, ... in source order, and cursors are the fullname (t3_<id>) of
// the last item on a page.
type MockReddit struct {
	server *httptest.Server

	mu         sync.Mutex
	items      []map[string]any
	failOn     map[int]int
	rawPages   map[int]string
	omitCursor map[int]bool
	requests   []url.Values
	userAgents []string
	paths      []string
}

// NewMockReddit creates a server holding n synthetic items.
func NewMockReddit(n int) *MockReddit {
	m := &MockReddit{
		failOn:     make(map[int]int),
		rawPages:   make(map[int]string),
		omitCursor: make(map[int]bool),
	}
	for i := 1; i <= n; i++ {
		m.items = append(m.items, NewItem(i))
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// NewItem builds the synthetic listing item with the given position.
func NewItem(i int) map[string]any {
	id := ItemID(i)
	return map[string]any{
		"id":           id,
		"name":         "t3_" + id,
		"title":        fmt.Sprintf("Post number %d", i),
		"author":       fmt.Sprintf("user%d", i%7),
		"score":        i * 3,
		"num_comments": i % 11,
		"created_utc":  float64(1700000000 + i*60),
		"upvote_ratio": 0.5 + float64(i%50)/100,
		"url":          "https://www.reddit.com/r/test/comments/" + id + "/",
		"selftext":     "",
	}
}

// ItemID returns the id of the i-th synthetic item (1-based).
func ItemID(i int) string {
	return fmt.Sprintf("post%03d", i)
}

// URL returns the listing base URL (server root + "/r").
func (m *MockReddit) URL() string {
	return m.server.URL + "/r"
}

// Close shuts down the mock server.
func (m *MockReddit) Close() {
	m.server.Close()
}

// FailOnRequest makes the n-th request (1-based) answer with status.
func (m *MockReddit) FailOnRequest(n, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[n] = status
}

// SetRawPage makes the n-th request (1-based) answer 200 with body as-is.
func (m *MockReddit) SetRawPage(n int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawPages[n] = body
}

// OmitCursorOnRequest drops the after cursor from the n-th response even
// when more items remain.
func (m *MockReddit) OmitCursorOnRequest(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.omitCursor[n] = true
}

// RequestCount returns the number of requests received.
func (m *MockReddit) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns the query parameters of every request in order.
func (m *MockReddit) Requests() []url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]url.Values, len(m.requests))
	copy(out, m.requests)
	return out
}

// Paths returns the URL path of every request in order.
func (m *MockReddit) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.paths))
	copy(out, m.paths)
	return out
}

// LastUserAgent returns the User-Agent of the latest request.
func (m *MockReddit) LastUserAgent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.userAgents) == 0 {
		return ""
	}
	return m.userAgents[len(m.userAgents)-1]
}

func (m *MockReddit) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests = append(m.requests, r.URL.Query())
	m.userAgents = append(m.userAgents, r.Header.Get("User-Agent"))
	m.paths = append(m.paths, r.URL.Path)
	n := len(m.requests)
	status, fail := m.failOn[n]
	raw, hasRaw := m.rawPages[n]
	omit := m.omitCursor[n]
	m.mu.Unlock()

	w.Header().Set("X-Ratelimit-Used", strconv.Itoa(n))
	w.Header().Set("X-Ratelimit-Remaining", strconv.Itoa(100-n)+".0")
	w.Header().Set("X-Ratelimit-Reset", "300")

	if r.Header.Get("User-Agent") == "" {
		http.Error(w, `{"message": "Too Many Requests", "error": 429}`, http.StatusTooManyRequests)
		return
	}
	if !strings.HasSuffix(r.URL.Path, "/.json") {
		http.NotFound(w, r)
		return
	}
	if fail {
		w.WriteHeader(status)
		w.Write([]byte(`{"message": "injected failure"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if hasRaw {
		w.Write([]byte(raw))
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 25
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	start := 0
	if after := r.URL.Query().Get("after"); after != "" {
		start = -1
		for i, item := range m.items {
			if item["name"] == after {
				start = i + 1
				break
			}
		}
		if start < 0 {
			start = len(m.items)
		}
	}
	end := start + limit
	if end > len(m.items) {
		end = len(m.items)
	}

	children := make([]map[string]any, 0, end-start)
	for _, item := range m.items[start:end] {
		children = append(children, map[string]any{"kind": "t3", "data": item})
	}

	var after any
	if end < len(m.items) && end > start && !omit {
		after = m.items[end-1]["name"]
	}

	json.NewEncoder(w).Encode(map[string]any{
		"kind": "Listing",
		"data": map[string]any{
			"after":    after,
			"dist":     len(children),
			"children": children,
			"before":   nil,
		},
	})
}
