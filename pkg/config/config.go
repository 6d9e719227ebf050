// Package config loads harvest settings from the environment and an optional
// .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when a variable is unset.
const (
	DefaultSubreddit       = "championsleague"
	DefaultTotalPosts      = 1000
	DefaultPostsPerRequest = 100
	DefaultPageDelay       = time.Second
	DefaultBaseURL         = "https://www.reddit.com/r"
	DefaultUserAgent       = "Mozilla/5.0 reddit-data-collector"
	DefaultSearchSubreddit = "soccer"
	DefaultSearchQuery     = "Champions League"
	DefaultSearchLimit     = 100
	DefaultWikiURL         = "https://en.wikipedia.org/wiki/2025%E2%80%9326_UEFA_Champions_League"
	DefaultOutputDir       = "."

	// MaxPostsPerRequest is the largest page size the listing endpoint serves.
	MaxPostsPerRequest = 100
)

var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid configuration")

	// ErrMissingCredentials is returned by RequireCredentials.
	ErrMissingCredentials = errors.New("reddit API credentials are not configured")
)

// Credentials authenticate against the Reddit API for search.
// The search client uses the script-app password grant, so a username and
// password are required alongside the client id and secret.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// Complete reports whether every credential is set.
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.Username != "" && c.Password != ""
}

// Config is the full set of harvest settings.
type Config struct {
	Subreddit       string
	TotalPosts      int
	PostsPerRequest int
	PageDelay       time.Duration

	BaseURL   string
	UserAgent string

	Credentials     Credentials
	SearchSubreddit string
	SearchQuery     string
	SearchLimit     int

	WikiURL string

	OutputDir   string
	JSONExport  bool
	ExcelExport bool
	ChartExport bool

	// RedisURL enables the Redis sink when set. Accepts redis:// URLs or host:port.
	RedisURL string
	RedisTTL time.Duration

	// MetricsAddr enables the /metrics endpoint when set.
	MetricsAddr string
}

// Load reads .env (if present) and then the environment.
// Values already in the environment take precedence over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv without touching .env.
func FromEnv(getenv func(string) string) (*Config, error) {
	e := env{getenv: getenv}

	cfg := &Config{
		Subreddit:       e.getString("SUBREDDIT", DefaultSubreddit),
		TotalPosts:      e.getInt("TOTAL_POSTS", DefaultTotalPosts),
		PostsPerRequest: e.getInt("POSTS_PER_REQUEST", DefaultPostsPerRequest),
		PageDelay:       e.getDuration("PAGE_DELAY", DefaultPageDelay),
		BaseURL:         e.getString("REDDIT_BASE_URL", DefaultBaseURL),
		UserAgent:       e.getString("REDDIT_USER_AGENT", DefaultUserAgent),
		Credentials: Credentials{
			ClientID:     e.getString("REDDIT_CLIENT_ID", ""),
			ClientSecret: e.getString("REDDIT_CLIENT_SECRET", ""),
			Username:     e.getString("REDDIT_USERNAME", ""),
			Password:     e.getString("REDDIT_PASSWORD", ""),
		},
		SearchSubreddit: e.getString("SEARCH_SUBREDDIT", DefaultSearchSubreddit),
		SearchQuery:     e.getString("SEARCH_QUERY", DefaultSearchQuery),
		SearchLimit:     e.getInt("SEARCH_LIMIT", DefaultSearchLimit),
		WikiURL:         e.getString("WIKI_URL", DefaultWikiURL),
		OutputDir:       e.getString("OUTPUT_DIR", DefaultOutputDir),
		JSONExport:      e.getBool("JSON_EXPORT", false),
		ExcelExport:     e.getBool("EXCEL_EXPORT", false),
		ChartExport:     e.getBool("CHART_EXPORT", false),
		RedisURL:        e.getString("REDIS_URL", ""),
		RedisTTL:        e.getDuration("REDIS_TTL", 0),
		MetricsAddr:     e.getString("METRICS_ADDR", ""),
	}

	if len(e.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, errors.Join(e.errs...))
	}
	return cfg, nil
}

// Validate checks the settings the listing fetcher depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.Subreddit == "" {
		errs = append(errs, errors.New("SUBREDDIT must not be empty"))
	}
	if c.TotalPosts <= 0 {
		errs = append(errs, fmt.Errorf("TOTAL_POSTS must be positive (got %d)", c.TotalPosts))
	}
	if c.PostsPerRequest <= 0 || c.PostsPerRequest > MaxPostsPerRequest {
		errs = append(errs, fmt.Errorf("POSTS_PER_REQUEST must be in 1..%d (got %d)", MaxPostsPerRequest, c.PostsPerRequest))
	}
	if c.PageDelay < 0 {
		errs = append(errs, fmt.Errorf("PAGE_DELAY must not be negative (got %s)", c.PageDelay))
	}
	if c.UserAgent == "" {
		errs = append(errs, errors.New("REDDIT_USER_AGENT must not be empty"))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || !u.IsAbs() {
		errs = append(errs, fmt.Errorf("REDDIT_BASE_URL must be an absolute URL (got %q)", c.BaseURL))
	}
	if c.RedisTTL < 0 {
		errs = append(errs, fmt.Errorf("REDIS_TTL must not be negative (got %s)", c.RedisTTL))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// RequireCredentials fails unless all Reddit API credentials are set.
func (c *Config) RequireCredentials() error {
	if !c.Credentials.Complete() {
		return fmt.Errorf("%w: set REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, REDDIT_USERNAME and REDDIT_PASSWORD", ErrMissingCredentials)
	}
	return nil
}

// env reads typed values and collects parse errors.
type env struct {
	getenv func(string) string
	errs   []error
}

func (e *env) getString(key, def string) string {
	if v := e.getenv(key); v != "" {
		return v
	}
	return def
}

func (e *env) getInt(key string, def int) int {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (e *env) getBool(key string, def bool) bool {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

// getDuration accepts Go durations ("1s", "500ms") or plain seconds ("2", "0.5").
func (e *env) getDuration(key string, def time.Duration) time.Duration {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if sec, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(sec * float64(time.Second))
	}
	e.errs = append(e.errs, fmt.Errorf("%s: %q is not a duration", key, v))
	return def
}
