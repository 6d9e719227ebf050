package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	want := &Config{
		Subreddit:       DefaultSubreddit,
		TotalPosts:      DefaultTotalPosts,
		PostsPerRequest: DefaultPostsPerRequest,
		PageDelay:       DefaultPageDelay,
		BaseURL:         DefaultBaseURL,
		UserAgent:       DefaultUserAgent,
		SearchSubreddit: DefaultSearchSubreddit,
		SearchQuery:     DefaultSearchQuery,
		SearchLimit:     DefaultSearchLimit,
		WikiURL:         DefaultWikiURL,
		OutputDir:       DefaultOutputDir,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("FromEnv() mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"SUBREDDIT":         "soccer",
		"TOTAL_POSTS":       "250",
		"POSTS_PER_REQUEST": "50",
		"PAGE_DELAY":        "250ms",
		"JSON_EXPORT":       "true",
		"REDIS_URL":         "redis://localhost:6379/0",
		"REDIS_TTL":         "3600",
		"METRICS_ADDR":      ":9090",
	}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Subreddit != "soccer" || cfg.TotalPosts != 250 || cfg.PostsPerRequest != 50 {
		t.Errorf("unexpected listing settings: %+v", cfg)
	}
	if cfg.PageDelay != 250*time.Millisecond {
		t.Errorf("PageDelay = %s, want 250ms", cfg.PageDelay)
	}
	if cfg.RedisTTL != time.Hour {
		t.Errorf("RedisTTL = %s, want 1h (plain seconds)", cfg.RedisTTL)
	}
	if !cfg.JSONExport || cfg.ExcelExport {
		t.Errorf("JSONExport=%v ExcelExport=%v, want true/false", cfg.JSONExport, cfg.ExcelExport)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
}

func TestFromEnv_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"integer", "TOTAL_POSTS", "lots"},
		{"boolean", "EXCEL_EXPORT", "sometimes"},
		{"duration", "PAGE_DELAY", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(map[string]string{tt.key: tt.val}))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("FromEnv() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, _ := FromEnv(envMap(nil))
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty subreddit", func(c *Config) { c.Subreddit = "" }},
		{"zero target", func(c *Config) { c.TotalPosts = 0 }},
		{"page size zero", func(c *Config) { c.PostsPerRequest = 0 }},
		{"page size above max", func(c *Config) { c.PostsPerRequest = MaxPostsPerRequest + 1 }},
		{"negative delay", func(c *Config) { c.PageDelay = -time.Second }},
		{"empty user agent", func(c *Config) { c.UserAgent = "" }},
		{"relative base url", func(c *Config) { c.BaseURL = "reddit.com/r" }},
		{"negative ttl", func(c *Config) { c.RedisTTL = -time.Minute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg, _ := FromEnv(envMap(map[string]string{
		"REDDIT_CLIENT_ID":     "id",
		"REDDIT_CLIENT_SECRET": "secret",
		"REDDIT_USERNAME":      "user",
	}))
	if err := cfg.RequireCredentials(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("RequireCredentials() error = %v, want ErrMissingCredentials", err)
	}

	cfg.Credentials.Password = "pw"
	if err := cfg.RequireCredentials(); err != nil {
		t.Errorf("RequireCredentials() error = %v, want nil", err)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SUBREDDIT=fromfile\nTOTAL_POSTS=42\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	// Environment wins over .env.
	t.Setenv("TOTAL_POSTS", "7")
	t.Cleanup(func() { os.Unsetenv("SUBREDDIT") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Subreddit != "fromfile" {
		t.Errorf("Subreddit = %q, want value from .env", cfg.Subreddit)
	}
	if cfg.TotalPosts != 7 {
		t.Errorf("TotalPosts = %d, want environment value 7", cfg.TotalPosts)
	}
}

func TestLoad_NoDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := Load(); err != nil {
		t.Errorf("Load() without .env error = %v", err)
	}
}
