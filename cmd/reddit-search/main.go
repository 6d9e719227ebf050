// Command reddit-search runs an authenticated subreddit search and saves
// every result with its comments to ucl_reddit_raw.json.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Sternrassler/reddit-harvest/internal/cli"
	"github.com/Sternrassler/reddit-harvest/pkg/config"
	"github.com/Sternrassler/reddit-harvest/pkg/export"
	"github.com/Sternrassler/reddit-harvest/pkg/logging"
	"github.com/Sternrassler/reddit-harvest/pkg/search"
)

const outputName = "ucl_reddit_raw.json"

func main() {
	os.Exit(cli.Main("reddit-search", run))
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	searcher, err := search.NewRedditSearcher(search.Credentials{
		ID:       cfg.Credentials.ClientID,
		Secret:   cfg.Credentials.ClientSecret,
		Username: cfg.Credentials.Username,
		Password: cfg.Credentials.Password,
	}, cfg.UserAgent, search.DefaultRequestInterval)
	if err != nil {
		return err
	}

	return collect(ctx, searcher, cfg, out)
}

// collect runs the search and writes whatever threads were gathered.
func collect(ctx context.Context, s search.Searcher, cfg *config.Config, out io.Writer) error {
	logger := logging.NewLogger("reddit-search")

	threads, err := search.Collect(ctx, s, cfg.SearchQuery, cfg.SearchSubreddit, cfg.SearchLimit)
	if err != nil {
		if len(threads) == 0 {
			return err
		}
		logger.Warn().Err(err).Int("threads", len(threads)).Msg("Search ended early - writing partial results")
	}
	if len(threads) == 0 {
		return fmt.Errorf("search r/%s for %q: %w", cfg.SearchSubreddit, cfg.SearchQuery, export.ErrNoRecords)
	}

	path := filepath.Join(cfg.OutputDir, outputName)
	if err := export.SaveJSON(path, threads); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	logger.Info().Str("path", path).Int("threads", len(threads)).Msg("Search results written")
	fmt.Fprintln(out, "Saved Reddit data")
	return nil
}
