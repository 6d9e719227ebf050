// Command subreddit-posts saves one page of a subreddit listing to
// {subreddit}_posts.csv and prints a preview.
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
)

func main() {
	os.Exit(cli.Main("subreddit-posts", run))
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := logging.NewLogger("subreddit-posts")

	fetcher, err := cli.NewFetcher(cfg, 0, 1)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Fetching posts from r/%s...\n", cfg.Subreddit)

	res, err := fetcher.Fetch(ctx, cfg.Subreddit, cfg.PostsPerRequest)
	if err != nil {
		return err
	}
	cli.ReportResult(logger, res)

	if len(res.Records) > 0 {
		export.Preview(out, res.Records, export.DefaultPreviewRows)
	}

	path := filepath.Join(cfg.OutputDir, cfg.Subreddit+"_posts.csv")
	if err := export.SaveCSV(path, res.Records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	logger.Info().Str("path", path).Int("records", len(res.Records)).Msg("CSV written")
	fmt.Fprintf(out, "\nSaved %d posts to %s\n", len(res.Records), path)
	return nil
}
