// Command subreddit-archive pages through a subreddit listing and saves up
// to TOTAL_POSTS records to {subreddit}_posts_extended.csv, plus the
// optional JSON, Excel, chart and Redis outputs.
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
	"github.com/Sternrassler/reddit-harvest/pkg/listing"
	"github.com/Sternrassler/reddit-harvest/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(cli.Main("subreddit-archive", run))
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := logging.NewLogger("subreddit-archive")

	fetcher, err := cli.NewFetcher(cfg, cfg.PageDelay, 0)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Fetching posts...")

	res, err := fetcher.Fetch(ctx, cfg.Subreddit, cfg.TotalPosts)
	if err != nil {
		return err
	}
	cli.ReportResult(logger, res)

	base := filepath.Join(cfg.OutputDir, cfg.Subreddit+"_posts_extended")
	written, err := writeFiles(cfg, base, res.Records)
	if err != nil {
		return err
	}
	for _, path := range written {
		logger.Info().Str("path", path).Int("records", len(res.Records)).Msg("Output written")
	}

	if cfg.RedisURL != "" {
		// the Redis copy is best effort; the files above are the record
		storeRedis(ctx, cfg, res.Records, logger)
	}

	fmt.Fprintf(out, "\nSaved %d posts to %s\n", len(res.Records), written[0])
	return nil
}

// writeFiles writes the CSV and every enabled file output. It returns the
// paths written, CSV first.
func writeFiles(cfg *config.Config, base string, records []listing.Record) ([]string, error) {
	csvPath := base + ".csv"
	if err := export.SaveCSV(csvPath, records); err != nil {
		return nil, fmt.Errorf("write %s: %w", csvPath, err)
	}
	written := []string{csvPath}

	if cfg.JSONExport {
		path := base + ".json"
		if err := export.SaveRecordsJSON(path, records); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	if cfg.ExcelExport {
		path := base + ".xlsx"
		if err := saveWorkbook(path, cfg.Subreddit, records); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	if cfg.ChartExport {
		path := base + "_top.html"
		title := "r/" + cfg.Subreddit
		if err := export.SaveChart(path, title, records, export.DefaultChartBars); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	return written, nil
}

func saveWorkbook(path, sheet string, records []listing.Record) error {
	wb := export.NewWorkbook()
	defer wb.Close()

	if err := wb.AddRecords(sheet, records); err != nil {
		return err
	}
	return wb.SaveAs(path)
}

func storeRedis(ctx context.Context, cfg *config.Config, records []listing.Record, logger zerolog.Logger) {
	opts, err := export.RedisOptions(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("Skipping Redis output")
		return
	}

	redisClient := redis.NewClient(opts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", opts.Addr).Msg("Redis unreachable - skipping Redis output")
		return
	}

	sink := export.NewRedisSink(redisClient, cfg.RedisTTL)
	if err := sink.Write(ctx, cfg.Subreddit, records); err != nil {
		logger.Warn().Err(err).Msg("Redis output failed")
		return
	}
	logger.Info().
		Str("key", export.Key(cfg.Subreddit)).
		Int("records", len(records)).
		Dur("ttl", cfg.RedisTTL).
		Msg("Records stored in Redis")
}
