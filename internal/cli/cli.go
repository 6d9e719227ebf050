// Package cli holds the start-up sequence shared by the harvest commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/reddit-harvest/pkg/client"
	"github.com/Sternrassler/reddit-harvest/pkg/config"
	"github.com/Sternrassler/reddit-harvest/pkg/logging"
	"github.com/Sternrassler/reddit-harvest/pkg/metrics"
	"github.com/Sternrassler/reddit-harvest/pkg/pagination"
	"github.com/rs/zerolog"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// RunFunc is the body of a command. Progress for the user goes to out.
type RunFunc func(ctx context.Context, cfg *config.Config, out io.Writer) error

// Main loads configuration, installs the logger, serves metrics if
// configured and calls run with a context cancelled on SIGINT/SIGTERM.
// It returns the process exit code.
func Main(name string, run RunFunc) int {
	cfg, cfgErr := config.Load()
	logging.Setup(logging.FromEnv(os.Getenv))
	logger := logging.NewLogger(name)

	if cfgErr != nil {
		logger.Error().Err(cfgErr).Msg("Invalid configuration")
		return ExitFailure
	}
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("Invalid configuration")
		return ExitFailure
	}

	srv := metrics.Serve(cfg.MetricsAddr)
	defer shutdown(srv, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		return ExitFailure
	}
	return ExitOK
}

func shutdown(srv *metrics.Server, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("Metrics endpoint shutdown failed")
	}
}

// NewFetcher builds the listing client and fetcher from cfg. The fetcher
// pauses delay between pages and stops after maxPages requests when
// maxPages is positive.
func NewFetcher(cfg *config.Config, delay time.Duration, maxPages int) (*pagination.Fetcher, error) {
	clientCfg := client.DefaultConfig(cfg.UserAgent)
	clientCfg.BaseURL = cfg.BaseURL

	c, err := client.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create listing client: %w", err)
	}

	return pagination.NewFetcher(c, pagination.Config{
		PageSize:    cfg.PostsPerRequest,
		MaxPageSize: pagination.MaxPageSize,
		Delay:       delay,
		MaxPages:    maxPages,
	}), nil
}

// ReportResult logs a partial run. It never fails the command: the records
// collected before the failed page are still written.
func ReportResult(logger zerolog.Logger, res *pagination.Result) {
	if res.Partial() {
		logger.Warn().
			Err(res.Err).
			Int("records", len(res.Records)).
			Int("pages", res.Pages).
			Msg("Listing ended on a failed page - writing partial results")
	}
}
