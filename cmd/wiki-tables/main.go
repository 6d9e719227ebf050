// Command wiki-tables extracts the infobox and tables of the Champions
// League Wikipedia article, prints them and saves them to
// champions_league_2025_26.xlsx.
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
	"github.com/Sternrassler/reddit-harvest/pkg/wiki"
)

const workbookName = "champions_league_2025_26.xlsx"

func main() {
	os.Exit(cli.Main("wiki-tables", run))
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := logging.NewLogger("wiki-tables")

	fmt.Fprintf(out, "Scraping data from: %s\n", cfg.WikiURL)

	article, err := wiki.Scrape(ctx, cfg.WikiURL, cfg.UserAgent)
	if err != nil {
		return err
	}

	wiki.Print(out, article)

	path := filepath.Join(cfg.OutputDir, workbookName)
	if err := saveWorkbook(path, article); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	logger.Info().Str("path", path).Int("sections", len(article.Sections)).Msg("Workbook written")
	fmt.Fprintf(out, "\nData successfully saved to %s\n", path)
	return nil
}

func saveWorkbook(path string, article *wiki.Article) error {
	wb := export.NewWorkbook()
	defer wb.Close()

	if err := wiki.AddToWorkbook(wb, article); err != nil {
		return err
	}
	return wb.SaveAs(path)
}
