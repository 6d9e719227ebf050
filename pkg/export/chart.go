package export

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/Sternrassler/reddit-harvest/pkg/listing"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// DefaultChartBars is the number of records WriteChart plots.
const DefaultChartBars = 20

// TopByScore returns up to n records ordered by descending score.
// Records without a score are left out. Ties keep source order.
func TopByScore(records []listing.Record, n int) []listing.Record {
	scored := make([]listing.Record, 0, len(records))
	for _, r := range records {
		if r.Score != nil {
			scored = append(scored, r)
		}
	}
	slices.SortStableFunc(scored, func(a, b listing.Record) int {
		return cmp.Compare(*b.Score, *a.Score)
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// WriteChart renders an HTML bar chart of the top n records by score
// (DefaultChartBars if n <= 0).
func WriteChart(w io.Writer, title string, records []listing.Record, n int) error {
	if n <= 0 {
		n = DefaultChartBars
	}
	top := TopByScore(records, n)
	if len(top) == 0 {
		return ErrNoRecords
	}

	labels := make([]string, len(top))
	scores := make([]opts.BarData, len(top))
	comments := make([]opts.BarData, len(top))
	for i, r := range top {
		labels[i] = r.ID
		scores[i] = opts.BarData{Value: *r.Score, Name: str(r.Title)}
		if r.NumComments != nil {
			comments[i] = opts.BarData{Value: *r.NumComments}
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("Top %d posts by score", len(top))}),
	)
	bar.SetXAxis(labels).
		AddSeries("Score", scores).
		AddSeries("Comments", comments)

	if err := bar.Render(w); err != nil {
		return observe(SinkChart, 0, fmt.Errorf("render chart: %w", err))
	}
	return observe(SinkChart, len(top), nil)
}

// SaveChart writes the chart to an HTML file at path.
func SaveChart(path, title string, records []listing.Record, n int) error {
	if len(TopByScore(records, 1)) == 0 {
		return ErrNoRecords
	}
	return SaveFile(path, func(w io.Writer) error {
		return WriteChart(w, title, records, n)
	})
}
