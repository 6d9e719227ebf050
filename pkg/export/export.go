// Package export writes harvested records to files, the console and Redis.
//
// Every record writer refuses an empty record set with ErrNoRecords so that
// a failed or empty run never replaces a previous output file with a bare
// header.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Sternrassler/reddit-harvest/pkg/listing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrNoRecords is returned when a writer is handed zero records.
var ErrNoRecords = errors.New("no records to export")

// Sink names used as the metrics label.
const (
	SinkCSV   = "csv"
	SinkJSON  = "json"
	SinkExcel = "excel"
	SinkChart = "chart"
	SinkRedis = "redis"
)

var (
	recordsExportedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_export_records_total",
		Help: "Records written by sink",
	}, []string{"sink"})

	exportErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_export_errors_total",
		Help: "Failed sink writes",
	}, []string{"sink"})
)

// observe records the outcome of one sink write and passes err through.
func observe(sink string, n int, err error) error {
	if err != nil {
		exportErrorsTotal.WithLabelValues(sink).Inc()
		return err
	}
	recordsExportedTotal.WithLabelValues(sink).Add(float64(n))
	return nil
}

// Columns returns the header row shared by the tabular sinks.
func Columns() []string {
	return listing.FieldNames()
}

// Cells renders r in Columns order. Gaps become empty cells.
func Cells(r listing.Record) []string {
	return []string{
		r.ID,
		str(r.Title),
		str(r.Author),
		integer(r.Score),
		integer(r.NumComments),
		timestamp(r.Created),
		ratio(r.UpvoteRatio),
		str(r.URL),
		str(r.Selftext),
	}
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func integer(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func timestamp(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.UTC().Format(time.RFC3339)
}

func ratio(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

// SaveFile creates path, including missing parent directories, and hands
// it to write. The file is closed before SaveFile returns.
func SaveFile(path string, write func(w io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return write(f)
}
