package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Sternrassler/reddit-harvest/pkg/listing"
)

// WriteCSV writes a header row and one row per record.
func WriteCSV(w io.Writer, records []listing.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns()); err != nil {
		return observe(SinkCSV, 0, fmt.Errorf("write csv header: %w", err))
	}
	for _, r := range records {
		if err := cw.Write(Cells(r)); err != nil {
			return observe(SinkCSV, 0, fmt.Errorf("write csv row %s: %w", r.ID, err))
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return observe(SinkCSV, 0, fmt.Errorf("flush csv: %w", err))
	}

	return observe(SinkCSV, len(records), nil)
}

// SaveCSV writes records to a CSV file at path.
func SaveCSV(path string, records []listing.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	return SaveFile(path, func(w io.Writer) error {
		return WriteCSV(w, records)
	})
}
