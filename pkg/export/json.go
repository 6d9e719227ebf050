package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Sternrassler/reddit-harvest/pkg/listing"
)

// WriteJSON encodes v as JSON indented by four spaces.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteRecordsJSON writes records as a JSON array. Gaps are null.
func WriteRecordsJSON(w io.Writer, records []listing.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	return observe(SinkJSON, len(records), WriteJSON(w, records))
}

// SaveJSON writes v to a JSON file at path.
func SaveJSON(path string, v any) error {
	return SaveFile(path, func(w io.Writer) error {
		return WriteJSON(w, v)
	})
}

// SaveRecordsJSON writes records to a JSON file at path.
func SaveRecordsJSON(path string, records []listing.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	return SaveFile(path, func(w io.Writer) error {
		return WriteRecordsJSON(w, records)
	})
}
