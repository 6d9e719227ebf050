package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// Source field names, in output column order.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldAuthor      = "author"
	FieldScore       = "score"
	FieldNumComments = "num_comments"
	FieldCreated     = "created_utc"
	FieldUpvoteRatio = "upvote_ratio"
	FieldURL         = "url"
	FieldSelftext    = "selftext"
)

// Field describes one source field of a listing item.
type Field struct {
	Name     string
	Required bool
}

// Schema lists the item fields a Record is built from.
// A missing required field other than id is a data-quality gap, not a
// failure. A missing optional field is not reported at all.
var Schema = []Field{
	{Name: FieldID, Required: true},
	{Name: FieldTitle, Required: true},
	{Name: FieldAuthor, Required: true},
	{Name: FieldScore, Required: true},
	{Name: FieldNumComments, Required: true},
	{Name: FieldCreated, Required: true},
	{Name: FieldUpvoteRatio, Required: false},
	{Name: FieldURL, Required: true},
	{Name: FieldSelftext, Required: true},
}

// FieldNames returns the schema field names in column order.
func FieldNames() []string {
	names := make([]string, len(Schema))
	for i, f := range Schema {
		names[i] = f.Name
	}
	return names
}

var (
	// ErrMissingID is returned when an item has no usable identifier.
	ErrMissingID = errors.New("item has no id")

	// ErrMalformedItem is returned when an item is not a JSON object.
	ErrMalformedItem = errors.New("item is not a JSON object")
)

type rawItem map[string]json.RawMessage

// Flatten maps one raw listing item to a Record.
// It returns the names of required fields that were absent, null or of the
// wrong type. Items without an id are rejected with ErrMissingID.
func Flatten(raw json.RawMessage) (Record, []string, error) {
	var item rawItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return Record{}, nil, fmt.Errorf("%w: %v", ErrMalformedItem, err)
	}
	if item == nil {
		return Record{}, nil, ErrMalformedItem
	}

	id, _ := get[string](item, FieldID)
	if id == nil || *id == "" {
		return Record{}, nil, ErrMissingID
	}

	rec := Record{ID: *id}
	var gaps []string
	note := func(name string, ok bool) {
		if !ok {
			gaps = append(gaps, name)
		}
	}

	var ok bool
	rec.Title, ok = get[string](item, FieldTitle)
	note(FieldTitle, ok)
	rec.Author, ok = get[string](item, FieldAuthor)
	note(FieldAuthor, ok)
	rec.Score, ok = get[int](item, FieldScore)
	note(FieldScore, ok)
	rec.NumComments, ok = get[int](item, FieldNumComments)
	note(FieldNumComments, ok)

	created, ok := get[float64](item, FieldCreated)
	note(FieldCreated, ok)
	if created != nil {
		t := epochToTime(*created)
		rec.Created = &t
	}

	// upvote_ratio is optional; out-of-range values are dropped
	if ratio, _ := get[float64](item, FieldUpvoteRatio); ratio != nil && *ratio >= 0 && *ratio <= 1 {
		rec.UpvoteRatio = ratio
	}

	rec.URL, ok = get[string](item, FieldURL)
	note(FieldURL, ok)
	rec.Selftext, ok = get[string](item, FieldSelftext)
	note(FieldSelftext, ok)

	return rec, gaps, nil
}

// get decodes item[name] into T. It reports false when the key is absent,
// null or not decodable as T.
func get[T any](item rawItem, name string) (*T, bool) {
	raw, ok := item[name]
	if !ok || string(raw) == "null" {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// epochToTime converts fractional epoch seconds to a UTC time.
func epochToTime(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
