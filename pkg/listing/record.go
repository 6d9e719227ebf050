// Package listing defines the flattened Record produced from Reddit listing
// items and the schema used to build it.
package listing

import (
	"encoding/json"
	"time"
)

// Record is one flattened listing item.
// ID is always set. Every other field is nil when the source item did not
// carry a usable value for it.
type Record struct {
	ID          string     `json:"id"`
	Title       *string    `json:"title"`
	Author      *string    `json:"author"`
	Score       *int       `json:"score"`
	NumComments *int       `json:"num_comments"`
	Created     *time.Time `json:"created_utc"`
	UpvoteRatio *float64   `json:"upvote_ratio"`
	URL         *string    `json:"url"`
	Selftext    *string    `json:"selftext"`
}

// Page is one decoded listing response.
type Page struct {
	// Items are the raw `children[].data` objects in source order.
	Items []json.RawMessage

	// After is the cursor for the next page. Empty means no further pages.
	After string
}
