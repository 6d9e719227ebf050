// Package search collects subreddit search results together with their
// full comment threads.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	threadsCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_search_threads_total",
		Help: "Search results collected with their comments",
	})

	commentsCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_search_comments_total",
		Help: "Comments flattened from collected threads",
	})
)

// ErrInvalidLimit is returned for a limit below 1.
var ErrInvalidLimit = errors.New("search limit must be >= 1")

// Post is one search result.
type Post struct {
	ID       string
	Title    string
	Selftext string
}

// Comment is a node of a comment tree.
type Comment struct {
	Body    string
	Replies []Comment
}

// Thread is a post with its comments flattened in breadth-first order.
type Thread struct {
	Title    string   `json:"title"`
	Selftext string   `json:"selftext"`
	Comments []string `json:"comments"`
}

// Searcher is the Reddit API surface Collect needs.
type Searcher interface {
	// Search returns up to limit posts of subreddit matching query.
	Search(ctx context.Context, query, subreddit string, limit int) ([]Post, error)

	// Comments returns the loaded comment tree of a post. Unloaded
	// "more comments" stubs are not expanded.
	Comments(ctx context.Context, postID string) ([]Comment, error)
}

// Collect searches subreddit and loads the comments of every result.
// The threads gathered before a comment request fails are returned with
// the error.
func Collect(ctx context.Context, s Searcher, query, subreddit string, limit int) ([]Thread, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidLimit, limit)
	}

	logger := log.With().
		Str("component", "search").
		Str("subreddit", subreddit).
		Str("query", query).
		Logger()

	posts, err := s.Search(ctx, query, subreddit, limit)
	if err != nil {
		return nil, fmt.Errorf("search r/%s: %w", subreddit, err)
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	logger.Info().Int("posts", len(posts)).Msg("Search complete")

	threads := make([]Thread, 0, len(posts))
	for i, p := range posts {
		tree, err := s.Comments(ctx, p.ID)
		if err != nil {
			logger.Warn().Err(err).Str("post", p.ID).Int("collected", len(threads)).Msg("Comment request failed")
			return threads, fmt.Errorf("comments of %s: %w", p.ID, err)
		}

		comments := Flatten(tree)
		threads = append(threads, Thread{
			Title:    p.Title,
			Selftext: p.Selftext,
			Comments: comments,
		})
		threadsCollectedTotal.Inc()
		commentsCollectedTotal.Add(float64(len(comments)))

		logger.Debug().
			Str("post", p.ID).
			Int("index", i+1).
			Int("comments", len(comments)).
			Msg("Thread collected")
	}

	return threads, nil
}

// Flatten lists comment bodies breadth-first: all top-level comments, then
// their replies level by level. It never returns nil.
func Flatten(tree []Comment) []string {
	out := []string{}
	queue := append([]Comment(nil), tree...)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		out = append(out, c.Body)
		queue = append(queue, c.Replies...)
	}
	return out
}
