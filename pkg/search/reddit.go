package search

import (
	"context"
	"fmt"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// maxSearchPage is the most results one search request returns.
const maxSearchPage = 100

// DefaultRequestInterval paces API calls at roughly 60 per minute.
const DefaultRequestInterval = time.Second

// Credentials authenticate a script application.
type Credentials struct {
	ID       string
	Secret   string
	Username string
	Password string
}

// RedditSearcher implements Searcher over the authenticated Reddit API.
type RedditSearcher struct {
	client  *reddit.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewRedditSearcher creates an authenticated searcher. Every API call waits
// on a limiter allowing one request per interval.
func NewRedditSearcher(creds Credentials, userAgent string, interval time.Duration, opts ...reddit.Opt) (*RedditSearcher, error) {
	opts = append([]reddit.Opt{reddit.WithUserAgent(userAgent)}, opts...)
	client, err := reddit.NewClient(reddit.Credentials{
		ID:       creds.ID,
		Secret:   creds.Secret,
		Username: creds.Username,
		Password: creds.Password,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}

	if interval <= 0 {
		interval = DefaultRequestInterval
	}

	return &RedditSearcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  log.With().Str("component", "search").Logger(),
	}, nil
}

// Search pages through search results until limit posts are collected or
// the results run out.
func (r *RedditSearcher) Search(ctx context.Context, query, subreddit string, limit int) ([]Post, error) {
	var out []Post
	after := ""
	for len(out) < limit {
		if err := r.limiter.Wait(ctx); err != nil {
			return out, err
		}

		size := min(limit-len(out), maxSearchPage)
		posts, resp, err := r.client.Subreddit.SearchPosts(ctx, query, subreddit, &reddit.ListPostSearchOptions{
			ListPostOptions: reddit.ListPostOptions{
				ListOptions: reddit.ListOptions{Limit: size, After: after},
			},
		})
		if err != nil {
			return out, fmt.Errorf("authenticated api error: %w", err)
		}

		out = append(out, fromRedditPosts(posts)...)
		r.logger.Debug().Int("page", len(posts)).Int("collected", len(out)).Msg("Search page")

		if len(posts) == 0 || resp == nil || resp.After == "" {
			break
		}
		after = resp.After
	}
	return out, nil
}

// Comments loads a post's comment tree.
func (r *RedditSearcher) Comments(ctx context.Context, postID string) ([]Comment, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	pc, _, err := r.client.Post.Get(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("authenticated api error: %w", err)
	}
	return fromRedditComments(pc.Comments), nil
}

func fromRedditPosts(posts []*reddit.Post) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p == nil {
			continue
		}
		out = append(out, Post{ID: p.ID, Title: p.Title, Selftext: p.Body})
	}
	return out
}

func fromRedditComments(cs []*reddit.Comment) []Comment {
	if len(cs) == 0 {
		return nil
	}
	out := make([]Comment, 0, len(cs))
	for _, c := range cs {
		if c == nil {
			continue
		}
		out = append(out, Comment{
			Body:    c.Body,
			Replies: fromRedditComments(c.Replies.Comments),
		})
	}
	return out
}
