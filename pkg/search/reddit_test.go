package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/loganintech/go-reddit/v2/reddit"
)

func TestFromRedditPosts(t *testing.T) {
	posts := []*reddit.Post{
		{ID: "abc", Title: "Draw day", Body: "Pots are out"},
		nil,
		{ID: "def", Title: "Link post"},
	}

	want := []Post{
		{ID: "abc", Title: "Draw day", Selftext: "Pots are out"},
		{ID: "def", Title: "Link post"},
	}
	if diff := cmp.Diff(want, fromRedditPosts(posts)); diff != "" {
		t.Errorf("fromRedditPosts() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromRedditComments(t *testing.T) {
	nested := &reddit.Comment{Body: "reply"}
	top := &reddit.Comment{Body: "top"}
	top.Replies.Comments = []*reddit.Comment{nested}

	got := fromRedditComments([]*reddit.Comment{top, nil, {Body: "second"}})
	want := []Comment{
		{Body: "top", Replies: []Comment{{Body: "reply"}}},
		{Body: "second"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fromRedditComments() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"top", "reply", "second"}, Flatten(got)); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRedditSearcher(t *testing.T) {
	s, err := NewRedditSearcher(Credentials{ID: "id", Secret: "secret", Username: "u", Password: "p"}, "harvest-test/1.0", 0)
	if err != nil {
		t.Fatalf("NewRedditSearcher() error = %v", err)
	}
	if got := s.limiter.Limit(); got != 1 {
		t.Errorf("limiter rate = %v/s, want 1/s with the default interval", got)
	}
	if s.limiter.Burst() != 1 {
		t.Errorf("limiter burst = %d, want 1", s.limiter.Burst())
	}
}
