package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestGetHeaderAsInt(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string][]string
		key      string
		expected int
	}{
		{
			name: "Valid integer header",
			headers: map[string][]string{
				"X-Ratelimit-Remaining": {"42"},
			},
			key:      "X-Ratelimit-Remaining",
			expected: 42,
		},
		{
			name: "Empty header value",
			headers: map[string][]string{
				"X-Ratelimit-Remaining": {""},
			},
			key:      "X-Ratelimit-Remaining",
			expected: 0,
		},
		{
			name: "Missing header",
			headers: map[string][]string{
				"X-Ratelimit-Used": {"10"},
			},
			key:      "X-Ratelimit-Remaining",
			expected: 0,
		},
		{
			name: "Non-integer header value",
			headers: map[string][]string{
				"X-Ratelimit-Remaining": {"not-a-number"},
			},
			key:      "X-Ratelimit-Remaining",
			expected: 0,
		},
		{
			name: "Multiple values for same header (should use first)",
			headers: map[string][]string{
				"X-Ratelimit-Remaining": {"100", "200"},
			},
			key:      "X-Ratelimit-Remaining",
			expected: 100,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			header := http.Header(tc.headers)
			result := getHeaderAsInt(header, tc.key)
			if result != tc.expected {
				t.Errorf("getHeaderAsInt(%v, %q) = %d; want %d",
					header, tc.key, result, tc.expected)
			}
		})
	}
}

func TestGetRateLimitStatus(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	r := NewRedditAPI("id", "secret", "agent", 100, log)

	// defaults before any response has been seen
	reset, used := r.GetRateLimitStatus()
	if reset != 600 || used != 0 {
		t.Errorf("GetRateLimitStatus() = (%d, %d); want (600, 0)", reset, used)
	}

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("X-Ratelimit-Used", "25")
	resp.Header.Set("X-Ratelimit-Reset", "480")
	r.updateRateLimits(resp)

	reset, used = r.GetRateLimitStatus()
	if reset != 480 || used != 25 {
		t.Errorf("GetRateLimitStatus() = (%d, %d); want (480, 25)", reset, used)
	}

	// missing headers leave the cached values untouched
	r.updateRateLimits(&http.Response{Header: http.Header{}})
	reset, used = r.GetRateLimitStatus()
	if reset != 480 || used != 25 {
		t.Errorf("GetRateLimitStatus() after empty headers = (%d, %d); want (480, 25)", reset, used)
	}
}

func TestTokenBucketTake(t *testing.T) {
	// starts with a single token; the second take should fail at this fill rate
	tb := NewTokenBucket(10, 0.001, time.Second)

	if !tb.Take() {
		t.Error("Take() = false on a fresh bucket; want true")
	}
	if tb.Take() {
		t.Error("Take() = true with an empty bucket; want false")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	// 100 tokens/sec refills well within the sleep below
	tb := NewTokenBucket(10, 100.0, time.Second)

	tb.Take()
	time.Sleep(50 * time.Millisecond)

	if !tb.Take() {
		t.Error("Take() = false after refill window; want true")
	}
}

func TestMapComments(t *testing.T) {
	children := []redditThing{
		commentThing("c1", "first comment", "golang", "Some thread"),
		commentThing("c2", "[deleted]", "golang", "Some thread"),
		commentThing("c3", "[removed]", "news", "Other thread"),
		commentThing("c4", "still here", "news", "Other thread"),
	}

	comments := mapComments(children)

	if len(comments) != 2 {
		t.Fatalf("mapComments() kept %d comments; want 2", len(comments))
	}
	if comments[0].ID != "c1" || comments[1].ID != "c4" {
		t.Errorf("mapComments() kept IDs %q, %q; want c1, c4", comments[0].ID, comments[1].ID)
	}
	if comments[0].Body != "first comment" {
		t.Errorf("Body = %q; want %q", comments[0].Body, "first comment")
	}
	if comments[0].SubmissionTitle != "Some thread" {
		t.Errorf("SubmissionTitle = %q; want %q", comments[0].SubmissionTitle, "Some thread")
	}
}

func TestMapPosts(t *testing.T) {
	var thing redditThing
	thing.Data.ID = "p1"
	thing.Data.Title = "A title"
	thing.Data.SelfText = "body text"
	thing.Data.Subreddit = "golang"
	thing.Data.Score = 17
	thing.Data.CreatedUTC = 1700000000
	thing.Data.IsSelf = true

	posts := mapPosts([]redditThing{thing})

	if len(posts) != 1 {
		t.Fatalf("mapPosts() returned %d posts; want 1", len(posts))
	}
	p := posts[0]
	if p.ID != "p1" || p.Title != "A title" || p.SelfText != "body text" {
		t.Errorf("mapPosts() mapped %+v incorrectly", p)
	}
	if p.Subreddit != "golang" || p.Score != 17 || !p.IsSelf {
		t.Errorf("mapPosts() mapped %+v incorrectly", p)
	}
	if p.CreatedUTC != 1700000000 {
		t.Errorf("CreatedUTC = %f; want 1700000000", p.CreatedUTC)
	}
}

func commentThing(id, body, subreddit, linkTitle string) redditThing {
	var thing redditThing
	thing.Data.ID = id
	thing.Data.Body = body
	thing.Data.Subreddit = subreddit
	thing.Data.LinkTitle = linkTitle
	return thing
}
