package models

import (
	"time"
)

// Citation kinds used as the prefix of citation tokens.
const (
	CitationKindPost    = "post"
	CitationKindComment = "comment"
)

// AnalysisFailedSentinel is the literal stored in a persona section when its
// LLM analysis could not be generated. Rendering special-cases this value.
const AnalysisFailedSentinel = "Analysis failed"

// Post represents one scraped Reddit submission
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	IsSelf      bool    `json:"is_self"`
	FlairText   string  `json:"link_flair_text"`
	Over18      bool    `json:"over_18"`
}

// Comment represents one scraped Reddit comment
type Comment struct {
	ID              string  `json:"id"`
	Body            string  `json:"body"`
	Subreddit       string  `json:"subreddit"`
	Score           int     `json:"score"`
	CreatedUTC      float64 `json:"created_utc"`
	Permalink       string  `json:"permalink"`
	ParentID        string  `json:"parent_id"`
	SubmissionTitle string  `json:"submission_title"`
	IsSubmitter     bool    `json:"is_submitter"`
}

// UserInfo holds account-level metadata for the scraped user
type UserInfo struct {
	Username         string  `json:"username"`
	ID               string  `json:"id"`
	CreatedUTC       float64 `json:"created_utc"`
	CommentKarma     int     `json:"comment_karma"`
	LinkKarma        int     `json:"link_karma"`
	IsGold           bool    `json:"is_gold"`
	IsMod            bool    `json:"is_mod"`
	HasVerifiedEmail bool    `json:"has_verified_email"`
	AccountAgeDays   float64 `json:"account_age_days"`
}

// ScrapeStats records how much data a scrape produced and when it ran
type ScrapeStats struct {
	PostsScraped    int       `json:"posts_scraped"`
	CommentsScraped int       `json:"comments_scraped"`
	ScrapedAt       time.Time `json:"scraping_timestamp"`
}

// UserData bundles everything the scraper returns for one user
type UserData struct {
	UserInfo    UserInfo    `json:"user_info"`
	Posts       []Post      `json:"posts"`
	Comments    []Comment   `json:"comments"`
	ScrapeStats ScrapeStats `json:"scraping_stats"`
}

// Citation maps a citation token back to its source item
type Citation struct {
	Kind            string  `json:"type"`
	ID              string  `json:"id"`
	Title           string  `json:"title,omitempty"`
	SubmissionTitle string  `json:"submission_title,omitempty"`
	Subreddit       string  `json:"subreddit"`
	Score           int     `json:"score"`
	CreatedUTC      float64 `json:"timestamp"`
	Permalink       string  `json:"permalink"`
}

// CitationMap maps citation tokens (POST_1, COMMENT_3, ...) to their sources.
// Built once per run and read-only afterward.
type CitationMap map[string]Citation

// SubredditCount is one entry of the descending subreddit activity ranking
type SubredditCount struct {
	Subreddit string `json:"subreddit"`
	Count     int    `json:"count"`
}

// PostingPattern summarizes when and how much the user posts.
// All fields are zero when no timestamped activity exists; TotalActivity
// gates whether the hour/weekday values are meaningful.
type PostingPattern struct {
	TotalPosts           int     `json:"total_posts"`
	TotalComments        int     `json:"total_comments"`
	TotalActivity        int     `json:"total_activity"`
	MostActiveHour       int     `json:"most_active_hour"`
	MostActiveWeekday    int     `json:"most_active_day"`
	ActivitySpanDays     float64 `json:"activity_span_days"`
	AverageDailyActivity float64 `json:"average_daily_activity"`
}

// ActivityStats bundles the aggregator outputs
type ActivityStats struct {
	SubredditActivity []SubredditCount `json:"subreddit_activity"`
	PostingPattern    PostingPattern   `json:"posting_patterns"`
}

// Analysis holds the four LLM analysis sections. A failed section carries
// AnalysisFailedSentinel rather than being absent.
type Analysis struct {
	Demographics string `json:"demographics"`
	Interests    string `json:"interests"`
	Personality  string `json:"personality"`
	Behavior     string `json:"behavior"`
}

// Sections returns the four analysis values in their fixed report order
func (a Analysis) Sections() []string {
	return []string{a.Demographics, a.Interests, a.Personality, a.Behavior}
}

// FailedCount returns how many of the four sections carry the failure sentinel
func (a Analysis) FailedCount() int {
	failed := 0
	for _, s := range a.Sections() {
		if s == AnalysisFailedSentinel {
			failed++
		}
	}
	return failed
}

// Statistics is the statistics block of a persona record
type Statistics struct {
	SubredditActivity []SubredditCount `json:"subreddit_activity"`
	PostingPattern    PostingPattern   `json:"posting_patterns"`
	ScrapeStats       ScrapeStats      `json:"scraping_stats"`
	UserInfo          UserInfo         `json:"user_info"`
}

// Persona is the final record for one user. Constructed exactly once per run
// and never mutated afterward.
type Persona struct {
	Username    string      `json:"username"`
	Analysis    Analysis    `json:"analysis"`
	Statistics  Statistics  `json:"statistics"`
	Citations   CitationMap `json:"citations"`
	GeneratedAt time.Time   `json:"generation_timestamp"`
}
