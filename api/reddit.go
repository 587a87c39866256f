package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brettboylen/reddit-persona/models"
)

const (
	baseURL   = "https://oauth.reddit.com"
	authURL   = "https://www.reddit.com/api/v1/access_token"
	pageLimit = 100 // max number of items per listing request
)

// Scrape failure taxonomy. Callers distinguish a nonexistent account from a
// private/suspended one; anything else surfaces as a wrapped transport error.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserInaccessible = errors.New("user profile is private or suspended")
)

// TokenBucket implements a rate limiter using the token bucket algorithm
type TokenBucket struct {
	mutex       sync.Mutex
	capacity    int           // maximum tokens the bucket can hold
	tokens      float64       // current number of tokens
	fillRate    float64       // rate at which tokens are added (tokens per second)
	lastRefill  time.Time     // time of last token refill
	waitTimeout time.Duration // max time to wait for a token
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, fillRate float64, waitTimeout time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:    capacity,
		tokens:      1, // lets start with just 1 token to avoid initial burst
		fillRate:    fillRate,
		lastRefill:  time.Now(),
		waitTimeout: waitTimeout,
	}
}

// Take attempts to take a token from the bucket
// Returns true if successful, false if timed out
func (tb *TokenBucket) Take() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	// Refill tokens based on time elapsed
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	newTokens := elapsed * tb.fillRate
	if newTokens > 0 {
		tb.tokens = tb.tokens + newTokens
		if tb.tokens > float64(tb.capacity) {
			tb.tokens = float64(tb.capacity)
		}
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

// TakeWithTimeout attempts to take a token from the bucket, waiting up to waitTimeout
func (tb *TokenBucket) TakeWithTimeout() bool {
	if tb.Take() {
		return true
	}

	// calculate the time to wait for the next token
	tb.mutex.Lock()
	tokensNeeded := 1 - tb.tokens
	timeToWait := time.Duration(tokensNeeded / tb.fillRate * float64(time.Second))
	if timeToWait > tb.waitTimeout {
		timeToWait = tb.waitTimeout
	}
	tb.mutex.Unlock()

	// wait for next token and then grab it
	time.Sleep(timeToWait)
	return tb.Take()
}

// RedditAPI represents a Reddit API client scoped to reading public user data
type RedditAPI struct {
	clientID     string
	clientSecret string
	userAgent    string
	httpClient   *http.Client
	accessToken  string
	tokenExpiry  time.Time
	mutex        sync.RWMutex
	log          *logrus.Logger
	rateLimiter  *TokenBucket

	rateResetCached  int
	rateUsedCached   int
	rateHeadersMutex sync.RWMutex
}

// redditThing is the Reddit API wrapper around a single listing child
type redditThing struct {
	Kind string `json:"kind"`
	Data struct {
		// submission fields
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

		// comment fields
		Body        string `json:"body"`
		ParentID    string `json:"parent_id"`
		LinkTitle   string `json:"link_title"`
		IsSubmitter bool   `json:"is_submitter"`
	} `json:"data"`
}

// redditListing is the Reddit API listing envelope
type redditListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string        `json:"after"`
		Before   string        `json:"before"`
		Children []redditThing `json:"children"`
	} `json:"data"`
}

// redditAbout is the /user/{name}/about envelope
type redditAbout struct {
	Kind string `json:"kind"`
	Data struct {
		ID               string  `json:"id"`
		Name             string  `json:"name"`
		CreatedUTC       float64 `json:"created_utc"`
		CommentKarma     int     `json:"comment_karma"`
		LinkKarma        int     `json:"link_karma"`
		IsGold           bool    `json:"is_gold"`
		IsMod            bool    `json:"is_mod"`
		HasVerifiedEmail bool    `json:"has_verified_email"`
	} `json:"data"`
}

// NewRedditAPI creates a new Reddit API client
func NewRedditAPI(clientID, clientSecret, userAgent string, maxRequestsPerMinute int, log *logrus.Logger) *RedditAPI {
	// default to 100 requests per minute (real Reddit limit)
	if maxRequestsPerMinute <= 0 {
		maxRequestsPerMinute = 100
	}

	// our 10 minute allocation
	totalAllocation := maxRequestsPerMinute * 10

	standardRate := float64(totalAllocation) / 600.0
	targetRate := standardRate * 0.95

	// Create a token bucket rate limiter:
	// - capacity: 1 (no burst capacity when set to 1)
	// - fillRate: 95% of Reddit's rate (1000 requests per 600 seconds)
	// - waitTimeout: max 30 seconds wait for a token
	rateLimiter := NewTokenBucket(
		1, // no burst
		targetRate,
		30*time.Second,
	)

	return &RedditAPI{
		clientID:        clientID,
		clientSecret:    clientSecret,
		userAgent:       userAgent,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		log:             log,
		rateLimiter:     rateLimiter,
		rateResetCached: 600,
	}
}

// GetRateLimitStatus returns the cached rate limit status (reset countdown in seconds, used requests)
func (r *RedditAPI) GetRateLimitStatus() (int, int) {
	r.rateHeadersMutex.RLock()
	defer r.rateHeadersMutex.RUnlock()
	return r.rateResetCached, r.rateUsedCached
}

// authenticate authenticates with the Reddit API
func (r *RedditAPI) authenticate() error {
	// first check if we already have a valid token without holding the lock for long
	r.mutex.RLock()
	token := r.accessToken
	expiry := r.tokenExpiry
	r.mutex.RUnlock()

	if token != "" && time.Now().Before(expiry) {
		return nil
	}

	r.log.Info("Authenticating with Reddit API")

	// wait for rate limiting
	if !r.rateLimiter.TakeWithTimeout() {
		return fmt.Errorf("rate limit exceeded during authentication attempt")
	}

	data := url.Values{}

	r.log.Debug("Using application-only auth with client credentials")
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequest("POST", authURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}

	req.SetBasicAuth(r.clientID, r.clientSecret)
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute auth request: %w", err)
	}
	defer resp.Body.Close()

	r.updateRateLimits(resp)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("auth request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var authResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}

	r.mutex.Lock()
	r.accessToken = authResp.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(authResp.ExpiresIn) * time.Second)
	r.mutex.Unlock()

	r.log.Info("Successfully authenticated with Reddit API")
	return nil
}

// getListing performs one authenticated GET against a listing endpoint
func (r *RedditAPI) getListing(endpoint, username string) (*redditListing, error) {
	body, err := r.get(endpoint, username)
	if err != nil {
		return nil, err
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing response: %w", err)
	}
	return &listing, nil
}

// get performs one authenticated GET and maps 403/404 onto the scrape taxonomy
func (r *RedditAPI) get(endpoint, username string) ([]byte, error) {
	if err := r.authenticate(); err != nil {
		return nil, err
	}

	if !r.rateLimiter.TakeWithTimeout() {
		return nil, fmt.Errorf("rate limit exceeded while fetching %s", endpoint)
	}

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	r.mutex.RLock()
	token := r.accessToken
	r.mutex.RUnlock()

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	r.updateRateLimits(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to read
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	case http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUserInaccessible, username)
	default:
		body, _ := io.ReadAll(resp.Body)
		r.log.WithFields(logrus.Fields{
			"username":      username,
			"response_body": string(body),
			"status_code":   resp.StatusCode,
		}).Error("Reddit API error response")
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// FetchUserPosts fetches up to maxPosts of the user's submissions, newest first
func (r *RedditAPI) FetchUserPosts(username string, maxPosts int) ([]models.Post, error) {
	posts := make([]models.Post, 0, maxPosts)
	after := ""

	for len(posts) < maxPosts {
		limit := maxPosts - len(posts)
		if limit > pageLimit {
			limit = pageLimit
		}

		endpoint := fmt.Sprintf("%s/user/%s/submitted.json?sort=new&limit=%d", baseURL, url.PathEscape(username), limit)
		if after != "" {
			endpoint += "&after=" + after
		}

		r.log.WithFields(logrus.Fields{
			"username": username,
			"after":    after,
			"limit":    limit,
		}).Debug("Fetching user submissions page")

		listing, err := r.getListing(endpoint, username)
		if err != nil {
			return nil, err
		}

		posts = append(posts, mapPosts(listing.Data.Children)...)

		after = listing.Data.After
		if after == "" || len(listing.Data.Children) == 0 {
			break
		}
	}

	if len(posts) > maxPosts {
		posts = posts[:maxPosts]
	}

	r.log.WithFields(logrus.Fields{
		"username":   username,
		"post_count": len(posts),
	}).Info("Fetched user posts")

	return posts, nil
}

// FetchUserComments fetches up to maxComments of the user's comments, newest
// first. Deleted and removed comments are dropped before they reach the caller.
func (r *RedditAPI) FetchUserComments(username string, maxComments int) ([]models.Comment, error) {
	comments := make([]models.Comment, 0, maxComments)
	after := ""

	for len(comments) < maxComments {
		limit := maxComments - len(comments)
		if limit > pageLimit {
			limit = pageLimit
		}

		endpoint := fmt.Sprintf("%s/user/%s/comments.json?sort=new&limit=%d", baseURL, url.PathEscape(username), limit)
		if after != "" {
			endpoint += "&after=" + after
		}

		r.log.WithFields(logrus.Fields{
			"username": username,
			"after":    after,
			"limit":    limit,
		}).Debug("Fetching user comments page")

		listing, err := r.getListing(endpoint, username)
		if err != nil {
			return nil, err
		}

		mapped := mapComments(listing.Data.Children)
		if len(comments)+len(mapped) > maxComments {
			mapped = mapped[:maxComments-len(comments)]
		}
		comments = append(comments, mapped...)

		after = listing.Data.After
		if after == "" || len(listing.Data.Children) == 0 {
			break
		}
	}

	r.log.WithFields(logrus.Fields{
		"username":      username,
		"comment_count": len(comments),
	}).Info("Fetched user comments")

	return comments, nil
}

// FetchUserInfo fetches account metadata from /user/{name}/about
func (r *RedditAPI) FetchUserInfo(username string) (models.UserInfo, error) {
	endpoint := fmt.Sprintf("%s/user/%s/about.json", baseURL, url.PathEscape(username))

	body, err := r.get(endpoint, username)
	if err != nil {
		return models.UserInfo{Username: username}, err
	}

	var about redditAbout
	if err := json.Unmarshal(body, &about); err != nil {
		return models.UserInfo{Username: username}, fmt.Errorf("failed to decode about response: %w", err)
	}

	info := models.UserInfo{
		Username:         username,
		ID:               about.Data.ID,
		CreatedUTC:       about.Data.CreatedUTC,
		CommentKarma:     about.Data.CommentKarma,
		LinkKarma:        about.Data.LinkKarma,
		IsGold:           about.Data.IsGold,
		IsMod:            about.Data.IsMod,
		HasVerifiedEmail: about.Data.HasVerifiedEmail,
	}
	if info.CreatedUTC > 0 {
		info.AccountAgeDays = (float64(time.Now().Unix()) - info.CreatedUTC) / 86400
	}

	return info, nil
}

// FetchUserData scrapes posts, comments and account info for one user.
// Empty listings are not an error; a nonexistent or inaccessible account is.
func (r *RedditAPI) FetchUserData(username string, maxPosts, maxComments int) (*models.UserData, error) {
	r.log.WithField("username", username).Info("Starting data scraping for user")

	userInfo, err := r.FetchUserInfo(username)
	if err != nil {
		return nil, err
	}

	posts, err := r.FetchUserPosts(username, maxPosts)
	if err != nil {
		return nil, err
	}

	comments, err := r.FetchUserComments(username, maxComments)
	if err != nil {
		return nil, err
	}

	userData := &models.UserData{
		UserInfo: userInfo,
		Posts:    posts,
		Comments: comments,
		ScrapeStats: models.ScrapeStats{
			PostsScraped:    len(posts),
			CommentsScraped: len(comments),
			ScrapedAt:       time.Now(),
		},
	}

	r.log.WithFields(logrus.Fields{
		"username":      username,
		"post_count":    len(posts),
		"comment_count": len(comments),
	}).Info("Completed data scraping for user")

	return userData, nil
}

// mapPosts converts listing children into post models
func mapPosts(children []redditThing) []models.Post {
	posts := make([]models.Post, 0, len(children))
	for _, thing := range children {
		posts = append(posts, models.Post{
			ID:          thing.Data.ID,
			Title:       thing.Data.Title,
			SelfText:    thing.Data.SelfText,
			Subreddit:   thing.Data.Subreddit,
			Score:       thing.Data.Score,
			UpvoteRatio: thing.Data.UpvoteRatio,
			NumComments: thing.Data.NumComments,
			CreatedUTC:  thing.Data.CreatedUTC,
			URL:         thing.Data.URL,
			Permalink:   thing.Data.Permalink,
			IsSelf:      thing.Data.IsSelf,
			FlairText:   thing.Data.FlairText,
			Over18:      thing.Data.Over18,
		})
	}
	return posts
}

// mapComments converts listing children into comment models, skipping
// deleted/removed bodies
func mapComments(children []redditThing) []models.Comment {
	comments := make([]models.Comment, 0, len(children))
	for _, thing := range children {
		if thing.Data.Body == "[deleted]" || thing.Data.Body == "[removed]" {
			continue
		}
		comments = append(comments, models.Comment{
			ID:              thing.Data.ID,
			Body:            thing.Data.Body,
			Subreddit:       thing.Data.Subreddit,
			Score:           thing.Data.Score,
			CreatedUTC:      thing.Data.CreatedUTC,
			Permalink:       thing.Data.Permalink,
			ParentID:        thing.Data.ParentID,
			SubmissionTitle: thing.Data.LinkTitle,
			IsSubmitter:     thing.Data.IsSubmitter,
		})
	}
	return comments
}

// updateRateLimits caches the rate limit headers from a response
func (r *RedditAPI) updateRateLimits(resp *http.Response) {
	// X-Ratelimit-Used: Approximate number of requests used in this period
	// X-Ratelimit-Reset: Approximate number of seconds to end of period (counts down from ~600 seconds)
	used := getHeaderAsInt(resp.Header, "X-Ratelimit-Used")
	reset := getHeaderAsInt(resp.Header, "X-Ratelimit-Reset")

	// skip if we didn't get valid headers for some reason
	if reset == 0 && used == 0 {
		return
	}

	r.rateHeadersMutex.Lock()
	r.rateResetCached = reset
	r.rateUsedCached = used
	r.rateHeadersMutex.Unlock()

	r.log.WithFields(logrus.Fields{
		"used":      used,
		"reset_sec": reset,
	}).Debug("Cached rate limit headers from Reddit")
}

func getHeaderAsInt(header http.Header, name string) int {
	value := header.Get(name)
	if value == "" {
		return 0
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}

	return intValue
}
