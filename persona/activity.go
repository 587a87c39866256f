package persona

import (
	"sort"
	"time"

	"github.com/brettboylen/reddit-persona/models"
)

const secondsPerDay = 86400

// Aggregate computes subreddit activity and posting pattern statistics from
// raw posts and comments. Independent of the indexer; pure accumulators, no
// process-wide state.
func Aggregate(posts []models.Post, comments []models.Comment) models.ActivityStats {
	return models.ActivityStats{
		SubredditActivity: subredditActivity(posts, comments),
		PostingPattern:    postingPattern(posts, comments),
	}
}

// subredditActivity counts items per subreddit, sorted descending by count.
// The sort is stable so equal counts keep first-encountered order. Items
// without a subreddit are skipped entirely.
func subredditActivity(posts []models.Post, comments []models.Comment) []models.SubredditCount {
	counts := make(map[string]int)
	var order []string

	bump := func(subreddit string) {
		if subreddit == "" {
			return
		}
		if _, seen := counts[subreddit]; !seen {
			order = append(order, subreddit)
		}
		counts[subreddit]++
	}

	for _, post := range posts {
		bump(post.Subreddit)
	}
	for _, comment := range comments {
		bump(comment.Subreddit)
	}

	activity := make([]models.SubredditCount, 0, len(order))
	for _, subreddit := range order {
		activity = append(activity, models.SubredditCount{
			Subreddit: subreddit,
			Count:     counts[subreddit],
		})
	}

	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].Count > activity[j].Count
	})

	return activity
}

// postingPattern derives timing statistics from created-at timestamps.
// Timestamps of 0 mean "unknown" and are excluded. An input with no usable
// timestamps yields the zero pattern rather than an error.
func postingPattern(posts []models.Post, comments []models.Comment) models.PostingPattern {
	timestamps := make([]float64, 0, len(posts)+len(comments))
	for _, post := range posts {
		if post.CreatedUTC > 0 {
			timestamps = append(timestamps, post.CreatedUTC)
		}
	}
	for _, comment := range comments {
		if comment.CreatedUTC > 0 {
			timestamps = append(timestamps, comment.CreatedUTC)
		}
	}

	if len(timestamps) == 0 {
		return models.PostingPattern{}
	}

	sort.Float64s(timestamps)

	var hourCounts [24]int
	var weekdayCounts [7]int
	for _, ts := range timestamps {
		t := time.Unix(int64(ts), 0)
		hourCounts[t.Hour()]++
		// shift so 0=Monday..6=Sunday
		weekdayCounts[(int(t.Weekday())+6)%7]++
	}

	pattern := models.PostingPattern{
		TotalPosts:        len(posts),
		TotalComments:     len(comments),
		TotalActivity:     len(timestamps),
		MostActiveHour:    mostCommonIndex(hourCounts[:]),
		MostActiveWeekday: mostCommonIndex(weekdayCounts[:]),
	}

	if len(timestamps) > 1 {
		span := (timestamps[len(timestamps)-1] - timestamps[0]) / secondsPerDay
		pattern.ActivitySpanDays = span
		if span > 0 {
			pattern.AverageDailyActivity = float64(len(timestamps)) / span
		}
	}

	return pattern
}

// mostCommonIndex returns the index with the highest count; ties resolve to
// the smaller index so the result is deterministic
func mostCommonIndex(counts []int) int {
	best := 0
	for i, count := range counts {
		if count > counts[best] {
			best = i
		}
	}
	return best
}
