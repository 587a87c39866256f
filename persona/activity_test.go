package persona

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brettboylen/reddit-persona/models"
)

// localEpoch builds an epoch timestamp whose local calendar fields are known,
// keeping hour/weekday expectations independent of the test machine timezone
func localEpoch(year int, month time.Month, day, hour int) float64 {
	return float64(time.Date(year, month, day, hour, 0, 0, 0, time.Local).Unix())
}

func TestSubredditActivityCounts(t *testing.T) {
	posts := []models.Post{
		{Subreddit: "a"},
		{Subreddit: "a"},
	}
	comments := []models.Comment{
		{Subreddit: "b"},
	}

	stats := Aggregate(posts, comments)

	assert.Equal(t, []models.SubredditCount{
		{Subreddit: "a", Count: 2},
		{Subreddit: "b", Count: 1},
	}, stats.SubredditActivity)
}

func TestSubredditActivityStableDescendingSort(t *testing.T) {
	posts := []models.Post{
		{Subreddit: "first"},
		{Subreddit: "second"},
		{Subreddit: "big"},
		{Subreddit: "big"},
		{Subreddit: "big"},
	}
	comments := []models.Comment{
		{Subreddit: "first"},
		{Subreddit: "second"},
	}

	stats := Aggregate(posts, comments)

	// big(3) first; first and second tie at 2 and keep first-encountered order
	assert.Equal(t, []models.SubredditCount{
		{Subreddit: "big", Count: 3},
		{Subreddit: "first", Count: 2},
		{Subreddit: "second", Count: 2},
	}, stats.SubredditActivity)
}

func TestSubredditActivitySkipsEmptySubreddit(t *testing.T) {
	posts := []models.Post{
		{Subreddit: ""},
		{Subreddit: "a"},
	}
	comments := []models.Comment{
		{Subreddit: ""},
	}

	stats := Aggregate(posts, comments)

	assert.Equal(t, []models.SubredditCount{{Subreddit: "a", Count: 1}}, stats.SubredditActivity)
}

func TestPostingPatternEmptyTimestamps(t *testing.T) {
	posts := []models.Post{{Subreddit: "a", CreatedUTC: 0}}
	comments := []models.Comment{{Subreddit: "b", CreatedUTC: 0}}

	stats := Aggregate(posts, comments)

	// zero/absent defaults, not an error
	assert.Equal(t, models.PostingPattern{}, stats.PostingPattern)
}

func TestPostingPatternTotals(t *testing.T) {
	posts := []models.Post{
		{CreatedUTC: localEpoch(2024, time.March, 4, 10)},
		{CreatedUTC: 0}, // unknown timestamp excluded from activity
	}
	comments := []models.Comment{
		{CreatedUTC: localEpoch(2024, time.March, 5, 10)},
	}

	stats := Aggregate(posts, comments)

	assert.Equal(t, 2, stats.PostingPattern.TotalPosts)
	assert.Equal(t, 1, stats.PostingPattern.TotalComments)
	assert.Equal(t, 2, stats.PostingPattern.TotalActivity)
}

func TestPostingPatternMostActiveHourAndWeekday(t *testing.T) {
	// 2024-03-04 is a Monday
	posts := []models.Post{
		{CreatedUTC: localEpoch(2024, time.March, 4, 15)},
		{CreatedUTC: localEpoch(2024, time.March, 4, 15)},
		{CreatedUTC: localEpoch(2024, time.March, 5, 9)},
	}

	stats := Aggregate(posts, nil)

	assert.Equal(t, 15, stats.PostingPattern.MostActiveHour)
	assert.Equal(t, 0, stats.PostingPattern.MostActiveWeekday)
}

func TestPostingPatternTiesResolveToSmallerValue(t *testing.T) {
	// one activity at 20:00 Wednesday, one at 8:00 Friday: all counts tie,
	// so the smaller hour and smaller weekday index win
	posts := []models.Post{
		{CreatedUTC: localEpoch(2024, time.March, 6, 20)},
		{CreatedUTC: localEpoch(2024, time.March, 8, 8)},
	}

	stats := Aggregate(posts, nil)

	assert.Equal(t, 8, stats.PostingPattern.MostActiveHour)
	assert.Equal(t, 2, stats.PostingPattern.MostActiveWeekday) // Wednesday
}

func TestPostingPatternSpanAndAverage(t *testing.T) {
	base := localEpoch(2024, time.March, 4, 12)
	posts := []models.Post{
		{CreatedUTC: base},
		{CreatedUTC: base + 4*secondsPerDay},
	}
	comments := []models.Comment{
		{CreatedUTC: base + 2*secondsPerDay},
	}

	stats := Aggregate(posts, comments)

	assert.InDelta(t, 4.0, stats.PostingPattern.ActivitySpanDays, 1e-9)
	assert.InDelta(t, 0.75, stats.PostingPattern.AverageDailyActivity, 1e-9)
}

func TestPostingPatternSingleTimestamp(t *testing.T) {
	posts := []models.Post{{CreatedUTC: localEpoch(2024, time.March, 4, 12)}}

	stats := Aggregate(posts, nil)

	// span and average guard against division by zero
	assert.Equal(t, 0.0, stats.PostingPattern.ActivitySpanDays)
	assert.Equal(t, 0.0, stats.PostingPattern.AverageDailyActivity)
	assert.Equal(t, 1, stats.PostingPattern.TotalActivity)
}
