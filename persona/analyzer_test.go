package persona

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/brettboylen/reddit-persona/models"
)

// fakeCompleter records every call and answers from a per-prompt script
type fakeCompleter struct {
	mutex        sync.Mutex
	calls        int
	prompts      []string
	temperatures []float64
	respond      func(prompt string, temperature float64) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, temperature float64) (string, error) {
	f.mutex.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.temperatures = append(f.temperatures, temperature)
	f.mutex.Unlock()

	if f.respond != nil {
		return f.respond(prompt, temperature)
	}
	return "analysis text", nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testStats() models.ActivityStats {
	return models.ActivityStats{
		SubredditActivity: []models.SubredditCount{
			{Subreddit: "golang", Count: 5},
			{Subreddit: "news", Count: 2},
		},
		PostingPattern: models.PostingPattern{
			TotalPosts:    3,
			TotalComments: 4,
			TotalActivity: 7,
		},
	}
}

func TestAnalyzeAllSectionsSucceed(t *testing.T) {
	llm := &fakeCompleter{}
	analyzer := NewAnalyzer(llm, testLogger())

	analysis := analyzer.Analyze(context.Background(), "corpus text", testStats())

	assert.Equal(t, 4, llm.calls)
	assert.Equal(t, 0, analysis.FailedCount())
	for _, section := range analysis.Sections() {
		assert.Equal(t, "analysis text", section)
	}
}

func TestAnalyzeTemperaturesPerSection(t *testing.T) {
	llm := &fakeCompleter{}
	analyzer := NewAnalyzer(llm, testLogger())

	analyzer.Analyze(context.Background(), "corpus text", testStats())

	assert.ElementsMatch(t, []float64{0.3, 0.4, 0.5, 0.4}, llm.temperatures)
}

func TestAnalyzePromptContents(t *testing.T) {
	llm := &fakeCompleter{}
	analyzer := NewAnalyzer(llm, testLogger())

	analyzer.Analyze(context.Background(), "CORPUS_MARKER [POST_1]", testStats())

	var interests, behavior string
	for _, prompt := range llm.prompts {
		// every prompt carries the corpus and the citation grounding contract
		assert.Contains(t, prompt, "CORPUS_MARKER")
		assert.Contains(t, prompt, "[POST_1] or [COMMENT_5]")

		if strings.Contains(prompt, "Top Subreddits by Activity") {
			interests = prompt
		}
		if strings.Contains(prompt, "Activity Patterns:") {
			behavior = prompt
		}
	}

	// interests receives the serialized top subreddits
	assert.Contains(t, interests, "r/golang: 5 posts/comments")
	assert.Contains(t, interests, "r/news: 2 posts/comments")

	// behavior receives the serialized posting pattern
	assert.Contains(t, behavior, `"total_posts": 3`)
	assert.Contains(t, behavior, `"total_comments": 4`)
}

func TestAnalyzeSingleFailureDoesNotBlockOthers(t *testing.T) {
	llm := &fakeCompleter{
		respond: func(prompt string, temperature float64) (string, error) {
			if strings.Contains(prompt, "demographic analyst") {
				return "", errors.New("quota exceeded")
			}
			return "ok", nil
		},
	}
	analyzer := NewAnalyzer(llm, testLogger())

	analysis := analyzer.Analyze(context.Background(), "corpus", testStats())

	assert.Equal(t, 4, llm.calls)
	assert.Equal(t, models.AnalysisFailedSentinel, analysis.Demographics)
	assert.Equal(t, "ok", analysis.Interests)
	assert.Equal(t, "ok", analysis.Personality)
	assert.Equal(t, "ok", analysis.Behavior)
}

func TestAnalyzeEmptyResponseIsFailure(t *testing.T) {
	llm := &fakeCompleter{
		respond: func(string, float64) (string, error) {
			return "   \n", nil
		},
	}
	analyzer := NewAnalyzer(llm, testLogger())

	analysis := analyzer.Analyze(context.Background(), "corpus", testStats())

	assert.Equal(t, 4, analysis.FailedCount())
}

func TestInterestsPromptTopTenOnly(t *testing.T) {
	activity := make([]models.SubredditCount, 0, 12)
	for i := 0; i < 12; i++ {
		activity = append(activity, models.SubredditCount{
			Subreddit: strings.Repeat("s", i+1),
			Count:     20 - i,
		})
	}

	prompt := interestsPrompt("corpus", activity)

	assert.Contains(t, prompt, "r/s: 20 posts/comments")
	assert.Contains(t, prompt, "r/ssssssssss: 11 posts/comments")
	assert.NotContains(t, prompt, "r/sssssssssss: 10")
}
