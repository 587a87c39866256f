package persona

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/brettboylen/reddit-persona/models"
)

// Completer is the LLM collaborator boundary. A call that fails, times out or
// returns nothing yields an error; the dispatcher never sees partial output.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Analyzer issues the four persona analyses against the LLM collaborator
type Analyzer struct {
	llm Completer
	log *logrus.Logger
}

// NewAnalyzer creates an analyzer backed by the given LLM collaborator
func NewAnalyzer(llm Completer, log *logrus.Logger) *Analyzer {
	return &Analyzer{
		llm: llm,
		log: log,
	}
}

// section is one dispatched analysis request
type section struct {
	name        string
	prompt      string
	temperature float64
	result      *string
}

// Analyze runs the four analysis sections concurrently. The sections are
// independent: a failed call downgrades that section to the sentinel and the
// others proceed. Each result lands in its own field, so the WaitGroup is the
// only synchronization needed.
func (a *Analyzer) Analyze(ctx context.Context, corpus string, stats models.ActivityStats) models.Analysis {
	analysis := models.Analysis{}

	sections := []section{
		{
			name:        "demographics",
			prompt:      demographicsPrompt(corpus),
			temperature: demographicsTemperature,
			result:      &analysis.Demographics,
		},
		{
			name:        "interests",
			prompt:      interestsPrompt(corpus, stats.SubredditActivity),
			temperature: interestsTemperature,
			result:      &analysis.Interests,
		},
		{
			name:        "personality",
			prompt:      personalityPrompt(corpus),
			temperature: personalityTemperature,
			result:      &analysis.Personality,
		},
		{
			name:        "behavior",
			prompt:      behaviorPrompt(corpus, stats.PostingPattern),
			temperature: behaviorTemperature,
			result:      &analysis.Behavior,
		},
	}

	var wg sync.WaitGroup

	for i := range sections {
		wg.Add(1)
		go func(s *section) {
			defer wg.Done()
			*s.result = a.analyzeSection(ctx, s)
		}(&sections[i])
	}

	wg.Wait()

	a.log.WithFields(logrus.Fields{
		"failed_sections": analysis.FailedCount(),
	}).Info("Completed persona analysis dispatch")

	return analysis
}

// analyzeSection runs one section and absorbs its failure into the sentinel
func (a *Analyzer) analyzeSection(ctx context.Context, s *section) string {
	text, err := a.llm.Complete(ctx, s.prompt, s.temperature)
	if err != nil {
		a.log.WithError(err).WithField("section", s.name).Error("Analysis section failed")
		return models.AnalysisFailedSentinel
	}

	if strings.TrimSpace(text) == "" {
		a.log.WithField("section", s.name).Error("Analysis section returned empty response")
		return models.AnalysisFailedSentinel
	}

	a.log.WithFields(logrus.Fields{
		"section":      s.name,
		"length_chars": len(text),
	}).Debug("Analysis section completed")

	return text
}
