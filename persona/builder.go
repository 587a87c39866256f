package persona

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brettboylen/reddit-persona/models"
)

// Assembly failure taxonomy. An empty corpus means no analysis was even
// attempted; all-failed means every section was attempted and none produced
// text. Callers must be able to tell these apart.
var (
	ErrEmptyCorpus       = errors.New("no content available for persona analysis")
	ErrAllAnalysesFailed = errors.New("all persona analyses failed")
)

// Builder runs the full persona pipeline for one user
type Builder struct {
	analyzer *Analyzer
	log      *logrus.Logger
}

// NewBuilder creates a persona builder backed by the given LLM collaborator
func NewBuilder(llm Completer, log *logrus.Logger) *Builder {
	return &Builder{
		analyzer: NewAnalyzer(llm, log),
		log:      log,
	}
}

// BuildPersona indexes the raw data, aggregates activity statistics,
// dispatches the four analyses and assembles the persona record. The corpus
// is checked before any LLM call is made, so an empty account fails fast
// with ErrEmptyCorpus.
func (b *Builder) BuildPersona(ctx context.Context, userData *models.UserData, username string) (*models.Persona, error) {
	b.log.WithField("username", username).Info("Building persona for user")

	corpus, citations := Index(userData.Posts, userData.Comments)
	if strings.TrimSpace(corpus) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, username)
	}

	stats := Aggregate(userData.Posts, userData.Comments)

	analysis := b.analyzer.Analyze(ctx, corpus, stats)

	persona, err := Assemble(username, corpus, citations, stats, analysis, userData.ScrapeStats, userData.UserInfo)
	if err != nil {
		return nil, err
	}

	b.log.WithFields(logrus.Fields{
		"username":        username,
		"citations":       len(persona.Citations),
		"failed_sections": persona.Analysis.FailedCount(),
	}).Info("Successfully built persona for user")

	return persona, nil
}

// Assemble merges indexer, aggregator and dispatcher outputs into one
// immutable persona record. Failed sections keep the literal sentinel so
// rendering can special-case them without an optional type. The generation
// timestamp is taken here, at assembly time.
func Assemble(
	username string,
	corpus string,
	citations models.CitationMap,
	stats models.ActivityStats,
	analysis models.Analysis,
	scrapeStats models.ScrapeStats,
	userInfo models.UserInfo,
) (*models.Persona, error) {
	if strings.TrimSpace(corpus) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, username)
	}

	if analysis.FailedCount() == len(analysis.Sections()) {
		return nil, fmt.Errorf("%w: %s", ErrAllAnalysesFailed, username)
	}

	return &models.Persona{
		Username: username,
		Analysis: analysis,
		Statistics: models.Statistics{
			SubredditActivity: stats.SubredditActivity,
			PostingPattern:    stats.PostingPattern,
			ScrapeStats:       scrapeStats,
			UserInfo:          userInfo,
		},
		Citations:   citations,
		GeneratedAt: time.Now(),
	}, nil
}
