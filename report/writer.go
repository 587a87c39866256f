package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/brettboylen/reddit-persona/models"
)

const (
	topSubredditsInReport = 15

	failedSectionMessage = "Analysis could not be generated for this section."
)

var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Writer formats persona records and saves them as report files
type Writer struct {
	outputDir string
	log       *logrus.Logger
}

// NewWriter creates a writer rooted at outputDir, creating it if needed
func NewWriter(outputDir string, log *logrus.Logger) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	log.WithField("dir", outputDir).Info("Output directory ready")

	return &Writer{
		outputDir: outputDir,
		log:       log,
	}, nil
}

// WritePersona renders the persona record to a text report and returns the
// file path. I/O failures wrap the underlying cause.
func (w *Writer) WritePersona(persona *models.Persona, username string) (string, error) {
	if persona == nil {
		return "", fmt.Errorf("persona data cannot be empty")
	}

	filename := safeFilename(username) + "_persona.txt"
	path := filepath.Join(w.outputDir, filename)

	var b strings.Builder
	b.WriteString(formatHeader(username, persona.GeneratedAt.Format("2006-01-02T15:04:05")))
	b.WriteString(formatUserStatistics(persona.Statistics))
	b.WriteString(formatSubredditActivity(persona.Statistics.SubredditActivity))
	b.WriteString(formatAnalysisSection("DEMOGRAPHICS ANALYSIS", "👤", persona.Analysis.Demographics))
	b.WriteString(formatAnalysisSection("INTERESTS ANALYSIS", "🎯", persona.Analysis.Interests))
	b.WriteString(formatAnalysisSection("PERSONALITY ANALYSIS", "🧠", persona.Analysis.Personality))
	b.WriteString(formatAnalysisSection("BEHAVIOR ANALYSIS", "📈", persona.Analysis.Behavior))
	b.WriteString(formatCitations(persona.Citations))
	b.WriteString(formatFooter())

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write persona file: %w", err)
	}

	w.log.WithField("file", path).Info("Successfully wrote persona file")
	return path, nil
}

// WriteDebugData dumps the full persona record as indented JSON for
// troubleshooting. Failure is logged but not fatal.
func (w *Writer) WriteDebugData(persona *models.Persona, username string) (string, error) {
	filename := safeFilename(username) + "_debug.json"
	path := filepath.Join(w.outputDir, filename)

	data, err := json.MarshalIndent(persona, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal debug data: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write debug data: %w", err)
	}

	w.log.WithField("file", path).Info("Debug data written")
	return path, nil
}

// safeFilename strips everything but alphanumerics, '.', '_' and '-'
func safeFilename(username string) string {
	var b strings.Builder
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatHeader(username, generatedAt string) string {
	rule := strings.Repeat("=", 80)
	return fmt.Sprintf(`
%s
                    REDDIT USER PERSONA ANALYSIS
%s

Username: u/%s
Generated: %s
Generated by: Reddit Persona Generator

%s
`, rule, rule, username, generatedAt, rule)
}

func formatUserStatistics(stats models.Statistics) string {
	lines := []string{"\n📊 USER STATISTICS", strings.Repeat("=", 50)}

	info := stats.UserInfo
	if info.Username != "" {
		lines = append(lines,
			fmt.Sprintf("Account Age: %.0f days", info.AccountAgeDays),
			fmt.Sprintf("Comment Karma: %d", info.CommentKarma),
			fmt.Sprintf("Link Karma: %d", info.LinkKarma),
			fmt.Sprintf("Has Verified Email: %t", info.HasVerifiedEmail),
			fmt.Sprintf("Is Gold Member: %t", info.IsGold),
			fmt.Sprintf("Is Moderator: %t", info.IsMod),
		)
	}

	lines = append(lines,
		"\nData Analyzed:",
		fmt.Sprintf("  • Posts: %d", stats.ScrapeStats.PostsScraped),
		fmt.Sprintf("  • Comments: %d", stats.ScrapeStats.CommentsScraped),
		fmt.Sprintf("  • Scraped: %s", stats.ScrapeStats.ScrapedAt.Format("2006-01-02T15:04:05")),
	)

	pattern := stats.PostingPattern
	lines = append(lines,
		"\nActivity Patterns:",
		fmt.Sprintf("  • Total Activity: %d", pattern.TotalActivity),
		fmt.Sprintf("  • Posts: %d", pattern.TotalPosts),
		fmt.Sprintf("  • Comments: %d", pattern.TotalComments),
	)

	// hour and weekday are only meaningful when timestamped activity exists
	if pattern.TotalActivity > 0 {
		lines = append(lines, fmt.Sprintf("  • Most Active Hour: %d:00", pattern.MostActiveHour))
		if pattern.MostActiveWeekday >= 0 && pattern.MostActiveWeekday < len(weekdayNames) {
			lines = append(lines, fmt.Sprintf("  • Most Active Day: %s", weekdayNames[pattern.MostActiveWeekday]))
		}
	}
	if pattern.ActivitySpanDays > 0 {
		lines = append(lines, fmt.Sprintf("  • Activity Span: %.0f days", pattern.ActivitySpanDays))
	}
	if pattern.AverageDailyActivity > 0 {
		lines = append(lines, fmt.Sprintf("  • Average Daily Activity: %.1f posts/comments", pattern.AverageDailyActivity))
	}

	return strings.Join(lines, "\n")
}

func formatSubredditActivity(activity []models.SubredditCount) string {
	lines := []string{"\n\n🏘️ SUBREDDIT ACTIVITY", strings.Repeat("=", 50)}

	if len(activity) == 0 {
		lines = append(lines, "No subreddit activity data available")
		return strings.Join(lines, "\n")
	}

	top := activity
	if len(top) > topSubredditsInReport {
		top = top[:topSubredditsInReport]
	}

	for i, entry := range top {
		lines = append(lines, fmt.Sprintf("%2d. r/%-25s %4d posts/comments", i+1, entry.Subreddit, entry.Count))
	}

	if len(activity) > topSubredditsInReport {
		lines = append(lines, fmt.Sprintf("\n... and %d more subreddits", len(activity)-topSubredditsInReport))
	}

	return strings.Join(lines, "\n")
}

func formatAnalysisSection(title, icon, analysis string) string {
	lines := []string{fmt.Sprintf("\n\n%s %s", icon, title), strings.Repeat("=", 50)}

	if strings.TrimSpace(analysis) == "" || strings.TrimSpace(analysis) == models.AnalysisFailedSentinel {
		lines = append(lines, failedSectionMessage)
		return strings.Join(lines, "\n")
	}

	for _, line := range strings.Split(strings.TrimSpace(analysis), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// blank line before short header-like lines so subsections stand out
		if strings.HasSuffix(line, ":") && len(line) < 50 {
			lines = append(lines, "\n"+line)
		} else {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

func formatCitations(citations models.CitationMap) string {
	lines := []string{"\n\n📚 CITATIONS & REFERENCES", strings.Repeat("=", 50)}

	if len(citations) == 0 {
		lines = append(lines, "No citations available")
		return strings.Join(lines, "\n")
	}

	var postTokens, commentTokens []string
	for token, citation := range citations {
		switch citation.Kind {
		case models.CitationKindPost:
			postTokens = append(postTokens, token)
		case models.CitationKindComment:
			commentTokens = append(commentTokens, token)
		}
	}
	sort.Strings(postTokens)
	sort.Strings(commentTokens)

	if len(postTokens) > 0 {
		lines = append(lines, "\nPOSTS:")
		for _, token := range postTokens {
			citation := citations[token]
			lines = append(lines,
				fmt.Sprintf("  %s: r/%s", token, citation.Subreddit),
				fmt.Sprintf("    Title: %s", orDefault(citation.Title, "No title")),
				fmt.Sprintf("    Score: %d", citation.Score),
			)
			if citation.Permalink != "" {
				lines = append(lines, fmt.Sprintf("    Link: https://reddit.com%s", citation.Permalink))
			}
			lines = append(lines, "")
		}
	}

	if len(commentTokens) > 0 {
		lines = append(lines, "\nCOMMENTS:")
		for _, token := range commentTokens {
			citation := citations[token]
			lines = append(lines,
				fmt.Sprintf("  %s: r/%s", token, citation.Subreddit),
				fmt.Sprintf("    In: %s", orDefault(citation.SubmissionTitle, "Unknown post")),
				fmt.Sprintf("    Score: %d", citation.Score),
			)
			if citation.Permalink != "" {
				lines = append(lines, fmt.Sprintf("    Link: https://reddit.com%s", citation.Permalink))
			}
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n")
}

func formatFooter() string {
	rule := strings.Repeat("=", 80)
	return fmt.Sprintf(`

%s
                              DISCLAIMER
%s

This persona analysis is generated based on publicly available Reddit data
and should be used for informational purposes only. The analysis represents
patterns and trends in the user's public posting behavior and should not be
considered a definitive psychological profile.

All data is sourced from Reddit's public API and follows Reddit's terms of
service. No private or sensitive information has been accessed.

Generated by Reddit Persona Generator
%s
`, rule, rule, rule)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
