package persona

import (
	"fmt"
	"strings"

	"github.com/brettboylen/reddit-persona/models"
)

const (
	maxCorpusPosts    = 50
	maxCorpusComments = 100

	postBodyBudget    = 500
	commentBodyBudget = 300

	ellipsisMarker = "..."
)

// Index converts raw posts and comments into the LLM corpus plus the citation
// map that grounds it. Citation ordinals are dense, 1-based per kind, and
// follow input order, so the list must already be in the scraper's
// newest-first order. Pure function; no I/O.
func Index(posts []models.Post, comments []models.Comment) (string, models.CitationMap) {
	if len(posts) > maxCorpusPosts {
		posts = posts[:maxCorpusPosts]
	}
	if len(comments) > maxCorpusComments {
		comments = comments[:maxCorpusComments]
	}

	citations := make(models.CitationMap, len(posts)+len(comments))
	var parts []string

	if len(posts) > 0 {
		parts = append(parts, "=== REDDIT POSTS ===")
		for i, post := range posts {
			token := fmt.Sprintf("POST_%d", i+1)
			citations[token] = models.Citation{
				Kind:       models.CitationKindPost,
				ID:         post.ID,
				Title:      post.Title,
				Subreddit:  post.Subreddit,
				Score:      post.Score,
				CreatedUTC: post.CreatedUTC,
				Permalink:  post.Permalink,
			}

			parts = append(parts,
				fmt.Sprintf("\n[%s] r/%s", token, subredditOrUnknown(post.Subreddit)),
				fmt.Sprintf("Title: %s", titleOrPlaceholder(post.Title)),
				fmt.Sprintf("Content: %s", truncateBody(post.SelfText, postBodyBudget)),
				fmt.Sprintf("Score: %d", post.Score),
			)
		}
	}

	if len(comments) > 0 {
		parts = append(parts, "\n\n=== REDDIT COMMENTS ===")
		for i, comment := range comments {
			token := fmt.Sprintf("COMMENT_%d", i+1)
			citations[token] = models.Citation{
				Kind:            models.CitationKindComment,
				ID:              comment.ID,
				Subreddit:       comment.Subreddit,
				Score:           comment.Score,
				CreatedUTC:      comment.CreatedUTC,
				SubmissionTitle: comment.SubmissionTitle,
				Permalink:       comment.Permalink,
			}

			parts = append(parts,
				fmt.Sprintf("\n[%s] r/%s", token, subredditOrUnknown(comment.Subreddit)),
				fmt.Sprintf("In response to: %s", submissionTitleOrPlaceholder(comment.SubmissionTitle)),
				fmt.Sprintf("Comment: %s", truncateBody(comment.Body, commentBodyBudget)),
				fmt.Sprintf("Score: %d", comment.Score),
			)
		}
	}

	return strings.Join(parts, "\n"), citations
}

// truncateBody cuts body to budget characters and appends the ellipsis
// marker. The cut lands on a rune boundary so non-ASCII bodies stay valid
// UTF-8. The comparison is strictly greater-than: a body exactly at the
// budget passes through unchanged.
func truncateBody(body string, budget int) string {
	runes := []rune(body)
	if len(runes) > budget {
		return string(runes[:budget]) + ellipsisMarker
	}
	return body
}

func subredditOrUnknown(subreddit string) string {
	if subreddit == "" {
		return "unknown"
	}
	return subreddit
}

func titleOrPlaceholder(title string) string {
	if title == "" {
		return "No title"
	}
	return title
}

func submissionTitleOrPlaceholder(title string) string {
	if title == "" {
		return "Unknown post"
	}
	return title
}
