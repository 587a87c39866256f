package persona

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brettboylen/reddit-persona/models"
)

// Per-section sampling temperatures. Demographics leans deterministic,
// personality gets the most latitude.
const (
	demographicsTemperature = 0.3
	interestsTemperature    = 0.4
	personalityTemperature  = 0.5
	behaviorTemperature     = 0.4
)

const topSubredditsInPrompt = 10

const demographicsSystemPrompt = `You are an expert demographic analyst. Analyze Reddit user data to infer demographics.

Provide analysis in this format:
AGE: [Estimated age range with reasoning]
LOCATION: [Likely geographic location with reasoning]
OCCUPATION: [Likely profession/field with reasoning]
EDUCATION: [Likely education level with reasoning]

Base your analysis on:
- Language patterns and slang usage
- References to life events, technology, culture
- Subreddit participation patterns
- Time zone activity patterns
- Professional or academic references

Always include specific post/comment references in brackets like [POST_1] or [COMMENT_5] to support your conclusions.
Be conservative in your estimates and clearly state when evidence is limited.`

const interestsSystemPrompt = `You are an expert interest analyst. Analyze Reddit user data to identify interests and hobbies.

Provide analysis in this format:
PRIMARY INTERESTS: [Top 3-5 interests with evidence]
SECONDARY INTERESTS: [Additional interests with evidence]
HOBBY PATTERNS: [Specific hobbies and activities]
ENTERTAINMENT PREFERENCES: [Media, games, etc.]

Consider:
- Subreddit participation frequency
- Content engagement patterns
- Specific topics discussed
- Recurring themes and subjects

Always include specific post/comment references in brackets like [POST_1] or [COMMENT_5] to support your conclusions.
Rank interests by engagement level and consistency.`

const personalitySystemPrompt = `You are an expert personality analyst. Analyze Reddit user data to identify personality traits.

Provide analysis in this format:
COMMUNICATION STYLE: [How they communicate with evidence]
EMOTIONAL PATTERNS: [Emotional tendencies with evidence]
SOCIAL BEHAVIOR: [How they interact with others]
DECISION MAKING: [How they approach decisions]
VALUES AND BELIEFS: [What seems important to them]

Focus on:
- Language tone and style
- Reaction patterns to different topics
- Conflict resolution approaches
- Helping/sharing behavior
- Humor and creativity patterns

Always include specific post/comment references in brackets like [POST_1] or [COMMENT_5] to support your conclusions.
Be objective and avoid making judgmental statements.`

const behaviorSystemPrompt = `You are an expert behavioral analyst. Analyze Reddit user data to identify behavioral patterns.

Provide analysis in this format:
POSTING FREQUENCY: [How often they post with patterns]
ENGAGEMENT STYLE: [How they engage with content]
COMMUNITY PARTICIPATION: [How they participate in discussions]
CONTENT PREFERENCES: [What type of content they prefer]
ONLINE HABITS: [Observable online behavior patterns]

Consider:
- Posting timing and frequency
- Response patterns to others
- Content creation vs consumption
- Subreddit loyalty and exploration
- Karma-seeking behavior

Always include specific post/comment references in brackets like [POST_1] or [COMMENT_5] to support your conclusions.
Focus on observable behaviors rather than assumptions.`

// flattenPrompt joins a system instruction and a user message into the single
// text prompt the LLM collaborator accepts
func flattenPrompt(system, user string) string {
	return fmt.Sprintf("System: %s\n\nUser: %s", system, user)
}

func demographicsPrompt(corpus string) string {
	user := fmt.Sprintf("Analyze this Reddit user's demographics based on their posts and comments:\n\n%s", corpus)
	return flattenPrompt(demographicsSystemPrompt, user)
}

func interestsPrompt(corpus string, activity []models.SubredditCount) string {
	top := activity
	if len(top) > topSubredditsInPrompt {
		top = top[:topSubredditsInPrompt]
	}

	lines := make([]string, 0, len(top))
	for _, entry := range top {
		lines = append(lines, fmt.Sprintf("r/%s: %d posts/comments", entry.Subreddit, entry.Count))
	}

	user := fmt.Sprintf(`Analyze this Reddit user's interests based on their activity:

Top Subreddits by Activity:
%s

Posts and Comments:
%s`, strings.Join(lines, "\n"), corpus)

	return flattenPrompt(interestsSystemPrompt, user)
}

func personalityPrompt(corpus string) string {
	user := fmt.Sprintf("Analyze this Reddit user's personality based on their posts and comments:\n\n%s", corpus)
	return flattenPrompt(personalitySystemPrompt, user)
}

func behaviorPrompt(corpus string, pattern models.PostingPattern) string {
	serialized, err := json.MarshalIndent(pattern, "", "  ")
	if err != nil {
		// a plain struct cannot fail to marshal; keep the prompt usable anyway
		serialized = []byte("{}")
	}

	user := fmt.Sprintf(`Analyze this Reddit user's behavior patterns:

Activity Patterns:
%s

Posts and Comments:
%s`, string(serialized), corpus)

	return flattenPrompt(behaviorSystemPrompt, user)
}
