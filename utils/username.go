package utils

import (
	"regexp"
	"strings"
)

// Profile URL forms we accept. Anything after the username (trailing slash,
// query string, fragment) is ignored.
var profilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`reddit\.com/user/([^/?#]+)`),
	regexp.MustCompile(`reddit\.com/u/([^/?#]+)`),
}

var bareUsername = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ExtractUsername normalizes a Reddit profile URL or bare username to the
// plain username. Returns an empty string when the input is neither.
func ExtractUsername(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return ""
	}

	for _, pattern := range profilePatterns {
		if match := pattern.FindStringSubmatch(profile); match != nil {
			return match[1]
		}
	}

	// no URL pattern matched; accept it as-is if it looks like a username
	if !strings.Contains(profile, "/") && bareUsername.MatchString(profile) {
		return profile
	}

	return ""
}
