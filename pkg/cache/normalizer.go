package cache

import (
	"regexp"
	"strings"
)

// Key namespaces keep user-scoped and anonymous entries disjoint, so
// the two classes can never collide on identical text.
const (
	userKeyPrefix   = "u:"
	globalKeyPrefix = "g:"
)

// controlChars matches control characters except \t \n \r.
var controlChars = regexp.MustCompile(`[\x00-\x08\x0B-\x0C\x0E-\x1F\x7F]`)

// normalizeKey builds the canonical lookup key for a query. The form
// is deterministic: identical (user, language, trimmed-lowercased
// query) tuples always collide, different users never do.
func normalizeKey(query, language, userID string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if userID != "" {
		return userKeyPrefix + userID + ":" + language + ":" + q
	}
	return globalKeyPrefix + language + ":" + q
}

// sanitizeQuery strips control characters and caps the input at
// maxRunes. Applied at the public boundary so the edit-distance
// computation stays bounded; it never fails.
func sanitizeQuery(query string, maxRunes int) string {
	query = controlChars.ReplaceAllString(query, "")
	if maxRunes > 0 {
		if runes := []rune(query); len(runes) > maxRunes {
			query = string(runes[:maxRunes])
		}
	}
	return query
}
