// Package aggregate holds the pure functions that shape already-fetched
// record sets for rendering: hashtag extraction, comment threading, story
// grouping and unread-message summation.
package aggregate

import "regexp"

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// ExtractHashtags scans free text for #word tokens and returns the
// lower-cased token bodies in first-seen order. Duplicates are kept;
// de-duplication, when wanted, happens at storage time.
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, lower(m[1]))
	}
	return tags
}

// lower is ASCII-aware lowercasing; \w only matches ASCII letters, digits
// and underscore, so strings.ToLower's full Unicode handling is not needed,
// but it is what we use anyway for clarity.
func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
