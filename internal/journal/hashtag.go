package journal

import (
	"regexp"
	"strings"
)

// hashtagPattern matches "#" followed by letters, digits, underscore or
// hyphen. A "#" adjacent to other punctuation simply fails to match past the
// allowed class.
var hashtagPattern = regexp.MustCompile(`#([\w-]+)`)

// ExtractHashtags returns the distinct lowercase hashtags in text, in order
// of first occurrence. Tags differing only in case collapse to one entry.
// Empty input yields nil.
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)

	seen := make(map[string]bool)
	var tags []string
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}
