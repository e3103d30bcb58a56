package utils

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Tag limits applied by NormalizeTags
const (
	MaxTagLength = 32
	MaxTags      = 12
)

var (
	stripPolicy = bluemonday.StrictPolicy()
	whitespace  = regexp.MustCompile(`\s+`)
)

// ParseCSV splits a comma-separated string and returns trimmed non-empty values.
// Returns nil for empty/whitespace-only input.
func ParseCSV(s string) []string {
	if s == "" {
		return nil
	}

	var result []string
	for _, v := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

// sanitizePasses bounds how many layers of entity encoding are peeled off
const sanitizePasses = 4

// SanitizeText strips every HTML element from user free text and trims it.
// Entities are decoded and the result stripped again until it stops changing,
// so markup hidden behind entity encoding is removed too. Input that is still
// changing after sanitizePasses is returned in its escaped form.
func SanitizeText(s string) string {
	for i := 0; i < sanitizePasses; i++ {
		next := html.UnescapeString(stripPolicy.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	return strings.TrimSpace(stripPolicy.Sanitize(s))
}

// NormalizeTags sanitizes, collapses whitespace, lower-cases and deduplicates tags.
// Empty tags and tags longer than MaxTagLength runes are dropped; at most MaxTags are kept,
// in first-seen order.
func NormalizeTags(input []string) []string {
	out := make([]string, 0, len(input))
	seen := make(map[string]struct{}, len(input))

	for _, raw := range input {
		cleaned := strings.ToLower(strings.TrimSpace(whitespace.ReplaceAllString(SanitizeText(raw), " ")))
		if cleaned == "" || utf8.RuneCountInString(cleaned) > MaxTagLength {
			continue
		}
		if _, ok := seen[cleaned]; !ok {
			seen[cleaned] = struct{}{}
			out = append(out, cleaned)
		}
		if len(out) >= MaxTags {
			break
		}
	}

	return out
}
