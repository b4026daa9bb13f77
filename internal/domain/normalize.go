package domain

import (
	"strings"
)

// CollapseSpace trims text and compresses every run of whitespace,
// line breaks included, into one space. Case is kept.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeText prepares text for comparison:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses runs of whitespace into one space
func NormalizeText(text string) string {
	return strings.ToLower(CollapseSpace(text))
}

// NormalizeTag lowercases a tag, trims it and drops any leading '#' markers.
// Inner whitespace is not allowed in a tag and is removed.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimLeft(tag, "#")
	tag = strings.Join(strings.Fields(tag), "")
	return strings.ToLower(tag)
}

// NormalizeTags normalizes every tag and removes empties and duplicates.
// First-seen order is kept. A nil or empty input yields an empty, non-nil slice.
func NormalizeTags(tags []string) []string {
	return dedupe(tags, NormalizeTag)
}

// NormalizeKeywords normalizes search terms the same way NormalizeTags does
// for tags: empties and duplicates are dropped, first-seen order is kept.
func NormalizeKeywords(keywords []string) []string {
	return dedupe(keywords, NormalizeText)
}

func dedupe(items []string, norm func(string) string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		n := norm(item)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
