// Package util provides process-wide validation constants and small
// pure helpers shared across packages.
package util

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// UsernameRegex constrains actor preferred names.
	UsernameRegex = regexp.MustCompile(`(?i)^[a-z0-9_]+([a-z0-9_.-]+[a-z0-9_]+)?$`)

	// TagRegex matches a usable tag token.
	TagRegex = regexp.MustCompile(`(?i)[\p{L}\p{M}\p{N}_]{2,}`)

	lineBreaks = regexp.MustCompile(`[\r\n]+`)
)

// IsValidUsername reports whether name is an acceptable preferred name.
func IsValidUsername(name string) bool {
	return UsernameRegex.MatchString(name)
}

// NormalizeTitle trims a title and strips embedded line breaks.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(lineBreaks.ReplaceAllString(strings.TrimSpace(title), ""))
}

// NormalizeTags splits a comma separated tag string, trims each entry,
// drops unusable tokens and case-insensitive duplicates, and returns
// the result sorted.
func NormalizeTags(tags string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		if !TagRegex.MatchString(tag) {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
