package services

import (
	"regexp"
	"strings"
)

var (
	reSlugStrip  = regexp.MustCompile(`[^a-z0-9_-]`)
	reSlugHyphen = regexp.MustCompile(`-+`)
)

// Slugify turns a display name into a URL-safe slug. Applying it to its own
// output returns the same string.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), "-")
	s = reSlugStrip.ReplaceAllString(s, "")
	return reSlugHyphen.ReplaceAllString(s, "-")
}
