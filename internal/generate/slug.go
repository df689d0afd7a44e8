package generate

import (
	"regexp"
	"strings"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugBase = 60

// Slug derives a URL-safe slug from the title, suffixed with a slice of the
// id so two items with identical titles never collide.
func Slug(title, id string) string {
	base := strings.ToLower(title)
	base = nonAlnumRe.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if len(base) > maxSlugBase {
		base = strings.Trim(base[:maxSlugBase], "-")
	}

	suffix := id
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if base == "" {
		return suffix
	}

	return base + "-" + suffix
}
