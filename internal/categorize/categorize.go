// Package categorize assigns a category to a generated article using ordered
// keyword rules.
package categorize

import (
	"strings"

	"github.com/mchasew/newsroom/internal/newsroom"
)

// A rule maps keyword substrings to a category slug. Rules are evaluated in
// order and only the first match applies; exam/job content about "breaking
// tech news" is exams-jobs, not technology, because of its higher
// publication priority.
type rule struct {
	keywords []string
	slug     string
}

var rules = []rule{
	{
		keywords: []string{"exam", "job", "result", "hiring", "recruitment", "vacancy", "admit card"},
		slug:     "exams-jobs",
	},
	{
		keywords: []string{"news", "breaking", "announce", "notification", "update"},
		slug:     "news",
	},
	{
		keywords: []string{"tech", "software", "ai", "artificial intelligence", "programming", "gadget", "computing"},
		slug:     "technology",
	},
	{
		keywords: []string{"business", "startup", "finance", "economy", "market", "investment"},
		slug:     "business",
	},
	{
		keywords: []string{"marketing", "seo", "advertising", "branding", "social media"},
		slug:     "marketing",
	},
	{
		keywords: []string{"design", "ui", "ux", "graphic", "typography"},
		slug:     "design",
	},
	{
		keywords: []string{"lifestyle", "health", "travel", "food", "fitness", "wellness"},
		slug:     "lifestyle",
	},
}

const catchAllSlug = "others"

// Categorize resolves a category id for the article, evaluated against the
// live category set. Returns nil when nothing matches and no catch-all
// category exists.
func Categorize(topic, title, content string, categories []newsroom.Category) *string {
	bySlug := make(map[string]string, len(categories))
	for _, c := range categories {
		bySlug[c.Slug] = c.ID
	}

	haystack := strings.ToLower(topic + " " + title + " " + content)
	for _, r := range rules {
		if id, ok := bySlug[r.slug]; ok && matches(haystack, r.keywords) {
			return &id
		}
	}

	if id, ok := bySlug[catchAllSlug]; ok {
		return &id
	}

	return nil
}

func matches(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}

	return false
}
