package generate

import (
	"encoding/json"
	"regexp"
	"strings"
)

type parsed struct {
	title     string
	excerpt   string
	tags      []string
	sourceURL *string
	body      string
}

var sourceURLRe = regexp.MustCompile(`https?://\S+`)

// parseCompletion pulls the metadata lines out of the raw model output.
//
// Every field degrades independently: a missing title falls back to the
// topic, a missing meta to the first body line, unparseable tags to a
// keyword-derived set. The metadata lines themselves and any trailing
// separator are stripped from the stored body.
func parseCompletion(topic, raw string) parsed {
	var (
		p         parsed
		bodyLines []string
	)

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case hasFold(trimmed, "Title:"):
			p.title = strings.TrimSpace(trimmed[len("Title:"):])
		case hasFold(trimmed, "Meta:"):
			p.excerpt = strings.TrimSpace(trimmed[len("Meta:"):])
		case hasFold(trimmed, "Tags:"):
			p.tags = parseTags(trimmed[len("Tags:"):])
		case hasFold(trimmed, "Source:"):
			if url := sourceURLRe.FindString(trimmed); url != "" {
				p.sourceURL = &url
			}
		default:
			bodyLines = append(bodyLines, line)
		}
	}

	body := strings.TrimSpace(strings.Join(bodyLines, "\n"))
	body = strings.TrimSuffix(body, "---")
	p.body = strings.TrimSpace(body)

	if p.title == "" {
		p.title = topic
	}
	if p.excerpt == "" {
		p.excerpt = firstBodyLine(p.body)
	}
	if len(p.tags) == 0 {
		p.tags = heuristicTags(topic)
	}

	return p
}

func hasFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// parseTags expects a bracketed JSON array somewhere in the remainder of the
// Tags: line. Anything else is treated as absent.
func parseTags(rest string) []string {
	start := strings.Index(rest, "[")
	end := strings.LastIndex(rest, "]")
	if start < 0 || end <= start {
		return nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(rest[start:end+1]), &tags); err != nil {
		return nil
	}

	var cleaned []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}

	return cleaned
}

// firstBodyLine returns the first non-heading, non-empty line of the body,
// truncated to 200 runes.
func firstBodyLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || trimmed == "---" {
			continue
		}

		runes := []rune(trimmed)
		if len(runes) > 200 {
			return string(runes[:200])
		}
		return trimmed
	}

	return ""
}

var tagStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"in": true, "on": true, "for": true, "to": true, "with": true, "at": true,
	"is": true, "are": true, "its": true, "by": true, "from": true,
}

var tagWordRe = regexp.MustCompile(`[a-z0-9]+`)

// heuristicTags derives a deterministic, non-empty tag set from the topic
// keywords.
func heuristicTags(topic string) []string {
	words := tagWordRe.FindAllString(strings.ToLower(topic), -1)

	var tags []string
	for _, w := range words {
		if len(w) < 3 || tagStopwords[w] {
			continue
		}
		tags = append(tags, w)
		if len(tags) == 5 {
			break
		}
	}

	if len(tags) == 0 {
		tags = []string{"general"}
	}

	return tags
}
