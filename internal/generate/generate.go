// Package generate turns a topic into a structured draft article via the
// text-generation backend, with a deterministic local fallback.
package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/mchasew/newsroom/internal/newsroom"
)

const queueItemNamespace = "-qi"

// Article is a generated draft before categorization and policy have run.
type Article struct {
	ID        string
	Slug      string
	Title     string
	Body      string
	Excerpt   string
	Tags      newsroom.Tags
	SourceURL *string
}

type Generator struct {
	completer newsroom.Completer
	settings  newsroom.SettingsService
}

func NewGenerator(completer newsroom.Completer, settings newsroom.SettingsService) *Generator {
	return &Generator{
		completer: completer,
		settings:  settings,
	}
}

// Models may echo markup into single-line fields; everything but plain text
// gets stripped out of titles and excerpts.
var stripPolicy = bluemonday.StrictPolicy()

// Generate produces a draft for the topic using the given model.
//
// If the backend call fails and fallback generation is enabled, or the
// backend reported a permission-class error, a deterministic templated
// article is produced instead. Other failures propagate.
func (g *Generator) Generate(ctx context.Context, topic, model string) (Article, error) {
	raw, err := g.completer.Complete(ctx, newsroom.CompletionRequest{
		Prompt:      buildPrompt(topic),
		Model:       model,
		MaxTokens:   4096,
		Temperature: 0.7,
	})
	if err != nil {
		if !g.fallbackEnabled(ctx) && !permissionClass(err) {
			return Article{}, fmt.Errorf("error generating article: %w", err)
		}
		return g.fromFallback(topic), nil
	}

	parsed := parseCompletion(topic, raw)

	id := fmt.Sprintf("%s%s", uuid.NewString(), queueItemNamespace)
	title := strings.TrimSpace(stripPolicy.Sanitize(parsed.title))

	return Article{
		ID:        id,
		Slug:      Slug(title, id),
		Title:     title,
		Body:      parsed.body,
		Excerpt:   strings.TrimSpace(stripPolicy.Sanitize(parsed.excerpt)),
		Tags:      parsed.tags,
		SourceURL: parsed.sourceURL,
	}, nil
}

func (g *Generator) fromFallback(topic string) Article {
	title, body, tags := fallbackArticle(topic)

	id := fmt.Sprintf("%s%s", uuid.NewString(), queueItemNamespace)
	return Article{
		ID:      id,
		Slug:    Slug(title, id),
		Title:   title,
		Body:    body,
		Excerpt: firstBodyLine(body),
		Tags:    tags,
	}
}

// fallbackEnabled consults the persisted toggle, then the environment.
func (g *Generator) fallbackEnabled(ctx context.Context) bool {
	value, err := g.settings.Setting(ctx, newsroom.SettingAutoFallback)
	if errors.Is(err, newsroom.ErrNotFound) || value == "" {
		value = os.Getenv("AGENT_AUTO_FALLBACK")
	}

	return strings.EqualFold(strings.TrimSpace(value), "true")
}

func buildPrompt(topic string) string {
	var b strings.Builder
	b.WriteString("Write a long-form blog article about the following subject.\n\n")
	b.WriteString("Subject: " + topic + "\n\n")
	b.WriteString("Respond in exactly this layout:\n")
	b.WriteString("Title: <an SEO-friendly headline>\n")
	b.WriteString("Meta: <a meta description under 160 characters>\n")
	b.WriteString("<the full article body in markdown, using ## headings for sections>\n")
	b.WriteString(`Tags: <a JSON array of 3 to 6 lowercase tags, e.g. ["careers","exams"]>` + "\n")
	if newsroom.NewsLike(topic) {
		b.WriteString("Source: <the canonical http(s) URL of the primary source for this story>\n")
	}
	b.WriteString("\nDo not wrap the response in code fences.")

	return b.String()
}
