package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mchasew/newsroom/internal/categorize"
	"github.com/mchasew/newsroom/internal/generate"
	"github.com/mchasew/newsroom/internal/newsroom"
	"github.com/mchasew/newsroom/internal/policy"
)

const (
	topicAttempts = 3
	// Breather between successful topics so the backend is not burst.
	pacingDelay = 1500 * time.Millisecond
)

// cycle runs one discovery+generation pass. A failing topic is abandoned
// after its retries; it never takes the rest of the cycle down with it.
func (w *Worker) cycle(ctx context.Context) error {
	subjects := w.source.Discover(ctx)
	slog.Info("starting generation cycle", "topics", len(subjects))

	categories, err := w.repo.Categories(ctx)
	if err != nil {
		slog.Error("error loading categories, items will be uncategorized", "error", err)
		categories = nil
	}

	publishNow := w.publishImmediately(ctx)

	for rank, topic := range subjects {
		if err := w.processTopic(ctx, topic, rank, categories, publishNow); err != nil {
			slog.Error("abandoning topic for this cycle", "topic", topic, "error", err)
			continue
		}

		w.sleep(ctx, pacingDelay)
	}

	return nil
}

// processTopic generates and enqueues one topic, retrying with linearly
// increasing backoff.
func (w *Worker) processTopic(ctx context.Context, topic string, rank int, categories []newsroom.Category, publishNow bool) error {
	backoff := retry.WithMaxRetries(topicAttempts-1, linearBackoff(time.Second))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := w.generateOne(ctx, topic, rank, categories, publishNow); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (w *Worker) generateOne(ctx context.Context, topic string, rank int, categories []newsroom.Category, publishNow bool) error {
	model := w.selector.ModelForTopic(ctx, topic)

	art, err := w.gen.Generate(ctx, topic, model)
	if err != nil {
		return fmt.Errorf("error generating topic %q: %w", topic, err)
	}

	imageURL, err := w.images.ResolveImage(ctx, topic)
	if err != nil {
		imageURL = generate.FallbackImageURL(topic)
	}

	categoryID := categorize.Categorize(topic, art.Title, art.Body, categories)

	item := newsroom.QueueItem{
		ID:               art.ID,
		Slug:             art.Slug,
		Title:            art.Title,
		Body:             art.Body,
		Excerpt:          art.Excerpt,
		Tags:             art.Tags,
		FeaturedImageURL: &imageURL,
		SourceURL:        art.SourceURL,
		CategoryID:       categoryID,
		Topic:            topic,
		AutoPublish: policy.ShouldAutoPublish(policy.Input{
			Title:              art.Title,
			Excerpt:            art.Excerpt,
			Topic:              topic,
			CategoryID:         categoryID,
			TopicRank:          rank,
			PublishImmediately: publishNow,
		}),
		Status: newsroom.QueueStatusQueued,
	}

	err = w.repo.InsertQueueItem(ctx, item)
	if errors.Is(err, newsroom.ErrConflict) {
		// Already generated under this slug, at-least-once is fine.
		slog.Info("duplicate slug, skipping enqueue", "slug", item.Slug)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error enqueueing topic %q: %w", topic, err)
	}

	slog.Info("enqueued article", "slug", item.Slug, "auto_publish", item.AutoPublish, "model", model)
	return nil
}

func (w *Worker) publishImmediately(ctx context.Context) bool {
	value, err := w.repo.Setting(ctx, newsroom.SettingPublishImmediately)
	if err != nil {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(value), "true")
}

// linearBackoff waits attempt x unit between tries: 1s, then 2s, then 3s.
func linearBackoff(unit time.Duration) retry.Backoff {
	attempt := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * unit, false
	})
}
