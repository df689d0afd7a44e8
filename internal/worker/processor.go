package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mchasew/newsroom/internal/newsroom"
)

// SourceValidator re-verifies an externally linked URL before publication.
type SourceValidator interface {
	Validate(ctx context.Context, url string) (bool, string)
}

// Processor consumes queued items and resolves them: auto-publish, demote to
// human review, or fail.
type Processor struct {
	repo      newsroom.Repository
	validator SourceValidator
	publisher *Publisher
	interval  time.Duration
}

func NewProcessor(repo newsroom.Repository, validator SourceValidator, publisher *Publisher, interval time.Duration) *Processor {
	return &Processor{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		interval:  interval,
	}
}

// Run scans the queue on an interval until the context is canceled.
func (p *Processor) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.ProcessQueued(ctx); err != nil {
			slog.Error("error processing queue", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessQueued resolves every currently queued item. Item outcomes are
// independent: one failure never aborts the rest of the scan.
func (p *Processor) ProcessQueued(ctx context.Context) error {
	items, err := p.repo.QueueItems(ctx, newsroom.QueueItemsArgs{Status: newsroom.QueueStatusQueued})
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := p.processItem(ctx, item); err != nil {
			slog.Error("error processing queue item", "id", item.ID, "error", err)
		}
	}

	return nil
}

func (p *Processor) processItem(ctx context.Context, item newsroom.QueueItem) error {
	// Claim first. Losing the claim means another processor already has the
	// row; nothing to do.
	claimed, err := p.repo.ClaimQueueItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	if !item.AutoPublish {
		return p.repo.ResolveQueueItem(ctx, item.ID, newsroom.QueueStatusReviewed, time.Now())
	}

	if item.SourceURL != nil {
		ok, reason := p.validator.Validate(ctx, *item.SourceURL)
		if !ok {
			// A false negative here should not discard a potentially valid
			// article, so demote to review instead of failing.
			slog.Info("source url failed validation, demoting to review",
				"id", item.ID, "url", *item.SourceURL, "reason", reason)
			return p.repo.ResolveQueueItem(ctx, item.ID, newsroom.QueueStatusReviewed, time.Now())
		}
	}

	post, err := p.publisher.createPost(ctx, item)
	if err != nil {
		return err
	}

	slog.Info("auto-published queue item", "id", item.ID, "post_id", post.ID)
	return nil
}
