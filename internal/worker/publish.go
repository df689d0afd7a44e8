package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mchasew/newsroom/internal/newsroom"
)

const postNamespace = "-post"

// Publisher turns queue items into durable posts. It is shared by the
// automated processor and the operator actions on the admin surface.
type Publisher struct {
	repo     newsroom.Repository
	authorID string
}

func NewPublisher(repo newsroom.Repository, authorID string) *Publisher {
	return &Publisher{
		repo:     repo,
		authorID: authorID,
	}
}

// Publish resolves a queue item to a post on explicit operator intent,
// bypassing the auto-publish policy.
//
// Idempotent: an already-published item returns its existing post instead of
// creating a duplicate. Other terminal states conflict.
func (p *Publisher) Publish(ctx context.Context, id string) (newsroom.Post, error) {
	item, err := p.repo.QueueItem(ctx, id)
	if err != nil {
		return newsroom.Post{}, err
	}

	if item.Status == newsroom.QueueStatusPublished {
		return p.repo.PostBySlug(ctx, item.Slug)
	}
	if item.Status.Terminal() {
		return newsroom.Post{}, fmt.Errorf("queue item is %s: %w", item.Status, newsroom.ErrConflict)
	}

	return p.createPost(ctx, item)
}

// Decline marks a queue item as rejected by a human. Terminal states are
// never re-entered.
func (p *Publisher) Decline(ctx context.Context, id string) error {
	item, err := p.repo.QueueItem(ctx, id)
	if err != nil {
		return err
	}
	if item.Status.Terminal() {
		return fmt.Errorf("queue item is %s: %w", item.Status, newsroom.ErrConflict)
	}

	return p.repo.ResolveQueueItem(ctx, id, newsroom.QueueStatusDeclined, time.Now())
}

// createPost makes the post and marks the item published. The post insert is
// idempotent by slug, so a duplicate run converges on the same post. On a
// storage failure the item lands in failed: terminal, operator territory.
func (p *Publisher) createPost(ctx context.Context, item newsroom.QueueItem) (newsroom.Post, error) {
	post := newsroom.Post{
		ID:               fmt.Sprintf("%s%s", uuid.NewString(), postNamespace),
		Slug:             item.Slug,
		Title:            item.Title,
		Body:             item.Body,
		Excerpt:          item.Excerpt,
		Tags:             item.Tags,
		FeaturedImageURL: item.FeaturedImageURL,
		SourceURL:        item.SourceURL,
		CategoryID:       item.CategoryID,
		AuthorID:         p.authorID,
		Published:        true,
		Generated:        true,
		CommentsDisabled: true,
	}

	created, err := p.repo.InsertPost(ctx, post)
	if err != nil {
		if resolveErr := p.repo.ResolveQueueItem(ctx, item.ID, newsroom.QueueStatusFailed, time.Now()); resolveErr != nil {
			return newsroom.Post{}, fmt.Errorf("error marking item failed after %s: %s", err, resolveErr)
		}
		return newsroom.Post{}, fmt.Errorf("error creating post: %w", err)
	}

	if err := p.repo.ResolveQueueItem(ctx, item.ID, newsroom.QueueStatusPublished, time.Now()); err != nil {
		return newsroom.Post{}, fmt.Errorf("error marking item published: %w", err)
	}

	return created, nil
}
