package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mchasew/newsroom/internal/newsroom"
)

func (r Repo) Post(ctx context.Context, id string) (newsroom.Post, error) {
	const q = `SELECT * FROM posts WHERE id = ?;`

	var post newsroom.Post
	err := r.db.GetContext(ctx, &post, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return newsroom.Post{}, newsroom.ErrNotFound
	}
	if err != nil {
		return newsroom.Post{}, fmt.Errorf("error fetching post: %s", err)
	}

	return post, nil
}

func (r Repo) PostBySlug(ctx context.Context, slug string) (newsroom.Post, error) {
	const q = `SELECT * FROM posts WHERE slug = ?;`

	var post newsroom.Post
	err := r.db.GetContext(ctx, &post, q, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return newsroom.Post{}, newsroom.ErrNotFound
	}
	if err != nil {
		return newsroom.Post{}, fmt.Errorf("error fetching post by slug: %s", err)
	}

	return post, nil
}

// InsertPost is idempotent by slug: a conflicting insert is swallowed and the
// existing row is returned, so re-publishing the same queue item never
// creates a duplicate post.
func (r Repo) InsertPost(ctx context.Context, post newsroom.Post) (newsroom.Post, error) {
	const q = `INSERT INTO posts (
		id, slug, title, body, excerpt, tags, featured_image_url, source_url,
		category_id, author_id, published, generated, comments_disabled
	) VALUES (
		:id, :slug, :title, :body, :excerpt, :tags, :featured_image_url, :source_url,
		:category_id, :author_id, :published, :generated, :comments_disabled
	)
	ON CONFLICT(slug) DO NOTHING;`

	if _, err := r.db.NamedExecContext(ctx, q, post); err != nil {
		return newsroom.Post{}, fmt.Errorf("error inserting post: %s", err)
	}

	return r.PostBySlug(ctx, post.Slug)
}

func (r Repo) SetPostPublished(ctx context.Context, id string, published bool) error {
	const q = `UPDATE posts SET published = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`

	if _, err := r.db.ExecContext(ctx, q, published, id); err != nil {
		return fmt.Errorf("error updating post published flag: %s", err)
	}

	return nil
}
