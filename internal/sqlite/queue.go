package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"modernc.org/sqlite"

	"github.com/mchasew/newsroom/internal/newsroom"
)

func (r Repo) QueueItem(ctx context.Context, id string) (newsroom.QueueItem, error) {
	const q = `SELECT * FROM queue_items WHERE id = ?;`

	var item newsroom.QueueItem
	err := r.db.GetContext(ctx, &item, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return newsroom.QueueItem{}, newsroom.ErrNotFound
	}
	if err != nil {
		return newsroom.QueueItem{}, fmt.Errorf("error fetching queue item: %s", err)
	}

	return item, nil
}

func (r Repo) QueueItems(ctx context.Context, args newsroom.QueueItemsArgs) ([]newsroom.QueueItem, error) {
	q := sq.Select("*").From("queue_items").OrderBy("created_at ASC")
	if args.Status != "" {
		q = q.Where(sq.Eq{"status": args.Status})
	}
	if args.Limit > 0 {
		q = q.Limit(args.Limit)
	}

	query, qArgs, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %s", err)
	}

	var items []newsroom.QueueItem
	if err := r.db.SelectContext(ctx, &items, query, qArgs...); err != nil {
		return nil, fmt.Errorf("error selecting queue items: %s", err)
	}

	return items, nil
}

func (r Repo) InsertQueueItem(ctx context.Context, item newsroom.QueueItem) error {
	const q = `INSERT INTO queue_items (
		id, slug, title, body, excerpt, tags, featured_image_url,
		source_url, category_id, topic, auto_publish, status
	) VALUES (
		:id, :slug, :title, :body, :excerpt, :tags, :featured_image_url,
		:source_url, :category_id, :topic, :auto_publish, :status
	);`

	_, err := r.db.NamedExecContext(ctx, q, item)
	if sqliteErr := (&sqlite.Error{}); errors.As(err, &sqliteErr) && sqliteErr.Code() == 2067 {
		return fmt.Errorf("queue item already exists: %w", newsroom.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("error inserting queue item: %s", err)
	}

	return nil
}

// ClaimQueueItem flips a queued item to processing in a single conditional
// update so two processors can never both claim the same row.
func (r Repo) ClaimQueueItem(ctx context.Context, id string) (bool, error) {
	const q = `UPDATE queue_items SET status = ? WHERE id = ? AND status = ?;`

	res, err := r.db.ExecContext(ctx, q, newsroom.QueueStatusProcessing, id, newsroom.QueueStatusQueued)
	if err != nil {
		return false, fmt.Errorf("error claiming queue item: %s", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %s", err)
	}

	return affected == 1, nil
}

func (r Repo) ResolveQueueItem(ctx context.Context, id string, status newsroom.QueueItemStatus, processedAt time.Time) error {
	const q = `UPDATE queue_items SET status = ?, processed_at = ? WHERE id = ?;`

	if _, err := r.db.ExecContext(ctx, q, status, processedAt, id); err != nil {
		return fmt.Errorf("error resolving queue item: %s", err)
	}

	return nil
}
