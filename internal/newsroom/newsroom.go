// Package newsroom holds the core entities of the content pipeline and the
// service interfaces the rest of the system is built against.
package newsroom

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrConflict = errors.New("resource already exists")
	ErrNotFound = errors.New("resource not found")
)

// QueueItemStatus is the lifecycle state of a generated article awaiting
// resolution. Transitions are monotonic: once an item reaches published,
// failed, or declined it is never mutated again.
type QueueItemStatus string

const (
	QueueStatusQueued     QueueItemStatus = "queued"
	QueueStatusProcessing QueueItemStatus = "processing"
	QueueStatusReviewed   QueueItemStatus = "reviewed"
	QueueStatusPublished  QueueItemStatus = "published"
	QueueStatusFailed     QueueItemStatus = "failed"
	QueueStatusDeclined   QueueItemStatus = "declined"
)

// Terminal reports whether no further transition is allowed from s.
func (s QueueItemStatus) Terminal() bool {
	return s == QueueStatusPublished || s == QueueStatusFailed || s == QueueStatusDeclined
}

// Tags is an ordered list of tag strings stored as a JSON array in a TEXT
// column.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	byts, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("error marshaling tags: %s", err)
	}
	return string(byts), nil
}

func (t *Tags) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), t)
	case []byte:
		return json.Unmarshal(v, t)
	default:
		return fmt.Errorf("cannot scan %T into Tags", src)
	}
}

type (
	// QueueItem is a candidate article awaiting either automatic or human
	// resolution. Items are never deleted; they remain as an audit trail.
	QueueItem struct {
		ID               string          `db:"id"`
		Slug             string          `db:"slug"`
		Title            string          `db:"title"`
		Body             string          `db:"body"`
		Excerpt          string          `db:"excerpt"`
		Tags             Tags            `db:"tags"`
		FeaturedImageURL *string         `db:"featured_image_url"`
		SourceURL        *string         `db:"source_url"`
		CategoryID       *string         `db:"category_id"`
		Topic            string          `db:"topic"`
		AutoPublish      bool            `db:"auto_publish"`
		Status           QueueItemStatus `db:"status"`
		CreatedAt        time.Time       `db:"created_at"`
		ProcessedAt      *time.Time      `db:"processed_at"`
	}

	// Post is the durable, publicly servable article created once a queue
	// item resolves to publication.
	Post struct {
		ID               string     `db:"id"`
		Slug             string     `db:"slug"`
		Title            string     `db:"title"`
		Body             string     `db:"body"`
		Excerpt          string     `db:"excerpt"`
		Tags             Tags       `db:"tags"`
		FeaturedImageURL *string    `db:"featured_image_url"`
		SourceURL        *string    `db:"source_url"`
		CategoryID       *string    `db:"category_id"`
		AuthorID         string     `db:"author_id"`
		Published        bool       `db:"published"`
		Generated        bool       `db:"generated"`
		CommentsDisabled bool       `db:"comments_disabled"`
		CreatedAt        time.Time  `db:"created_at"`
		UpdatedAt        *time.Time `db:"updated_at"`
	}

	Category struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		Slug      string    `db:"slug"`
		CreatedAt time.Time `db:"created_at"`
	}

	// SourceValidationLog is an append-only record of one verification
	// attempt against a post's source URL. Multiple logs may exist per post.
	SourceValidationLog struct {
		ID        string    `db:"id"`
		PostID    string    `db:"post_id"`
		OK        bool      `db:"ok"`
		Reason    *string   `db:"reason"`
		CheckedAt time.Time `db:"checked_at"`
		CheckedBy string    `db:"checked_by"`
	}

	// WorkerLock is the single named row used as a cross-instance advisory
	// lease. A lock is free if the row is absent or expires_at is in the
	// past.
	WorkerLock struct {
		Name      string `db:"name"`
		ExpiresAt int64  `db:"expires_at"` // epoch millis
	}

	Setting struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
)

// Optional filters when listing queue items.
type QueueItemsArgs struct {
	Status QueueItemStatus
	Limit  uint64
}

type (
	QueueService interface {
		QueueItem(ctx context.Context, id string) (QueueItem, error)
		QueueItems(ctx context.Context, args QueueItemsArgs) ([]QueueItem, error)
		InsertQueueItem(ctx context.Context, item QueueItem) error
		// ClaimQueueItem conditionally moves a queued item to processing.
		// Returns false if the item was not in the queued state, which means
		// another processor got there first.
		ClaimQueueItem(ctx context.Context, id string) (bool, error)
		ResolveQueueItem(ctx context.Context, id string, status QueueItemStatus, processedAt time.Time) error
	}

	PostService interface {
		Post(ctx context.Context, id string) (Post, error)
		PostBySlug(ctx context.Context, slug string) (Post, error)
		// InsertPost is idempotent by slug: inserting a post whose slug
		// already exists returns the existing row instead of a duplicate.
		InsertPost(ctx context.Context, post Post) (Post, error)
		SetPostPublished(ctx context.Context, id string, published bool) error
	}

	CategoryService interface {
		Categories(ctx context.Context) ([]Category, error)
	}

	SettingsService interface {
		Setting(ctx context.Context, key string) (string, error)
		SetSetting(ctx context.Context, key string, value string) error
	}

	// LockService is the mutual-exclusion primitive shared by all worker
	// instances. This is a best-effort lease, not a strict mutex: a crashed
	// holder's lock self-expires after the TTL.
	LockService interface {
		AcquireLock(ctx context.Context, name string, ttl time.Duration) (bool, error)
		ReleaseLock(ctx context.Context, name string) error
	}

	ValidationLogService interface {
		InsertValidationLog(ctx context.Context, log SourceValidationLog) error
		ValidationLogs(ctx context.Context, postID string) ([]SourceValidationLog, error)
	}

	// Repository is the full persistence surface backing the pipeline.
	Repository interface {
		QueueService
		PostService
		CategoryService
		SettingsService
		LockService
		ValidationLogService
	}
)

// Settings keys understood by the pipeline.
const (
	SettingPriorityModels     = "priority_models"
	SettingAutoFallback       = "auto_fallback"
	SettingPublishImmediately = "publish_immediately"
)
