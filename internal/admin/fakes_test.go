package admin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mchasew/newsroom/internal/newsroom"
	"github.com/mchasew/newsroom/internal/worker"
)

// fakeRepo is an in-memory Repository with just enough behavior for the
// handlers: status transitions, idempotent post inserts, and log appends.
type fakeRepo struct {
	mu       sync.Mutex
	items    map[string]*newsroom.QueueItem
	posts    map[string]newsroom.Post // keyed by slug
	settings map[string]string
	logs     []newsroom.SourceValidationLog
}

var _ newsroom.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items:    make(map[string]*newsroom.QueueItem),
		posts:    make(map[string]newsroom.Post),
		settings: make(map[string]string),
	}
}

func (f *fakeRepo) seedItem(item newsroom.QueueItem) newsroom.QueueItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == "" {
		item.ID = "item-" + item.Slug
	}
	if item.Status == "" {
		item.Status = newsroom.QueueStatusReviewed
	}
	f.items[item.ID] = &item
	return item
}

func (f *fakeRepo) seedPost(post newsroom.Post) newsroom.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post.ID == "" {
		post.ID = "post-" + post.Slug
	}
	f.posts[post.Slug] = post
	return post
}

func (f *fakeRepo) QueueItem(_ context.Context, id string) (newsroom.QueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return newsroom.QueueItem{}, newsroom.ErrNotFound
	}
	return *item, nil
}

func (f *fakeRepo) QueueItems(_ context.Context, args newsroom.QueueItemsArgs) ([]newsroom.QueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []newsroom.QueueItem
	for _, item := range f.items {
		if args.Status != "" && item.Status != args.Status {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeRepo) InsertQueueItem(_ context.Context, item newsroom.QueueItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.ID] = &item
	return nil
}

func (f *fakeRepo) ClaimQueueItem(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok || item.Status != newsroom.QueueStatusQueued {
		return false, nil
	}
	item.Status = newsroom.QueueStatusProcessing
	return true, nil
}

func (f *fakeRepo) ResolveQueueItem(_ context.Context, id string, status newsroom.QueueItemStatus, processedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return newsroom.ErrNotFound
	}
	item.Status = status
	item.ProcessedAt = &processedAt
	return nil
}

func (f *fakeRepo) Post(_ context.Context, id string) (newsroom.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, post := range f.posts {
		if post.ID == id {
			return post, nil
		}
	}
	return newsroom.Post{}, newsroom.ErrNotFound
}

func (f *fakeRepo) PostBySlug(_ context.Context, slug string) (newsroom.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[slug]
	if !ok {
		return newsroom.Post{}, newsroom.ErrNotFound
	}
	return post, nil
}

func (f *fakeRepo) InsertPost(_ context.Context, post newsroom.Post) (newsroom.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.posts[post.Slug]; ok {
		return existing, nil
	}
	f.posts[post.Slug] = post
	return post, nil
}

func (f *fakeRepo) SetPostPublished(_ context.Context, id string, published bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for slug, post := range f.posts {
		if post.ID == id {
			post.Published = published
			f.posts[slug] = post
			return nil
		}
	}
	return newsroom.ErrNotFound
}

func (f *fakeRepo) Categories(context.Context) ([]newsroom.Category, error) {
	return nil, nil
}

func (f *fakeRepo) Setting(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.settings[key]
	if !ok {
		return "", newsroom.ErrNotFound
	}
	return value, nil
}

func (f *fakeRepo) SetSetting(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[key] = value
	return nil
}

func (f *fakeRepo) AcquireLock(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}

func (f *fakeRepo) ReleaseLock(context.Context, string) error {
	return nil
}

func (f *fakeRepo) InsertValidationLog(_ context.Context, log newsroom.SourceValidationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeRepo) ValidationLogs(_ context.Context, postID string) ([]newsroom.SourceValidationLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []newsroom.SourceValidationLog
	for _, log := range f.logs {
		if log.PostID == postID {
			out = append(out, log)
		}
	}
	return out, nil
}

type fakeValidator struct {
	ok     bool
	reason string
	urls   []string
}

func (v *fakeValidator) Validate(_ context.Context, url string) (bool, string) {
	v.urls = append(v.urls, url)
	return v.ok, v.reason
}

type fakeSelector struct {
	invalidated int
}

func (s *fakeSelector) Default(context.Context) string { return "model-x" }
func (s *fakeSelector) Invalidate()                    { s.invalidated++ }

func newTestServer(t *testing.T, repo *fakeRepo) (Server, *fakeValidator, *fakeSelector) {
	t.Helper()

	var (
		validator = &fakeValidator{ok: true}
		selector  = &fakeSelector{}
	)
	s := NewServer(ServerConfig{
		Port:           0,
		CookieHashKey:  make([]byte, 32),
		CookieBlockKey: make([]byte, 32),
		CorsHeader:     "*",
	}, repo, worker.NewPublisher(repo, "system"), validator, selector)

	return *s, validator, selector
}
