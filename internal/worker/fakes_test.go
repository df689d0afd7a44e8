package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mchasew/newsroom/internal/generate"
	"github.com/mchasew/newsroom/internal/newsroom"
)

// fakeRepo is an in-memory Repository mirroring the sqlite semantics,
// including the lock lease and the conditional claim.
type fakeRepo struct {
	mu         sync.Mutex
	items      map[string]*newsroom.QueueItem
	posts      map[string]newsroom.Post // keyed by slug
	categories []newsroom.Category
	settings   map[string]string
	locks      map[string]int64
	logs       []newsroom.SourceValidationLog

	failPostInsert bool
}

var _ newsroom.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items:    make(map[string]*newsroom.QueueItem),
		posts:    make(map[string]newsroom.Post),
		settings: make(map[string]string),
		locks:    make(map[string]int64),
	}
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
	for _, existing := range f.items {
		if existing.Slug == item.Slug {
			return newsroom.ErrConflict
		}
	}
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
	if f.failPostInsert {
		return newsroom.Post{}, errors.New("storage exploded")
	}
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
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categories, nil
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

func (f *fakeRepo) AcquireLock(_ context.Context, name string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UnixMilli()
	if expires, ok := f.locks[name]; ok && expires >= now {
		return false, nil
	}
	f.locks[name] = now + ttl.Milliseconds()
	return true, nil
}

func (f *fakeRepo) ReleaseLock(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locks, name)
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

// --- pipeline stubs ---

type staticTopics []string

func (s staticTopics) Discover(context.Context) []string { return s }

type staticSelector string

func (s staticSelector) ModelForTopic(context.Context, string) string { return string(s) }

// scriptedGenerator fabricates deterministic articles, failing topics listed
// in failTopics, and counts attempts per topic.
type scriptedGenerator struct {
	mu         sync.Mutex
	failTopics map[string]bool
	sourceURLs map[string]string
	attempts   map[string]int
	seq        int
}

func newScriptedGenerator() *scriptedGenerator {
	return &scriptedGenerator{
		failTopics: make(map[string]bool),
		sourceURLs: make(map[string]string),
		attempts:   make(map[string]int),
	}
}

func (g *scriptedGenerator) Generate(_ context.Context, topic, _ string) (generate.Article, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempts[topic]++
	if g.failTopics[topic] {
		return generate.Article{}, errors.New("backend down")
	}

	g.seq++
	id := newsroomTestID(g.seq)
	art := generate.Article{
		ID:      id,
		Slug:    generate.Slug(topic, id),
		Title:   topic,
		Body:    "## Heading\n\nBody for " + topic,
		Excerpt: "Excerpt for " + topic,
		Tags:    newsroom.Tags{"test"},
	}
	if url, ok := g.sourceURLs[topic]; ok {
		art.SourceURL = &url
	}
	return art, nil
}

func newsroomTestID(seq int) string {
	const alphabet = "abcdefghij"
	b := make([]byte, 12)
	for i := range b {
		b[i] = alphabet[(seq+i)%len(alphabet)]
	}
	return string(b) + "-qi"
}

// recordingValidator returns a scripted outcome and records the URLs it saw.
type recordingValidator struct {
	ok     bool
	reason string
	urls   []string
}

func (v *recordingValidator) Validate(_ context.Context, url string) (bool, string) {
	v.urls = append(v.urls, url)
	return v.ok, v.reason
}

func noSleep(context.Context, time.Duration) {}
