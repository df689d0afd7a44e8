// Package worker runs the generation cycles and resolves queued items.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mchasew/newsroom/internal/generate"
	"github.com/mchasew/newsroom/internal/newsroom"
)

// LockName is the advisory lease shared by every worker instance. Whoever
// holds it runs the discovery+generation cycle; everyone else skips.
const LockName = "content_worker"

// The lease must outlive a cycle, so it is never shorter than this even when
// the configured interval is.
const minLockTTL = 10 * time.Minute

type (
	// TopicSource yields the ordered subjects for one cycle.
	TopicSource interface {
		Discover(ctx context.Context) []string
	}

	// ModelSelector resolves which model generates a given topic.
	ModelSelector interface {
		ModelForTopic(ctx context.Context, topic string) string
	}

	// ArticleGenerator produces a draft for a topic with the chosen model.
	ArticleGenerator interface {
		Generate(ctx context.Context, topic, model string) (generate.Article, error)
	}
)

type Worker struct {
	repo     newsroom.Repository
	source   TopicSource
	selector ModelSelector
	gen      ArticleGenerator
	images   generate.ImageResolver
	interval time.Duration

	// Seam for tests; defaults to a context-aware sleep.
	sleep func(ctx context.Context, d time.Duration)
}

func New(repo newsroom.Repository, source TopicSource, selector ModelSelector, gen ArticleGenerator, images generate.ImageResolver, interval time.Duration) *Worker {
	return &Worker{
		repo:     repo,
		source:   source,
		selector: selector,
		gen:      gen,
		images:   images,
		interval: interval,
		sleep:    sleepCtx,
	}
}

// Run executes cycles on the configured interval until the context is
// canceled. Lock contention is a normal skip, not an error; cycle errors are
// logged and the loop keeps going.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			slog.Error("generation cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce attempts one lock-guarded cycle. The lock is always released
// afterwards, even when the cycle errors.
func (w *Worker) RunOnce(ctx context.Context) error {
	ttl := w.interval
	if ttl < minLockTTL {
		ttl = minLockTTL
	}

	acquired, err := w.repo.AcquireLock(ctx, LockName, ttl)
	if err != nil {
		return err
	}
	if !acquired {
		slog.Info("another instance holds the worker lock, skipping cycle")
		return nil
	}
	defer func() {
		// Release must happen even if the parent context was canceled
		// mid-cycle.
		if err := w.repo.ReleaseLock(context.WithoutCancel(ctx), LockName); err != nil {
			slog.Error("error releasing worker lock", "error", err)
		}
	}()

	return w.cycle(ctx)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
