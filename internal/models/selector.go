// Package models picks which generation model serves a given topic.
package models

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mchasew/newsroom/internal/newsroom"
)

// Default candidate order, smallest and cheapest first. The probe walks this
// list and the first responder becomes the process-wide default.
var DefaultCandidates = []string{
	"claude-haiku-4-5",
	"claude-sonnet-4-5",
	"claude-opus-4-1",
}

// Model used for exam/result/job subjects when no explicit mapping says
// otherwise. These get the stronger model since they auto-publish.
const strongModel = "claude-sonnet-4-5"

const probeTimeout = 5 * time.Second

// Selector resolves a model per topic. The probed default is held in an
// explicit cache with an invalidation hook rather than package state, so
// tests can reset it deterministically.
type Selector struct {
	completer  newsroom.Completer
	settings   newsroom.SettingsService
	candidates []string

	mu     sync.Mutex
	cached string
	probed bool
}

func NewSelector(completer newsroom.Completer, settings newsroom.SettingsService, candidates []string) *Selector {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}

	return &Selector{
		completer:  completer,
		settings:   settings,
		candidates: candidates,
	}
}

// Default returns the best-effort default model.
//
// Candidates are probed in order with a minimal completion bounded by a short
// timeout; the first responder is cached for the process lifetime. If nobody
// responds the first candidate is returned unprobed and uncached, optimistic
// that errors will surface at actual use.
func (s *Selector) Default(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.probed {
		return s.cached
	}

	for _, candidate := range s.candidates {
		if err := s.probe(ctx, candidate); err != nil {
			slog.Debug("model probe failed", "model", candidate, "error", err)
			continue
		}

		s.cached = candidate
		s.probed = true
		return candidate
	}

	return s.candidates[0]
}

func (s *Selector) probe(ctx context.Context, model string) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, err := s.completer.Complete(ctx, newsroom.CompletionRequest{
		Prompt:    "ping",
		Model:     model,
		MaxTokens: 1,
	})
	return err
}

// Invalidate drops the cached default so the next resolution re-probes.
func (s *Selector) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = ""
	s.probed = false
}

// ModelForTopic resolves the model for a topic. Resolution never fails.
//
// Priority order: the persisted/env priority mapping, then the exam/job
// heuristic, then the probed default.
func (s *Selector) ModelForTopic(ctx context.Context, topic string) string {
	mapping := s.priorityMapping(ctx)
	if model := matchMapping(mapping, topic); model != "" {
		return model
	}

	if newsroom.NewsLike(topic) {
		return strongModel
	}

	return s.Default(ctx)
}

// priorityMapping loads the topic-to-model overrides from settings, falling
// back to the environment.
func (s *Selector) priorityMapping(ctx context.Context) map[string]string {
	raw, err := s.settings.Setting(ctx, newsroom.SettingPriorityModels)
	if errors.Is(err, newsroom.ErrNotFound) || raw == "" {
		raw = os.Getenv("AGENT_PRIORITY_MODELS")
	} else if err != nil {
		slog.Warn("error reading priority models setting", "error", err)
		raw = os.Getenv("AGENT_PRIORITY_MODELS")
	}
	if raw == "" {
		return nil
	}

	return ParseMapping(raw)
}

// ParseMapping accepts either a JSON object or key:value CSV pairs.
func ParseMapping(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "{") {
		var m map[string]string
		if err := json.Unmarshal([]byte(raw), &m); err == nil {
			return m
		}
		slog.Warn("priority model mapping is not valid json, ignoring", "raw", raw)
		return nil
	}

	m := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		m[key] = value
	}
	if len(m) == 0 {
		return nil
	}

	return m
}

// matchMapping finds the first mapping key contained in the topic,
// case-insensitively, falling back to the "default" key if present.
func matchMapping(mapping map[string]string, topic string) string {
	if len(mapping) == 0 {
		return ""
	}

	lowered := strings.ToLower(topic)
	for key, model := range mapping {
		if key == "default" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(key)) {
			return model
		}
	}

	return mapping["default"]
}
