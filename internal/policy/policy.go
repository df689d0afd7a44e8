// Package policy decides whether a freshly generated article may bypass
// human review.
package policy

import (
	goaway "github.com/TwiN/go-away"

	"github.com/mchasew/newsroom/internal/newsroom"
)

// TopRankThreshold: items generated from the first N ranked topics of a
// discovery cycle are presumed newsworthy enough to auto-publish.
const TopRankThreshold = 5

// Input is everything the evaluator looks at. The decision is computed once
// at enqueue time and stored; later settings or category changes do not
// retroactively affect queued items.
type Input struct {
	Title      string
	Excerpt    string
	Topic      string
	CategoryID *string

	// Zero-based rank of the originating topic in the current cycle.
	TopicRank int

	// The global "publish immediately" override from settings.
	PublishImmediately bool
}

// ShouldAutoPublish evaluates the auto-publish policy.
//
// Machine-authored profanity never auto-publishes regardless of any other
// signal; it is demoted to review, not failed. Otherwise any one qualifying
// signal is enough.
func ShouldAutoPublish(in Input) bool {
	if goaway.IsProfane(in.Title) || goaway.IsProfane(in.Excerpt) {
		return false
	}

	switch {
	case in.PublishImmediately:
		return true
	case in.TopicRank < TopRankThreshold:
		return true
	case in.CategoryID != nil:
		return true
	case newsroom.NewsLike(in.Title):
		return true
	case newsroom.NewsLike(in.Topic):
		return true
	case newsroom.PriorityTopic(in.Topic):
		return true
	}

	return false
}
