package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mchasew/newsroom/internal/newsroom"
)

// An input that matches no qualifying clause.
func coldInput() Input {
	return Input{
		Title:     "A Quiet Meditation on Tea",
		Excerpt:   "Brewing notes",
		Topic:     "Tea Brewing",
		TopicRank: 9,
	}
}

func TestShouldAutoPublish_NoSignals(t *testing.T) {
	assert.False(t, ShouldAutoPublish(coldInput()))
}

func TestShouldAutoPublish_Override(t *testing.T) {
	in := coldInput()
	in.PublishImmediately = true

	assert.True(t, ShouldAutoPublish(in))
}

func TestShouldAutoPublish_TopRankedTopic(t *testing.T) {
	in := coldInput()
	in.TopicRank = 4

	assert.True(t, ShouldAutoPublish(in))

	in.TopicRank = 5
	assert.False(t, ShouldAutoPublish(in))
}

func TestShouldAutoPublish_Categorized(t *testing.T) {
	in := coldInput()
	catID := "cat-lifestyle"
	in.CategoryID = &catID

	assert.True(t, ShouldAutoPublish(in))
}

func TestShouldAutoPublish_NewsLikeTitles(t *testing.T) {
	// Exam/job/result titles auto-publish regardless of category.
	titles := []string{
		"Entrance Exam Dates Released",
		"Latest Job Openings This Week",
		"Board Results Declared",
		"Tech Giant Hiring Freeze Lifted",
		"Railway Recruitment Drive 2026",
	}

	for _, title := range titles {
		in := coldInput()
		in.Title = title
		assert.True(t, ShouldAutoPublish(in), title)
	}
}

func TestShouldAutoPublish_NewsLikeTopics(t *testing.T) {
	// The originating topic qualifies on its own keywords, even when the
	// generated title repeats none of them and no category resolved.
	topics := []string{
		"Railway Recruitment Drive 2026",
		"State Board Exam Schedule",
		"IT Sector Hiring Outlook",
		"Scholarship Results Announced",
		"Government Job Vacancies",
	}

	for _, topic := range topics {
		in := coldInput()
		in.Topic = topic
		in.Title = "Careers on the Rails This Year"
		assert.True(t, ShouldAutoPublish(in), topic)
	}
}

func TestShouldAutoPublish_PriorityTopic(t *testing.T) {
	in := coldInput()
	in.Topic = newsroom.PriorityTopicTitle

	assert.True(t, ShouldAutoPublish(in))
}

func TestShouldAutoPublish_ProfanityVeto(t *testing.T) {
	in := coldInput()
	in.PublishImmediately = true
	in.Title = "This fucking exam result"

	assert.False(t, ShouldAutoPublish(in))
}
