package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name  string
		title string
		id    string
		want  string
	}{
		{
			name:  "collapses non-alphanumeric runs",
			title: "Hello, World!  Again",
			id:    "abcd1234-qi",
			want:  "hello-world-again-abcd1234",
		},
		{
			name:  "trims leading and trailing hyphens",
			title: "--Weird Title--",
			id:    "abcd1234-qi",
			want:  "weird-title-abcd1234",
		},
		{
			name:  "empty title reduces to suffix",
			title: "!!!",
			id:    "abcd1234-qi",
			want:  "abcd1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.title, tt.id))
		})
	}
}

func TestSlug_DuplicateTitlesStayUnique(t *testing.T) {
	a := Slug("Same Title", "11111111-qi")
	b := Slug("Same Title", "22222222-qi")

	assert.NotEqual(t, a, b)
}

func TestSlug_TruncatesLongTitles(t *testing.T) {
	title := "a very long title that just keeps going and going and going and going and going"

	got := Slug(title, "abcd1234-qi")

	// base is capped at 60 chars plus the 9-char suffix
	assert.LessOrEqual(t, len(got), 60+9)
}
