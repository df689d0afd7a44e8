package generate

import (
	"context"
	"net/url"
)

// ImageResolver finds a featured image URL for a query string.
type ImageResolver interface {
	ResolveImage(ctx context.Context, query string) (string, error)
}

// SearchURLResolver is the zero-dependency resolver: it points at an external
// image search for the query. It also serves as the fallback when a real
// resolver fails.
type SearchURLResolver struct{}

var _ ImageResolver = SearchURLResolver{}

func (SearchURLResolver) ResolveImage(_ context.Context, query string) (string, error) {
	return FallbackImageURL(query), nil
}

// FallbackImageURL builds the deterministic image-search URL for a query.
func FallbackImageURL(query string) string {
	return "https://source.unsplash.com/1600x900/?" + url.QueryEscape(query)
}
