package admin

import (
	"net/http"
	"net/url"

	readability "github.com/go-shiori/go-readability"
	"github.com/sym01/htmlsanitizer"

	nrerrs "github.com/mchasew/newsroom/internal/errors"
	"github.com/mchasew/newsroom/internal/serverutil"
)

type SourcePreviewResp struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	ReaderContent string `json:"reader_content"`
}

// Fetches a queue item's source and strips it down to readable text so the
// operator can judge the source without leaving the dashboard.
func (s Server) getSourcePreview(w http.ResponseWriter, r *http.Request) error {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		return nrerrs.E("url is required", http.StatusBadRequest)
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nrerrs.E("url must be http or https", http.StatusBadRequest)
	}

	// Cache results for less processing and prevent refetches
	if resp, ok := s.previewCache.Get(rawURL); ok {
		return serverutil.WriteJSON(w, http.StatusOK, resp)
	}

	// Fetch the actual site
	resp, err := s.fetchClient.Get(rawURL)
	if err != nil {
		return nrerrs.E(err, http.StatusBadGateway)
	}
	defer resp.Body.Close()

	// Strip it for readability and sanitize
	parser := readability.NewParser()
	article, err := parser.Parse(resp.Body, u)
	if err != nil {
		return nrerrs.E(err, http.StatusBadGateway)
	}

	santizer := htmlsanitizer.NewHTMLSanitizer()
	contents, err := santizer.SanitizeString(article.Content)
	if err != nil {
		return err
	}

	ret := SourcePreviewResp{
		URL:           rawURL,
		Title:         article.Title,
		ReaderContent: contents,
	}
	// Add to the cache for next time
	s.previewCache.Add(rawURL, ret)

	return serverutil.WriteJSON(w, http.StatusOK, ret)
}
