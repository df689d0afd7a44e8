// Package topics discovers candidate subjects for a generation cycle.
package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mchasew/newsroom/internal/newsroom"
)

const defaultEndpoint = "https://gnews.io/api/v4/top-headlines"

// Fallback subjects used whenever the headline feed is unavailable or
// unconfigured. The priority topic leads the list.
var fallbackTopics = []string{
	newsroom.PriorityTopicTitle,
	"Digital Marketing Trends",
	"Remote Work Culture",
	"Personal Finance for Beginners",
	"Artificial Intelligence in Everyday Life",
	"Startup Ecosystem in India",
	"Sustainable Living Tips",
	"Career Growth Strategies",
}

type Source struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewSource(apiKey string) *Source {
	return &Source{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Shape of the headline feed response; only titles are consumed.
type headlinesResp struct {
	Articles []struct {
		Title string `json:"title"`
	} `json:"articles"`
}

// Discover returns an ordered, non-empty list of subjects. It never fails:
// any problem with the headline feed degrades to the static fallback list.
func (s *Source) Discover(ctx context.Context) []string {
	fetched, err := s.fetch(ctx)
	if err != nil {
		slog.Warn("headline fetch failed, using fallback topics", "error", err)
		return Pin(fallbackTopics)
	}
	if len(fetched) == 0 {
		return Pin(fallbackTopics)
	}

	return Pin(fetched)
}

func (s *Source) fetch(ctx context.Context) ([]string, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("no headline api key configured")
	}

	u := fmt.Sprintf("%s?lang=en&max=10&apikey=%s", s.endpoint, url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("error building headline request: %s", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching headlines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body headlinesResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("error decoding headlines: %w", err)
	}

	var subjects []string
	for _, a := range body.Articles {
		title := strings.TrimSpace(a.Title)
		if title != "" {
			subjects = append(subjects, title)
		}
	}

	return subjects, nil
}

// Pin moves the entrance-exam/jobs subject to the front of the list,
// prepending it if absent, so it is processed before any quota or time limit
// can truncate the cycle.
func Pin(subjects []string) []string {
	for i, s := range subjects {
		if newsroom.PriorityTopic(s) {
			if i == 0 {
				return subjects
			}
			pinned := make([]string, 0, len(subjects))
			pinned = append(pinned, subjects[i])
			pinned = append(pinned, subjects[:i]...)
			pinned = append(pinned, subjects[i+1:]...)
			return pinned
		}
	}

	return append([]string{newsroom.PriorityTopicTitle}, subjects...)
}

// SetEndpoint overrides the headline endpoint, for tests.
func (s *Source) SetEndpoint(endpoint string) {
	s.endpoint = endpoint
}
