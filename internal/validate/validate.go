// Package validate independently re-verifies externally linked source URLs
// before content tied to them is trusted for publication.
package validate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ReasonInvalidProtocol is the exact reason recorded for non-HTTP(S) URLs.
const ReasonInvalidProtocol = "Invalid protocol"

type Validator struct {
	client *http.Client
}

func NewValidator() *Validator {
	return &Validator{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Validate checks that the URL is a live HTTP(S) endpoint.
//
// Non-HTTP(S) schemes are rejected before any network traffic. A HEAD
// request is tried first; if it is rejected or errors, one GET retry follows
// under the same timeout and status criterion. Network problems are a
// negative result, never an error: the caller always gets a boolean plus a
// reason it can log.
func (v *Validator) Validate(ctx context.Context, rawURL string) (bool, string) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false, ReasonInvalidProtocol
	}

	ok, reason := v.attempt(ctx, http.MethodHead, rawURL)
	if ok {
		return true, ""
	}

	// HEAD is often rejected or misconfigured; give GET one chance.
	if ok, reason = v.attempt(ctx, http.MethodGet, rawURL); ok {
		return true, ""
	}

	return false, reason
}

func (v *Validator) attempt(ctx context.Context, method, rawURL string) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return false, err.Error()
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusBadRequest {
		return true, ""
	}

	return false, fmt.Sprintf("Unreachable (status %d)", resp.StatusCode)
}
