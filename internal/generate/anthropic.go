package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/mchasew/newsroom/internal/newsroom"
)

// ClaudeCompleter implements the generation backend on the Anthropic API.
type ClaudeCompleter struct {
	client *anthropic.Client
}

var _ newsroom.Completer = (*ClaudeCompleter)(nil)

func NewClaudeCompleter(client *anthropic.Client) *ClaudeCompleter {
	return &ClaudeCompleter{client: client}
}

func (c *ClaudeCompleter) Complete(ctx context.Context, req newsroom.CompletionRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude error: %w", err)
	}

	var text strings.Builder
	for _, content := range resp.Content {
		text.WriteString(content.Text)
	}

	return text.String(), nil
}

// permissionClass reports whether the backend refused us outright, as opposed
// to a transient failure. A forbidden backend triggers fallback generation
// even when the auto-fallback toggle is off.
func permissionClass(err error) bool {
	var claudeErr *anthropic.Error
	if !errors.As(err, &claudeErr) {
		return false
	}

	return claudeErr.StatusCode == http.StatusForbidden || claudeErr.StatusCode == http.StatusUnauthorized
}
