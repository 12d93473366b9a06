// Package suggest generates prompt template sets with Claude.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/liminalpurple/stickerforge/internal/sticker"
)

const templatePrompt = `Suggest %d sticker prompt templates%s.
Each template has a short display name, a one-sentence image-generation prompt,
and a single emoji icon.
Output ONLY a JSON array, no markdown fences, no commentary:
[{"name":"...","prompt":"...","icon":"..."}]`

// Client wraps the Anthropic client for template generation
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewClient creates a new suggestion client
func NewClient(apiKey string, model string, maxTokens int) *Client {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Client{
		client:    client,
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// GenerateTemplates asks Claude for a fresh template set. The returned
// set replaces the active one wholesale; it is never merged. An empty
// theme asks for general-purpose templates.
func (c *Client) GenerateTemplates(ctx context.Context, theme string, count int) ([]sticker.Template, error) {
	if count <= 0 {
		count = 5
	}

	themed := ""
	if theme != "" {
		themed = fmt.Sprintf(" themed around %q", theme)
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(fmt.Sprintf(templatePrompt, count, themed)),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate templates: %w", err)
	}

	if len(message.Content) == 0 {
		return nil, fmt.Errorf("no content in response")
	}
	if message.Content[0].Type != "text" {
		return nil, fmt.Errorf("unexpected response type: %s", message.Content[0].Type)
	}

	return ParseTemplates(message.Content[0].Text)
}

// ParseTemplates decodes a model response into a template set. The
// model occasionally wraps the array in a markdown fence despite
// instructions, so fences are stripped before decoding.
func ParseTemplates(text string) ([]sticker.Template, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var templates []sticker.Template
	if err := json.Unmarshal([]byte(text), &templates); err != nil {
		return nil, fmt.Errorf("failed to parse template response: %w", err)
	}

	if len(templates) == 0 {
		return nil, fmt.Errorf("response contained no templates")
	}
	for i, tpl := range templates {
		if tpl.Name == "" || tpl.Prompt == "" {
			return nil, fmt.Errorf("template %d is missing a name or prompt", i)
		}
	}

	return templates, nil
}
