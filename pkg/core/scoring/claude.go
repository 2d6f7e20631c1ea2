package scoring

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// maxScoreTokens bounds the response size. A five-field JSON object with a
// one-sentence rationale fits comfortably; anything longer is the model
// rambling and gets truncated rather than read unboundedly.
const maxScoreTokens = 300

// ClaudeProvider scores via the Anthropic API. Haiku-class models are
// sufficient for structured classification at a fraction of the cost.
type ClaudeProvider struct {
	Model string
}

var _ Provider = (*ClaudeProvider)(nil)

// Generate sends one scoring request to the Anthropic Messages API.
func (p *ClaudeProvider) Generate(ctx context.Context, system string, prompt string) (string, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	model := p.Model
	if model == "" {
		model = "claude-haiku-4-5"
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxScoreTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	text := textContent(resp.Content)
	if text == "" {
		return "", fmt.Errorf("claude returned no text content")
	}
	return text, nil
}

// textContent concatenates the text blocks of a response, skipping tool-use
// and other non-text variants. Content blocks are discriminated by their
// Type string.
func textContent(blocks []anthropic.ContentBlockUnion) string {
	var out strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String()
}
