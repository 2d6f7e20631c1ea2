package scoring

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// GeminiProvider scores via Google's Gemini API, as an alternative backend
// to Claude. Flash-class models handle the structured rubric fine.
type GeminiProvider struct {
	Model string
}

var _ Provider = (*GeminiProvider)(nil)

// Generate sends one scoring request through the GenAI SDK in JSON mode.
func (p *GeminiProvider) Generate(ctx context.Context, system string, prompt string) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	model := p.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
		MaxOutputTokens:  maxScoreTokens,
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return result.Text(), nil
}
