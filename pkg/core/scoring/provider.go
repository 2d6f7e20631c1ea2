// Package scoring produces the Disclosure Adequacy Score (DAS): an LLM
// rates each entity's qualitative narrative on five bounded dimensions.
// The scoring call is the pipeline's only external I/O step; everything in
// this package is built so one entity's failure never aborts the batch.
package scoring

import "context"

// Provider is one LLM backend. It takes a system prompt and a user prompt
// and returns the raw response text; response parsing and repair happen in
// the scorer, so providers stay thin.
type Provider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// systemPrompt pins the model to JSON-only output. Models still wander, so
// the parser tolerates fences and mild malformation anyway.
const systemPrompt = "You are a precise financial disclosure analyst. " +
	"You always respond with valid JSON only, no markdown, " +
	"no explanation outside the JSON object."
