package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"
)

// MinTextChars is the qualifying threshold: narratives at or below this
// length are placeholder text, not disclosure, and are not sent out for
// scoring.
const MinTextChars = 100

// DefaultCallDelay is the mandatory minimum spacing between scoring calls.
const DefaultCallDelay = 1500 * time.Millisecond

// Candidate is one entity queued for scoring.
type Candidate struct {
	LEI           string
	EntityName    string
	Narrative     string
	QuantScorePct *float64 // exposure context for the prompt; nil when no_data
}

// Score is the DAS result for one entity. On failure every numeric field
// is NaN and Status is "failed"; the entity stays visible in the raw score
// table and is excluded from the composite downstream.
type Score struct {
	LEI            string  `json:"lei"`
	EntityName     string  `json:"entity_name"`
	Specificity    float64 `json:"specificity"`
	Completeness   float64 `json:"completeness"`
	ForwardLooking float64 `json:"forward_looking"`
	Consistency    float64 `json:"consistency"`
	Comparability  float64 `json:"comparability"`
	DASRaw         float64 `json:"das_raw"`        // sum of dimensions, 0-10
	DASNormalized  float64 `json:"das_normalized"` // raw / 10
	Rationale      string  `json:"rationale"`
	Status         string  `json:"scoring_status"` // ok | failed
}

// Scorer runs the rate-limited scoring loop over a batch of candidates.
type Scorer struct {
	provider Provider
	limiter  *rate.Limiter
}

// NewScorer wraps a provider with the mandatory inter-call delay.
func NewScorer(provider Provider, callDelay time.Duration) *Scorer {
	if callDelay <= 0 {
		callDelay = DefaultCallDelay
	}
	return &Scorer{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Every(callDelay), 1),
	}
}

// ScoreAll scores every candidate in order. Per-entity failures are
// recorded in the returned slice, never raised; only a cancelled context
// stops the loop early.
func (s *Scorer) ScoreAll(ctx context.Context, candidates []Candidate) ([]Score, error) {
	scores := make([]Score, 0, len(candidates))
	for i, c := range candidates {
		if err := s.limiter.Wait(ctx); err != nil {
			return scores, fmt.Errorf("scoring loop cancelled: %w", err)
		}
		fmt.Printf("[%02d/%d] Scoring %s (text: %d chars)\n", i+1, len(candidates), c.EntityName, len(c.Narrative))
		scores = append(scores, s.ScoreOne(ctx, c))
	}
	return scores, nil
}

// ScoreOne scores a single entity, translating any provider or parse
// failure into a failed Score.
func (s *Scorer) ScoreOne(ctx context.Context, c Candidate) Score {
	prompt := buildPrompt(c.LEI, c.EntityName, c.Narrative, c.QuantScorePct)

	raw, err := s.provider.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return failedScore(c, fmt.Sprintf("provider error: %v", err))
	}

	dims, rationale, err := parseResponse(raw)
	if err != nil {
		return failedScore(c, fmt.Sprintf("malformed response: %v", err))
	}

	dasRaw := 0
	for _, key := range dimensionKeys {
		dasRaw += dims[key]
	}

	return Score{
		LEI:            c.LEI,
		EntityName:     c.EntityName,
		Specificity:    float64(dims["specificity"]),
		Completeness:   float64(dims["completeness"]),
		ForwardLooking: float64(dims["forward_looking"]),
		Consistency:    float64(dims["consistency"]),
		Comparability:  float64(dims["comparability"]),
		DASRaw:         float64(dasRaw),
		DASNormalized:  float64(dasRaw) / 10.0,
		Rationale:      rationale,
		Status:         "ok",
	}
}

func failedScore(c Candidate, reason string) Score {
	nan := math.NaN()
	return Score{
		LEI:            c.LEI,
		EntityName:     c.EntityName,
		Specificity:    nan,
		Completeness:   nan,
		ForwardLooking: nan,
		Consistency:    nan,
		Comparability:  nan,
		DASRaw:         nan,
		DASNormalized:  nan,
		Rationale:      "FAILED: " + reason,
		Status:         "failed",
	}
}
