package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// maxResponseBytes bounds how much response text the parser will look at.
// MaxTokens already caps the provider side; this guards against a
// misbehaving backend streaming garbage.
const maxResponseBytes = 1 << 16

// dimensionKeys are the five required DAS dimensions, in rubric order.
var dimensionKeys = []string{
	"specificity", "completeness", "forward_looking", "consistency", "comparability",
}

// parseResponse extracts the five dimension scores and the rationale from
// a raw model response. Strategy, most-strict first: plain JSON, then
// json-repair, then Hjson. Each extracted score is clamped to 0-2. A
// response missing any required key is an error; the caller records the
// entity as failed and moves on.
func parseResponse(raw string) (map[string]int, string, error) {
	if len(raw) > maxResponseBytes {
		return nil, "", fmt.Errorf("response too large: %d bytes", len(raw))
	}

	cleaned := stripFences(raw)

	obj, err := smartParse(cleaned)
	if err != nil {
		return nil, "", err
	}

	scores := make(map[string]int, len(dimensionKeys))
	for _, key := range dimensionKeys {
		v, ok := obj[key]
		if !ok {
			return nil, "", fmt.Errorf("missing key in response: %s", key)
		}
		n, ok := asInt(v)
		if !ok {
			return nil, "", fmt.Errorf("non-integer score for %s: %v", key, v)
		}
		scores[key] = clamp(n, 0, 2)
	}

	rationale, _ := obj["rationale"].(string)
	return scores, rationale, nil
}

// smartParse tries progressively more lenient parsers until one yields a
// JSON object.
func smartParse(input string) (map[string]interface{}, error) {
	var obj map[string]interface{}

	if err := json.Unmarshal([]byte(input), &obj); err == nil {
		return obj, nil
	}

	if repaired, err := jsonrepair.RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), &obj); err == nil {
			return obj, nil
		}
	}

	if err := hjson.Unmarshal([]byte(input), &obj); err == nil {
		return obj, nil
	}

	return nil, fmt.Errorf("all parsing strategies failed for response")
}

// stripFences removes markdown code fences the model may wrap the JSON in
// despite instructions.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
