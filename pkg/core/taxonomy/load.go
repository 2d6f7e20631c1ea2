package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadDatapointSource reads a pre-extracted taxonomy export: a JSON object
// keyed by datapoint identifier, each value carrying the cellcode string
// and its dimension qualifiers.
func LoadDatapointSource(path string) (map[string]DatapointSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy export %s: %w", path, err)
	}

	var source map[string]DatapointSource
	if err := json.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy export %s: %w", path, err)
	}
	return source, nil
}
