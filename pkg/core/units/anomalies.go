package units

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// AnomalyList records filings with known reporting errors in their absolute
// monetary values. Flagged entities keep their ratio metrics (numerator and
// denominator share the same mis-scaling, so the error cancels) but their
// absolute figures must be marked unreliable in every output table.
//
// Policy: flag, never auto-correct. The inflation factor is an upstream
// filing error and unverified corrections would be worse than visible flags.
type AnomalyList struct {
	Entities map[string]string `yaml:"unreliable_absolute"`
}

// DefaultAnomalies returns the built-in list. One known case: the Santander
// H1 2025 filing declares decimals=-6 but its values are 100x inflated
// (apparently stored in cents).
func DefaultAnomalies() AnomalyList {
	return AnomalyList{
		Entities: map[string]string{
			"K8MS7FD7N5Z2WQ51AZ71": "values 100x inflated vs declared decimals; absolute figures unreliable, ratio unaffected",
		},
	}
}

// LoadAnomalies reads a YAML override with the same structure as the
// defaults.
func LoadAnomalies(path string) (AnomalyList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AnomalyList{}, fmt.Errorf("failed to read anomaly file: %w", err)
	}
	var a AnomalyList
	if err := yaml.Unmarshal(data, &a); err != nil {
		return AnomalyList{}, fmt.Errorf("failed to parse anomaly file: %w", err)
	}
	return a, nil
}

// UnreliableAbsolute reports whether an entity's absolute monetary figures
// are flagged, with the reason.
func (a AnomalyList) UnreliableAbsolute(entityID string) (string, bool) {
	reason, ok := a.Entities[entityID]
	return reason, ok
}
