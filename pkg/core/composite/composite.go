// Package composite merges the quantitative exposure ratio with the
// qualitative DAS into the Disclosure Consistency Index:
//
//	DCI = DAS_normalized - QuantScore_normalized
//
// Positive DCI means the entity discloses more than its fossil exposure
// warrants; negative means it understates.
package composite

import (
	"math"
	"sort"

	"disclosure_index/pkg/core/fx"
	"disclosure_index/pkg/core/scoring"
)

// Entry is one row of the final DCI table.
type Entry struct {
	LEI          string `json:"lei"`
	EntityName   string `json:"entity_name"`
	Country      string `json:"country,omitempty"`
	BaseCurrency string `json:"base_currency"`

	QuantScorePct        float64 `json:"quant_score_pct"`
	QuantScoreNormalized float64 `json:"quant_score_normalized"`
	DASRaw               float64 `json:"das_raw"`
	DASNormalized        float64 `json:"das_normalized"`
	DCI                  float64 `json:"dci"`

	// Verdict classifies the gap for readers: over (> 0.1), under
	// (< -0.1), match otherwise.
	Verdict string `json:"verdict"`
}

// Merge joins DAS scores with exposure results on LEI, inner-join
// semantics: an entity missing a usable side (failed scoring, or no_data
// exposure) is excluded here but stays visible in the per-stage tables.
//
// The exposure normalization anchor is the maximum ratio across the FULL
// sample, including entities that drop out of the join, so the most
// exposed entity in the population defines 1.0 even if it was never
// scored qualitatively.
func Merge(scores []scoring.Score, results []fx.Converted) []Entry {
	maxPct := MaxRatioPct(results)

	byLEI := make(map[string]fx.Converted, len(results))
	for _, r := range results {
		byLEI[r.LEI] = r
	}

	var entries []Entry
	for _, s := range scores {
		if s.Status != "ok" {
			continue
		}
		r, ok := byLEI[s.LEI]
		if !ok || r.RatioPct == nil {
			continue
		}

		qsNorm := 0.0
		if maxPct > 0 {
			qsNorm = *r.RatioPct / maxPct
		}

		dasNorm := round4(s.DASNormalized)
		qsNorm = round4(qsNorm)

		entries = append(entries, Entry{
			LEI:                  s.LEI,
			EntityName:           s.EntityName,
			Country:              r.Country,
			BaseCurrency:         r.BaseCurrency,
			QuantScorePct:        *r.RatioPct,
			QuantScoreNormalized: qsNorm,
			DASRaw:               s.DASRaw,
			DASNormalized:        dasNorm,
			DCI:                  round4(dasNorm - qsNorm),
		})
	}

	for i := range entries {
		entries[i].Verdict = verdict(entries[i].DCI)
	}

	// Most transparent first.
	sort.Slice(entries, func(i, j int) bool { return entries[i].DCI > entries[j].DCI })
	return entries
}

// MaxRatioPct returns the maximum exposure percentage across a sample,
// ignoring entities without a ratio. Zero when nothing in the sample has
// one.
func MaxRatioPct(results []fx.Converted) float64 {
	max := 0.0
	for _, r := range results {
		if r.RatioPct != nil && *r.RatioPct > max {
			max = *r.RatioPct
		}
	}
	return max
}

func verdict(dci float64) string {
	switch {
	case dci > 0.1:
		return "over"
	case dci < -0.1:
		return "under"
	default:
		return "match"
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
