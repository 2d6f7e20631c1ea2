// Package exposure computes the per-entity fossil-fuel exposure ratio
// (QuantScore) from a normalized filing record, with explicit coverage
// classification so callers never have to guess how a ratio was derived.
package exposure

import (
	"disclosure_index/pkg/core/filing"
)

// Coverage classifies how a ratio was derived.
type Coverage string

const (
	// CoverageFull: grand total and at least one fossil component present.
	CoverageFull Coverage = "full"
	// CoverageZeroFossil: grand total present, no fossil datapoints filed.
	// Absence of fossil datapoints in a filed template is evidence of zero
	// exposure, not missing data.
	CoverageZeroFossil Coverage = "zero_fossil"
	// CoverageNoData: grand total absent or non-positive; the ratio is
	// undefined and the entity drops out of ratio-based rankings.
	CoverageNoData Coverage = "no_data"
)

// Result is the exposure computation for one entity. Monetary fields are
// in the record's local currency (millions) until the FX stage rescales
// them; Ratio is dimensionless and survives conversion untouched.
type Result struct {
	LEI          string `json:"lei"`
	Country      string `json:"country,omitempty"`
	RefPeriod    string `json:"ref_period"`
	BaseCurrency string `json:"base_currency"`

	Coverage     Coverage `json:"coverage"`
	Ratio        *float64 `json:"quant_score,omitempty"`
	RatioPct     *float64 `json:"quant_score_pct,omitempty"`
	GrandTotalM  *float64 `json:"grand_total_m,omitempty"`
	FossilTotalM *float64 `json:"fossil_total_m,omitempty"`
	// FossilBreakdownM keeps only the components that entered the sum.
	FossilBreakdownM map[string]float64 `json:"fossil_breakdown_m,omitempty"`

	UnreliableAbsolute bool `json:"unreliable_absolute"`
}

// Compute derives the exposure result for one record.
//
// Components that are exactly zero or negative are treated as not present
// and excluded from the fossil sum; they are sign/parsing artifacts, not
// exposures. The guard on a non-positive grand total prevents division by
// zero and nonsense ratios from malformed filings.
func Compute(rec *filing.Record) Result {
	res := Result{
		LEI:                rec.LEI,
		Country:            rec.Country,
		RefPeriod:          rec.RefPeriod,
		BaseCurrency:       rec.BaseCurrency,
		GrandTotalM:        rec.GrandTotalM,
		UnreliableAbsolute: rec.UnreliableAbsolute,
	}

	breakdown := make(map[string]float64)
	fossilSum := 0.0
	for nac, v := range rec.FossilM {
		if v > 0 {
			breakdown[nac] = v
			fossilSum += v
		}
	}

	if rec.GrandTotalM == nil || *rec.GrandTotalM <= 0 {
		res.Coverage = CoverageNoData
		return res
	}

	res.FossilTotalM = &fossilSum
	if len(breakdown) == 0 {
		res.Coverage = CoverageZeroFossil
	} else {
		res.Coverage = CoverageFull
		res.FossilBreakdownM = breakdown
	}

	ratio := fossilSum / *rec.GrandTotalM
	pct := ratio * 100
	res.Ratio = &ratio
	res.RatioPct = &pct
	return res
}
