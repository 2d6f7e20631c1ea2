// Package fx converts absolute monetary figures to the reference currency
// using period-bucketed ECB reference-rate snapshots. Ratios are never
// converted: they are dimensionless by construction.
package fx

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"disclosure_index/pkg/core/exposure"
)

// ReferenceCurrency is the common currency all absolute figures are
// converted into.
const ReferenceCurrency = "EUR"

// ProvenanceAssumed tags a rate that was defaulted to 1.0 because the
// currency is not in the table. Callers filter on it; an assumed rate is
// never silently indistinguishable from a verified one.
const ProvenanceAssumed = "assumed"

// Snapshot is one static rate table: 1 unit of foreign currency = Rate EUR,
// as of Date. Marker selects the snapshot by substring match on the
// reference period; the snapshot with an empty marker is the fallback.
type Snapshot struct {
	Marker string             `yaml:"marker"`
	Date   string             `yaml:"date"`
	Rates  map[string]float64 `yaml:"rates"`
}

// Table is the versioned, append-only rate table. Snapshots are checked in
// order, so more specific period markers go first.
type Table struct {
	Snapshots []Snapshot `yaml:"snapshots"`
}

// DefaultTable returns the ECB SDW end-of-period reference rates for the
// two observed reporting periods. H1 2025 (2025-06-30) is the fallback;
// year-end reporters are routed by the "2025-12" marker in their period.
func DefaultTable() Table {
	return Table{Snapshots: []Snapshot{
		{
			Marker: "2025-12",
			Date:   "2025-12-31",
			Rates: map[string]float64{
				"EUR": 1.000000,
				"HUF": 0.002525,
				"PLN": 0.230000,
				"RON": 0.200000,
				"SEK": 0.086000,
				"DKK": 0.134228,
				"CZK": 0.039526,
				"CHF": 1.052632,
				"GBP": 1.162791,
				"USD": 0.909091,
				"NOK": 0.085000,
				"BGN": 0.511292,
			},
		},
		{
			Marker: "",
			Date:   "2025-06-30",
			Rates: map[string]float64{
				"EUR": 1.000000,
				"HUF": 0.002538,
				"PLN": 0.232019,
				"RON": 0.200803,
				"SEK": 0.087108,
				"DKK": 0.134228,
				"CZK": 0.040161,
				"HRK": 0.132626,
				"CHF": 1.063830,
				"GBP": 1.175978,
				"USD": 0.921659,
				"NOK": 0.086957,
				"BGN": 0.511292, // fixed peg 1.95583 BGN/EUR
				"ALL": 0.009709,
				"RSD": 0.008547,
				"BAM": 0.511292, // fixed peg, same as BGN
			},
		},
	}}
}

// LoadTable reads a YAML rate table with the same structure as the
// defaults.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read fx table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("failed to parse fx table: %w", err)
	}
	return t, nil
}

// Rate returns the conversion rate to the reference currency for an
// entity's base currency and reference period, plus a provenance tag.
// Unknown currencies get exactly 1.0 with ProvenanceAssumed.
func (t Table) Rate(currency, refPeriod string) (float64, string) {
	currency = normalize(currency)
	snap := t.snapshotFor(refPeriod)

	if rate, ok := snap.Rates[currency]; ok {
		return rate, "ECB SDW " + snap.Date
	}
	return 1.0, ProvenanceAssumed
}

// snapshotFor picks the first snapshot whose marker appears in the
// reference period; the empty-marker snapshot is the fallback.
func (t Table) snapshotFor(refPeriod string) Snapshot {
	var fallback Snapshot
	for _, s := range t.Snapshots {
		if s.Marker == "" {
			fallback = s
			continue
		}
		if strings.Contains(refPeriod, s.Marker) {
			return s
		}
	}
	return fallback
}

func normalize(currency string) string {
	c := strings.TrimSpace(currency)
	c = strings.TrimPrefix(c, "iso4217:")
	return strings.ToUpper(strings.TrimSpace(c))
}

// Converted is an exposure result with its absolute figures rescaled into
// the reference currency. The embedded result keeps the reported-currency
// figures and the untouched ratio for auditability.
type Converted struct {
	exposure.Result

	FXRate   float64 `json:"fx_rate_to_eur"`
	FXSource string  `json:"fx_source"`

	GrandTotalEURM      *float64           `json:"gca_eur_m,omitempty"`
	FossilTotalEURM     *float64           `json:"fossil_eur_m,omitempty"`
	FossilBreakdownEURM map[string]float64 `json:"fossil_breakdown_eur_m,omitempty"`
}

// Convert rescales every absolute monetary field of a result by the rate
// for its currency and period. A pure linear rescale: the ratio field is
// deliberately left alone.
func (t Table) Convert(res exposure.Result) Converted {
	rate, source := t.Rate(res.BaseCurrency, res.RefPeriod)

	out := Converted{Result: res, FXRate: rate, FXSource: source}
	out.GrandTotalEURM = scale(res.GrandTotalM, rate)
	out.FossilTotalEURM = scale(res.FossilTotalM, rate)

	if len(res.FossilBreakdownM) > 0 {
		out.FossilBreakdownEURM = make(map[string]float64, len(res.FossilBreakdownM))
		for nac, v := range res.FossilBreakdownM {
			out.FossilBreakdownEURM[nac] = v * rate
		}
	}
	return out
}

func scale(v *float64, rate float64) *float64 {
	if v == nil {
		return nil
	}
	s := *v * rate
	return &s
}
