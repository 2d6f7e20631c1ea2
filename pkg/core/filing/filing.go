// Package filing turns one entity's P3DH filing package into a normalized
// record: identity resolved from the package naming convention, declared
// parameters read with documented defaults, and the datapoints the pipeline
// needs pulled through the unit normalizer.
package filing

import "errors"

// ErrIdentity marks a package whose name does not carry a parseable LEI.
// Such records are discarded upstream; nothing else about them is trusted.
var ErrIdentity = errors.New("cannot parse LEI from package name")

// Package is one entity's filing set as yielded by a Source. The maps are
// nil (not empty) when the underlying table is absent, so extraction can
// distinguish "missing file" from "empty file".
type Package struct {
	FolderName string
	Parameters map[string]string // parameters table; nil when missing
	Facts      map[string]float64
	Narrative  []string
}

// Source yields filing packages. Implementations decide where packages
// come from (directory scan, archive, fixture); identity-parsing rules stay
// in the extractor.
type Source interface {
	Packages() ([]Package, error)
}

// Record is the normalized per-entity result of extraction. Built once per
// package; immutable afterwards. All monetary fields are in local-currency
// millions (see the units package for the decimalsMonetary contract).
type Record struct {
	LEI          string `json:"lei"`
	Country      string `json:"country,omitempty"`
	EntityType   string `json:"entity_type,omitempty"` // CON or IND
	RefPeriod    string `json:"ref_period"`
	BaseCurrency string `json:"base_currency"`
	Decimals     int    `json:"decimals"`

	HasPrimaryData bool     `json:"has_primary_data"`
	GrandTotalM    *float64 `json:"total_gca_m_local,omitempty"`
	// FossilM maps NACE sector code to the normalized reported value, for
	// every fossil datapoint present in the fact table. Sign filtering is
	// the ratio calculator's job, not extraction's.
	FossilM map[string]float64 `json:"fossil_m_local,omitempty"`

	QualText      string `json:"qual_text,omitempty"`
	QualTextChars int    `json:"qual_text_chars"`

	UnreliableAbsolute bool   `json:"unreliable_absolute"`
	UnreliableReason   string `json:"unreliable_reason,omitempty"`

	ParseOK     bool     `json:"parse_ok"`
	ParseErrors []string `json:"errors,omitempty"`
	FolderName  string   `json:"folder_name"`
}
