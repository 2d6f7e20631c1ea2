package filing

import (
	"fmt"
	"regexp"
	"strings"

	"disclosure_index/pkg/core/taxonomy"
	"disclosure_index/pkg/core/units"
)

// leiPattern matches the 20-character alphanumeric LEI prefix of a package
// folder name, e.g. "213800A1O379I6DMCU10.CON_MT_2025-06-30".
var leiPattern = regexp.MustCompile(`^([A-Z0-9]{20})\.`)

// countryPattern pulls entity type (consolidated/individual) and country
// from the secondary naming convention, e.g. ".CON_MT_". Optional: packages
// without it keep empty fields.
var countryPattern = regexp.MustCompile(`\.(CON|IND)_([A-Z]{2})_`)

// Extractor resolves filing packages into normalized records using the
// decoded taxonomy table and the known-anomaly list. Stateless across
// packages; safe to reuse for a whole batch.
type Extractor struct {
	grandTotalDP string
	fossilDPs    map[string]string // NACE sector code -> datapoint id
	anomalies    units.AnomalyList
}

// NewExtractor resolves the datapoints the pipeline needs (grand total and
// fossil sectors on the gross-carrying-amount column) once, up front.
func NewExtractor(table *taxonomy.Table, anomalies units.AnomalyList) *Extractor {
	return &Extractor{
		grandTotalDP: table.GrandTotalDatapoint(taxonomy.GrossCarryingAmountCol),
		fossilDPs:    table.FossilDatapoints(taxonomy.GrossCarryingAmountCol),
		anomalies:    anomalies,
	}
}

// Extract builds the normalized record for one package.
//
// Identity failure returns ErrIdentity and no record. Everything else is
// stage-local: missing parameters or fact tables are recorded in the
// record's error list and markers, never raised, so one bad filing cannot
// abort the batch.
func (e *Extractor) Extract(pkg Package) (*Record, error) {
	m := leiPattern.FindStringSubmatch(pkg.FolderName)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrIdentity, pkg.FolderName)
	}

	rec := &Record{
		LEI:        m[1],
		FolderName: pkg.FolderName,
		Decimals:   units.DefaultDecimals,
	}

	if cm := countryPattern.FindStringSubmatch(pkg.FolderName); cm != nil {
		rec.EntityType = cm[1]
		rec.Country = cm[2]
	}

	if reason, flagged := e.anomalies.UnreliableAbsolute(rec.LEI); flagged {
		rec.UnreliableAbsolute = true
		rec.UnreliableReason = reason
	}

	if pkg.Parameters == nil {
		rec.ParseErrors = append(rec.ParseErrors, "parameters table missing")
		return rec, nil
	}

	rec.RefPeriod = strings.TrimSpace(pkg.Parameters["refPeriod"])
	rec.BaseCurrency = normalizeCurrency(pkg.Parameters["baseCurrency"])
	rec.Decimals = units.ParseDecimals(pkg.Parameters["decimalsMonetary"])

	e.extractFacts(pkg, rec)
	e.extractNarrative(pkg, rec)

	rec.ParseOK = true
	return rec, nil
}

// extractFacts pulls the grand total and each fossil-sector datapoint
// through the unit normalizer. A missing fact table keeps the record with
// has_primary_data=false; downstream classifies it as no_data.
func (e *Extractor) extractFacts(pkg Package, rec *Record) {
	if pkg.Facts == nil {
		rec.ParseErrors = append(rec.ParseErrors, "primary fact table missing")
		return
	}
	rec.HasPrimaryData = true

	if raw, ok := pkg.Facts[e.grandTotalDP]; ok {
		rec.GrandTotalM = units.CanonicalMillions(&raw, rec.Decimals)
	}

	rec.FossilM = make(map[string]float64, len(e.fossilDPs))
	for nac, dp := range e.fossilDPs {
		if raw, ok := pkg.Facts[dp]; ok {
			rec.FossilM[nac] = *units.CanonicalMillions(&raw, rec.Decimals)
		}
	}
}

// extractNarrative joins the qualitative fact values (template k_00.03)
// into one text blob for the scoring stage.
func (e *Extractor) extractNarrative(pkg Package, rec *Record) {
	if len(pkg.Narrative) == 0 {
		return
	}
	rec.QualText = strings.Join(pkg.Narrative, " | ")
	for _, t := range pkg.Narrative {
		rec.QualTextChars += len(t)
	}
}

// normalizeCurrency strips the iso4217 namespace prefix and upper-cases
// the code. Empty declarations default to EUR, matching the reporting
// population.
func normalizeCurrency(declared string) string {
	c := strings.TrimSpace(declared)
	c = strings.TrimPrefix(c, "iso4217:")
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return "EUR"
	}
	return c
}
