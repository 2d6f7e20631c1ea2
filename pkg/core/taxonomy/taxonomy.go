// Package taxonomy decodes the EBA DPM taxonomy export for template K_41.00
// into a lookup table from datapoint identifier to structural position
// (row, column, NACE sector). The table is built once at startup and read
// by every later pipeline stage.
package taxonomy

import (
	"regexp"
	"sort"
)

// GrandTotalRow is the designated total row of template K_41.00: the sum
// across all NACE sectors for a given column.
const GrandTotalRow = "r0560"

// GrossCarryingAmountCol is the primary measure column (Gross carrying
// amount - TOTAL). QuantScore is computed on this column only.
const GrossCarryingAmountCol = "c0010"

// cellCodePattern matches the "r<digits>, c<digits>" coordinate string in
// the taxonomy documentation block, e.g. "K 41.00, r0010, c0010".
var cellCodePattern = regexp.MustCompile(`r(\d+),\s*c(\d+)`)

// sectorDimPattern identifies the NACE sector dimension qualifier key.
var sectorDimPattern = regexp.MustCompile(`NAC`)

// DatapointSource is one entry of the opaque taxonomy export: the cellcode
// string from the documentation block plus zero or more dimension
// qualifiers (e.g. "eba_dim:NAC" -> "eba_NC:B5"). Producing this mapping
// from the raw taxonomy JSON is the loader's job, not ours.
type DatapointSource struct {
	CellCode   string            `json:"cellcode"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
}

// Entry is one decoded datapoint: its position in the template and the
// semantic flags derived from it. Immutable once built.
type Entry struct {
	Datapoint    string `json:"datapoint"`
	RowCode      string `json:"row_code"`
	ColCode      string `json:"col_code"`
	NACCode      string `json:"nac_code"`
	NACLabel     string `json:"nac_label"`
	ColLabel     string `json:"col_label"`
	IsCPRSFossil bool   `json:"is_cprs_fossil"`
	IsGrandTotal bool   `json:"is_grand_total"`
	CellCode     string `json:"cellcode"`
}

// Table is the immutable datapoint lookup built from a taxonomy export.
type Table struct {
	entries map[string]Entry
	skipped []string
}

// Build decodes a taxonomy export into a Table. Entries whose cellcode does
// not match the coordinate pattern are skipped and recorded, never fatal:
// the EBA export carries non-cell datapoints (open axes) we do not need.
// The build is deterministic and order-independent.
func Build(source map[string]DatapointSource, labels Labels) *Table {
	t := &Table{entries: make(map[string]Entry, len(source))}

	for dp, info := range source {
		m := cellCodePattern.FindStringSubmatch(info.CellCode)
		if m == nil {
			t.skipped = append(t.skipped, dp)
			continue
		}
		rowCode := "r" + m[1]
		colCode := "c" + m[2]

		nac := extractSectorCode(info.Dimensions)

		t.entries[dp] = Entry{
			Datapoint:    dp,
			RowCode:      rowCode,
			ColCode:      colCode,
			NACCode:      nac,
			NACLabel:     labels.SectorLabel(nac),
			ColLabel:     labels.ColumnLabel(colCode),
			IsCPRSFossil: labels.IsFossil(nac),
			IsGrandTotal: rowCode == GrandTotalRow,
			CellCode:     info.CellCode,
		}
	}
	sort.Strings(t.skipped)
	return t
}

// extractSectorCode pulls the NACE sector code from the dimension
// qualifiers: the suffix of the sector-dimension value after its final
// namespace separator, e.g. "eba_NC:B5" -> "B5". Empty when the datapoint
// has no sector dimension (total rows).
func extractSectorCode(dims map[string]string) string {
	for k, v := range dims {
		if !sectorDimPattern.MatchString(k) {
			continue
		}
		for i := len(v) - 1; i >= 0; i-- {
			if v[i] == ':' {
				return v[i+1:]
			}
		}
		return v
	}
	return ""
}

// Lookup returns the entry for a datapoint identifier.
func (t *Table) Lookup(dp string) (Entry, bool) {
	e, ok := t.entries[dp]
	return e, ok
}

// Len returns the number of decoded datapoints.
func (t *Table) Len() int { return len(t.entries) }

// Skipped returns the datapoint identifiers whose cellcode could not be
// parsed, sorted. Surfaced so callers can log build quality.
func (t *Table) Skipped() []string { return t.skipped }

// Entries returns all decoded entries sorted by datapoint identifier.
// Used to persist the mapping table.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Datapoint < out[j].Datapoint })
	return out
}

// FossilDatapoints returns the CPRS fossil-sector datapoints for one
// column, keyed by NACE sector code.
func (t *Table) FossilDatapoints(colCode string) map[string]string {
	out := make(map[string]string)
	for dp, e := range t.entries {
		if e.IsCPRSFossil && e.ColCode == colCode {
			out[e.NACCode] = dp
		}
	}
	return out
}

// GrandTotalDatapoint returns the grand-total datapoint for one column,
// or "" when the taxonomy carries none.
func (t *Table) GrandTotalDatapoint(colCode string) string {
	var found string
	for dp, e := range t.entries {
		if e.IsGrandTotal && e.ColCode == colCode {
			if found == "" || dp < found {
				found = dp
			}
		}
	}
	return found
}
