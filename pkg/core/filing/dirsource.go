package filing

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DirSource yields one Package per entity folder under a root directory,
// following the P3DH download layout:
//
//	<root>/<LEI>.<...>/reports/parameters.csv
//	<root>/<LEI>.<...>/reports/k_41.00.csv   (primary fact table)
//	<root>/<LEI>.<...>/reports/k_00.03.csv   (qualitative narrative)
//
// Folders without an LEI prefix and the output folder are skipped at scan
// time so they are never mistaken for filings.
type DirSource struct {
	Root string
}

// Packages scans the root directory. Missing per-entity tables are
// reported as nil maps in the Package, not as errors; only an unreadable
// root fails the scan.
func (s *DirSource) Packages() ([]Package, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan filings root: %w", err)
	}

	var pkgs []Package
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == "output" || !leiPattern.MatchString(entry.Name()) {
			continue
		}
		reports := filepath.Join(s.Root, entry.Name(), "reports")
		pkgs = append(pkgs, Package{
			FolderName: entry.Name(),
			Parameters: readParameters(filepath.Join(reports, "parameters.csv")),
			Facts:      readFacts(filepath.Join(reports, "k_41.00.csv")),
			Narrative:  readNarrative(filepath.Join(reports, "k_00.03.csv")),
		})
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].FolderName < pkgs[j].FolderName })
	return pkgs, nil
}

// readParameters parses the key-value parameters table. Returns nil when
// the file is absent or unreadable.
func readParameters(path string) map[string]string {
	rows := readCSV(path)
	if rows == nil {
		return nil
	}
	params := make(map[string]string)
	for i, row := range rows {
		if i == 0 || len(row) < 2 { // header row
			continue
		}
		params[strings.TrimSpace(row[0])] = strings.TrimSpace(row[1])
	}
	return params
}

// readFacts parses a fact table into datapoint -> factValue. Rows with a
// non-numeric factValue are dropped; that is the narrative templates'
// territory, not the numeric ones'.
func readFacts(path string) map[string]float64 {
	rows := readCSV(path)
	if rows == nil {
		return nil
	}
	dpCol, valCol := columnIndices(rows[0], "datapoint", "factValue")
	facts := make(map[string]float64)
	for i, row := range rows {
		if i == 0 || len(row) <= dpCol || len(row) <= valCol {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[valCol]), 64)
		if err != nil {
			continue
		}
		facts[strings.TrimSpace(row[dpCol])] = v
	}
	return facts
}

// readNarrative collects the non-empty factValue strings of the
// qualitative template, in file order.
func readNarrative(path string) []string {
	rows := readCSV(path)
	if rows == nil {
		return nil
	}
	_, valCol := columnIndices(rows[0], "datapoint", "factValue")
	var texts []string
	for i, row := range rows {
		if i == 0 || len(row) <= valCol {
			continue
		}
		if t := strings.TrimSpace(row[valCol]); t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

func readCSV(path string) [][]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // narrative rows vary in width
	rows, err := r.ReadAll()
	if err != nil || len(rows) == 0 {
		return nil
	}
	return rows
}

// columnIndices finds the named columns in a header row, defaulting to the
// first two columns when the header does not carry them.
func columnIndices(header []string, keyName, valName string) (int, int) {
	key, val := 0, 1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case keyName:
			key = i
		case valName:
			val = i
		}
	}
	return key, val
}
