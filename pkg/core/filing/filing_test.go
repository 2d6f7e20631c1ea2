package filing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"disclosure_index/pkg/core/taxonomy"
	"disclosure_index/pkg/core/units"
)

// testTable mirrors the confirmed K_41.00 datapoint resolution: dp471828 is
// the grand total on c0010, the four dpXXXXXX below are the fossil sectors
// observed in the sample.
func testTable() *taxonomy.Table {
	return taxonomy.Build(map[string]taxonomy.DatapointSource{
		"dp471828": {CellCode: "K 41.00, r0560, c0010"},
		"dp471326": {CellCode: "K 41.00, r0070, c0010", Dimensions: map[string]string{"eba_dim:NAC": "eba_NC:B5"}},
		"dp471332": {CellCode: "K 41.00, r0080, c0010", Dimensions: map[string]string{"eba_dim:NAC": "eba_NC:B6"}},
		"dp471410": {CellCode: "K 41.00, r0160, c0010", Dimensions: map[string]string{"eba_dim:NAC": "eba_NC:C19"}},
		"dp471566": {CellCode: "K 41.00, r0290, c0010", Dimensions: map[string]string{"eba_dim:NAC": "eba_NC:D35_2"}},
	}, taxonomy.DefaultLabels())
}

func testExtractor() *Extractor {
	return NewExtractor(testTable(), units.DefaultAnomalies())
}

func TestExtractIdentity(t *testing.T) {
	rec, err := testExtractor().Extract(Package{
		FolderName: "213800A1O379I6DMCU10.CON_MT_2025-06-30",
		Parameters: map[string]string{"refPeriod": "2025-06-30", "baseCurrency": "iso4217:EUR", "decimalsMonetary": "-6"},
		Facts:      map[string]float64{},
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.LEI != "213800A1O379I6DMCU10" {
		t.Errorf("Expected LEI 213800A1O379I6DMCU10, got %q", rec.LEI)
	}
	if rec.EntityType != "CON" || rec.Country != "MT" {
		t.Errorf("Expected CON/MT, got %q/%q", rec.EntityType, rec.Country)
	}
	if rec.BaseCurrency != "EUR" {
		t.Errorf("Expected iso4217 prefix stripped, got %q", rec.BaseCurrency)
	}
	if !rec.ParseOK {
		t.Error("Record with identity and parameters must be parse_ok")
	}
}

func TestExtractRejectsBadIdentity(t *testing.T) {
	_, err := testExtractor().Extract(Package{FolderName: "output"})
	if !errors.Is(err, ErrIdentity) {
		t.Fatalf("Expected ErrIdentity, got %v", err)
	}
}

func TestExtractCountryOptional(t *testing.T) {
	rec, err := testExtractor().Extract(Package{
		FolderName: "529900HEKOENJHPNN480.zip_extracted",
		Parameters: map[string]string{},
		Facts:      map[string]float64{},
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.Country != "" || rec.EntityType != "" {
		t.Errorf("Missing country pattern must leave fields empty, got %q/%q", rec.Country, rec.EntityType)
	}
}

func TestExtractParameterDefaults(t *testing.T) {
	rec, err := testExtractor().Extract(Package{
		FolderName: "529900HEKOENJHPNN480.CON_FI_2025-06-30",
		Parameters: map[string]string{"refPeriod": "2025-06-30"},
		Facts:      map[string]float64{},
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.Decimals != -6 {
		t.Errorf("Expected decimals default -6, got %d", rec.Decimals)
	}
	if rec.BaseCurrency != "EUR" {
		t.Errorf("Expected currency default EUR, got %q", rec.BaseCurrency)
	}
}

func TestExtractMissingParameters(t *testing.T) {
	rec, err := testExtractor().Extract(Package{
		FolderName: "529900HEKOENJHPNN480.CON_FI_2025-06-30",
	})
	if err != nil {
		t.Fatalf("Missing parameters must not raise: %v", err)
	}
	if rec.ParseOK {
		t.Error("Record without parameters must not be parse_ok")
	}
	if len(rec.ParseErrors) == 0 {
		t.Error("Missing parameters must be recorded in the error list")
	}
}

func TestExtractMissingFactTable(t *testing.T) {
	rec, err := testExtractor().Extract(Package{
		FolderName: "529900HEKOENJHPNN480.CON_FI_2025-06-30",
		Parameters: map[string]string{"refPeriod": "2025-06-30"},
	})
	if err != nil {
		t.Fatalf("Missing fact table must not raise: %v", err)
	}
	if rec.HasPrimaryData {
		t.Error("Record without fact table must have has_primary_data=false")
	}
	if !rec.ParseOK {
		t.Error("Missing fact table is not fatal to the record")
	}
	if rec.GrandTotalM != nil {
		t.Errorf("Grand total must stay absent, got %v", *rec.GrandTotalM)
	}
}

func TestExtractNormalizesFacts(t *testing.T) {
	rec, err := testExtractor().Extract(Package{
		FolderName: "213800A1O379I6DMCU10.CON_MT_2025-06-30",
		Parameters: map[string]string{"refPeriod": "2025-06-30", "decimalsMonetary": "-6"},
		Facts: map[string]float64{
			"dp471828": 1000000000, // grand total -> 1000M
			"dp471326": 50000000,   // B5 coal -> 50M
			"dp471410": -2000000,   // C19 negative artifact, kept raw here
		},
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.GrandTotalM == nil || *rec.GrandTotalM != 1000 {
		t.Fatalf("Expected grand total 1000M, got %v", rec.GrandTotalM)
	}
	if rec.FossilM["B5"] != 50 {
		t.Errorf("Expected B5 50M, got %v", rec.FossilM["B5"])
	}
	// Sign filtering belongs to the ratio calculator; extraction records
	// what the filing says.
	if rec.FossilM["C19"] != -2 {
		t.Errorf("Expected C19 -2M recorded, got %v", rec.FossilM["C19"])
	}
	if _, present := rec.FossilM["B6"]; present {
		t.Error("Absent fossil datapoint must not appear in the map")
	}
}

func TestExtractFlagsKnownAnomaly(t *testing.T) {
	rec, err := testExtractor().Extract(Package{
		FolderName: "K8MS7FD7N5Z2WQ51AZ71.CON_ES_2025-06-30",
		Parameters: map[string]string{"refPeriod": "2025-06-30", "decimalsMonetary": "-6"},
		Facts:      map[string]float64{"dp471828": 1e15},
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !rec.UnreliableAbsolute {
		t.Error("The known inflated filing must be flagged unreliable_absolute")
	}
	// Flag only, never correct: the reported magnitude stays as filed.
	if *rec.GrandTotalM != 1e9 {
		t.Errorf("Flagged values must not be auto-corrected, got %v", *rec.GrandTotalM)
	}
}

func TestExtractNarrative(t *testing.T) {
	rec, err := testExtractor().Extract(Package{
		FolderName: "213800A1O379I6DMCU10.CON_MT_2025-06-30",
		Parameters: map[string]string{},
		Narrative:  []string{"Climate strategy text.", "Coal phaseout by 2030."},
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.QualText != "Climate strategy text. | Coal phaseout by 2030." {
		t.Errorf("Unexpected joined narrative: %q", rec.QualText)
	}
	if rec.QualTextChars != len("Climate strategy text.")+len("Coal phaseout by 2030.") {
		t.Errorf("Unexpected narrative char count %d", rec.QualTextChars)
	}
}

func TestDirSource(t *testing.T) {
	root := t.TempDir()
	reports := filepath.Join(root, "213800A1O379I6DMCU10.CON_MT_2025-06-30", "reports")
	if err := os.MkdirAll(reports, 0755); err != nil {
		t.Fatal(err)
	}
	// Decoys: output folder and a non-LEI directory.
	os.MkdirAll(filepath.Join(root, "output"), 0755)
	os.MkdirAll(filepath.Join(root, "readme_files"), 0755)

	writeFile := func(name, content string) {
		if err := os.WriteFile(filepath.Join(reports, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	writeFile("parameters.csv", "parameter,value\nrefPeriod,2025-06-30\nbaseCurrency,iso4217:EUR\ndecimalsMonetary,-6\n")
	writeFile("k_41.00.csv", "datapoint,factValue\ndp471828,906142873\ndp471326,50000000\ndpXXXX,not-numeric\n")
	writeFile("k_00.03.csv", "datapoint,factValue\ndp900001,Narrative one\ndp900002,Narrative two\n")

	src := &DirSource{Root: root}
	pkgs, err := src.Packages()
	if err != nil {
		t.Fatalf("Packages failed: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("Expected 1 package (decoys skipped), got %d", len(pkgs))
	}

	p := pkgs[0]
	if p.Parameters["refPeriod"] != "2025-06-30" {
		t.Errorf("Unexpected refPeriod %q", p.Parameters["refPeriod"])
	}
	if p.Facts["dp471828"] != 906142873 {
		t.Errorf("Unexpected fact value %v", p.Facts["dp471828"])
	}
	if _, ok := p.Facts["dpXXXX"]; ok {
		t.Error("Non-numeric fact rows must be dropped")
	}
	if len(p.Narrative) != 2 || p.Narrative[0] != "Narrative one" {
		t.Errorf("Unexpected narrative %v", p.Narrative)
	}
}

func TestDirSourceMissingTables(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "529900HEKOENJHPNN480.CON_FI_2025-06-30", "reports"), 0755); err != nil {
		t.Fatal(err)
	}

	pkgs, err := (&DirSource{Root: root}).Packages()
	if err != nil {
		t.Fatalf("Packages failed: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("Expected 1 package, got %d", len(pkgs))
	}
	if pkgs[0].Parameters != nil || pkgs[0].Facts != nil {
		t.Error("Missing tables must surface as nil maps")
	}
}
