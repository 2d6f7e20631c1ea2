package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"disclosure_index/pkg/core/exposure"
	"disclosure_index/pkg/core/filing"
	"disclosure_index/pkg/core/fx"
	"disclosure_index/pkg/core/scoring"
	"disclosure_index/pkg/core/taxonomy"
	"disclosure_index/pkg/core/units"
)

// memSource yields a fixed set of packages.
type memSource struct{ pkgs []filing.Package }

func (s *memSource) Packages() ([]filing.Package, error) { return s.pkgs, nil }

// scriptedProvider returns a fixed good response for every call.
type scriptedProvider struct{ calls int }

func (p *scriptedProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	p.calls++
	return `{"specificity": 2, "completeness": 2, "forward_looking": 1, "consistency": 1, "comparability": 1, "rationale": "fixture"}`, nil
}

func testTable() *taxonomy.Table {
	return taxonomy.Build(map[string]taxonomy.DatapointSource{
		"dp471828": {CellCode: "K 41.00, r0560, c0010"},
		"dp471326": {CellCode: "K 41.00, r0070, c0010", Dimensions: map[string]string{"eba_dim:NAC": "eba_NC:B5"}},
		"dp471332": {CellCode: "K 41.00, r0080, c0010", Dimensions: map[string]string{"eba_dim:NAC": "eba_NC:B6"}},
	}, taxonomy.DefaultLabels())
}

func longNarrative(topic string) []string {
	return []string{strings.Repeat(topic+" disclosure narrative. ", 10)}
}

func newTestOrchestrator(pkgs []filing.Package, provider scoring.Provider) *Orchestrator {
	return NewOrchestrator(
		&memSource{pkgs: pkgs},
		testTable(),
		units.DefaultAnomalies(),
		fx.DefaultTable(),
		scoring.NewScorer(provider, time.Millisecond),
	)
}

// End-to-end scenarios: entity A has full data, entity B filed no fossil
// datapoints, entity C is missing its grand total, and one folder has no
// parseable identity.
func TestRunEndToEnd(t *testing.T) {
	pkgs := []filing.Package{
		{
			FolderName: "213800A1O379I6DMCU10.CON_MT_2025-06-30",
			Parameters: map[string]string{"refPeriod": "2025-06-30", "baseCurrency": "iso4217:EUR", "decimalsMonetary": "-6"},
			Facts:      map[string]float64{"dp471828": 1000000000, "dp471326": 50000000},
			Narrative:  longNarrative("coal"),
		},
		{
			FolderName: "529900HEKOENJHPNN480.CON_FI_2025-06-30",
			Parameters: map[string]string{"refPeriod": "2025-06-30", "baseCurrency": "iso4217:EUR", "decimalsMonetary": "-3"},
			Facts:      map[string]float64{"dp471828": 500000000},
			Narrative:  longNarrative("transition"),
		},
		{
			FolderName: "7LVZJ6XRIE7VNZ4UBX81.CON_IT_2025-06-30",
			Parameters: map[string]string{"refPeriod": "2025-06-30", "baseCurrency": "iso4217:EUR", "decimalsMonetary": "-6"},
			Facts:      map[string]float64{"dp471326": 10000000},
			Narrative:  longNarrative("strategy"),
		},
		{FolderName: "not-a-filing"},
	}

	run, err := newTestOrchestrator(pkgs, &scriptedProvider{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(run.Discarded) != 1 || run.Discarded[0] != "not-a-filing" {
		t.Errorf("Expected one discarded package, got %v", run.Discarded)
	}
	if len(run.Records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(run.Records))
	}
	if len(run.Mapping) != 3 {
		t.Errorf("Expected the mapping table in the run output, got %d entries", len(run.Mapping))
	}

	byLEI := make(map[string]fx.Converted)
	for _, e := range run.Exposures {
		byLEI[e.LEI] = e
	}

	// Entity A: 1000M total, 50M fossil, ratio 0.05, full coverage.
	a := byLEI["213800A1O379I6DMCU10"]
	if a.Coverage != exposure.CoverageFull {
		t.Errorf("A: expected full, got %s", a.Coverage)
	}
	if *a.GrandTotalM != 1000 || *a.FossilTotalM != 50 {
		t.Errorf("A: expected 1000/50, got %v/%v", *a.GrandTotalM, *a.FossilTotalM)
	}
	if *a.Ratio != 0.05 {
		t.Errorf("A: expected ratio 0.05, got %v", *a.Ratio)
	}

	// Entity B: raw 500,000,000 at decimals=-3 still normalizes to 500M
	// (canonical millions = raw/1e6 regardless of exponent); no fossil
	// datapoints filed means zero_fossil, not missing data.
	b := byLEI["529900HEKOENJHPNN480"]
	if b.Coverage != exposure.CoverageZeroFossil {
		t.Errorf("B: expected zero_fossil, got %s", b.Coverage)
	}
	if *b.GrandTotalM != 500 {
		t.Errorf("B: expected 500M, got %v", *b.GrandTotalM)
	}
	if *b.Ratio != 0 {
		t.Errorf("B: expected ratio 0, got %v", *b.Ratio)
	}

	// Entity C: no grand total, so no ratio; stays in output with status.
	c := byLEI["7LVZJ6XRIE7VNZ4UBX81"]
	if c.Coverage != exposure.CoverageNoData {
		t.Errorf("C: expected no_data, got %s", c.Coverage)
	}
	if c.Ratio != nil {
		t.Errorf("C: ratio must be absent, got %v", *c.Ratio)
	}

	// All three have qualifying narrative, so all three are scored; C is
	// excluded from the composite for lacking a ratio.
	if len(run.Scores) != 3 {
		t.Errorf("Expected 3 scored entities, got %d", len(run.Scores))
	}
	if len(run.Composite) != 2 {
		t.Errorf("Expected 2 composite entries, got %d", len(run.Composite))
	}
	for _, e := range run.Composite {
		if e.LEI == "7LVZJ6XRIE7VNZ4UBX81" {
			t.Error("no_data entity must not reach the composite")
		}
	}

	// Entity A is the sample maximum, so its normalized exposure is 1.0.
	for _, e := range run.Composite {
		if e.LEI == "213800A1O379I6DMCU10" && e.QuantScoreNormalized != 1.0 {
			t.Errorf("Max-ratio entity must anchor 1.0, got %v", e.QuantScoreNormalized)
		}
	}
}

func TestRunSkipsShortNarratives(t *testing.T) {
	pkgs := []filing.Package{
		{
			FolderName: "213800A1O379I6DMCU10.CON_MT_2025-06-30",
			Parameters: map[string]string{"refPeriod": "2025-06-30", "decimalsMonetary": "-6"},
			Facts:      map[string]float64{"dp471828": 1000000000},
			Narrative:  []string{"n/a"}, // placeholder, below threshold
		},
	}

	p := &scriptedProvider{}
	run, err := newTestOrchestrator(pkgs, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if p.calls != 0 {
		t.Errorf("Placeholder narratives must not be sent for scoring, got %d calls", p.calls)
	}
	if len(run.Scores) != 0 {
		t.Errorf("Expected no scores, got %d", len(run.Scores))
	}
	// The entity still has its exposure row.
	if len(run.Exposures) != 1 {
		t.Errorf("Expected exposure row regardless of scoring, got %d", len(run.Exposures))
	}
}

func TestRunDeduplicatesScoringByLEI(t *testing.T) {
	// Same LEI filed twice; only the filing with more text is scored.
	pkgs := []filing.Package{
		{
			FolderName: "K8MS7FD7N5Z2WQ51AZ71.CON_ES_2025-06-30",
			Parameters: map[string]string{"refPeriod": "2025-06-30", "decimalsMonetary": "-6"},
			Facts:      map[string]float64{"dp471828": 1000000000},
			Narrative:  longNarrative("short"),
		},
		{
			FolderName: "K8MS7FD7N5Z2WQ51AZ71.CON_ES_2025-06-30_resub",
			Parameters: map[string]string{"refPeriod": "2025-06-30", "decimalsMonetary": "-6"},
			Facts:      map[string]float64{"dp471828": 1000000000},
			Narrative:  longNarrative("a much longer resubmitted climate"),
		},
	}

	p := &scriptedProvider{}
	run, err := newTestOrchestrator(pkgs, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if p.calls != 1 {
		t.Errorf("Duplicate LEI must be scored once, got %d calls", p.calls)
	}
	if len(run.Records) != 2 {
		t.Errorf("Both filings stay in the record table, got %d", len(run.Records))
	}
}
