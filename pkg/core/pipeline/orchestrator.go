// Package pipeline wires the six stages end to end: taxonomy decode,
// filing extraction, exposure computation, FX reconciliation, qualitative
// scoring, and the composite merge. Each entity is processed independently;
// a broken filing or a failed scoring call marks its own row and the batch
// carries on.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"disclosure_index/pkg/core/composite"
	"disclosure_index/pkg/core/exposure"
	"disclosure_index/pkg/core/filing"
	"disclosure_index/pkg/core/fx"
	"disclosure_index/pkg/core/scoring"
	"disclosure_index/pkg/core/taxonomy"
	"disclosure_index/pkg/core/units"
)

// Repository persists a finished run's output tables. Implementations live
// in the store package; injecting the interface keeps the orchestrator
// testable without a database.
type Repository interface {
	SaveRun(ctx context.Context, run *RunResult) error
}

// RunResult carries every per-stage output table of one batch run, so
// callers can audit excluded entities instead of re-deriving them.
type RunResult struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Mapping   []taxonomy.Entry  `json:"mapping"`
	Records   []*filing.Record  `json:"records"`
	Exposures []fx.Converted    `json:"exposures"`
	Scores    []scoring.Score   `json:"scores"`
	Composite []composite.Entry `json:"composite"`

	// Discarded lists package folder names whose identity could not be
	// parsed. They never become records.
	Discarded []string `json:"discarded,omitempty"`
}

// Orchestrator runs the full pipeline over one filing source.
type Orchestrator struct {
	source    filing.Source
	table     *taxonomy.Table
	extractor *filing.Extractor
	fxTable   fx.Table
	scorer    *scoring.Scorer
	repo      Repository
}

// NewOrchestrator assembles the pipeline from its reference tables and the
// scoring provider. Persistence is optional; see SetRepository.
func NewOrchestrator(source filing.Source, table *taxonomy.Table, anomalies units.AnomalyList, fxTable fx.Table, scorer *scoring.Scorer) *Orchestrator {
	return &Orchestrator{
		source:    source,
		table:     table,
		extractor: filing.NewExtractor(table, anomalies),
		fxTable:   fxTable,
		scorer:    scorer,
	}
}

// SetRepository injects a persistence backend.
func (o *Orchestrator) SetRepository(repo Repository) { o.repo = repo }

// Run executes the batch. The only fatal conditions are an unreadable
// filing source and a cancelled context; entity-level trouble ends up in
// the per-stage tables.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	run := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Mapping:   o.table.Entries(),
	}

	pkgs, err := o.source.Packages()
	if err != nil {
		return nil, fmt.Errorf("filing source failed: %w", err)
	}
	fmt.Printf("Pipeline run %s: %d filing packages\n", run.RunID, len(pkgs))

	// Stage 3: extraction. Identity failures discard the package.
	for _, pkg := range pkgs {
		rec, err := o.extractor.Extract(pkg)
		if err != nil {
			if errors.Is(err, filing.ErrIdentity) {
				run.Discarded = append(run.Discarded, pkg.FolderName)
				continue
			}
			return nil, err
		}
		run.Records = append(run.Records, rec)
	}

	// Stages 4 + 5: exposure ratio, then FX reconciliation.
	for _, rec := range run.Records {
		res := exposure.Compute(rec)
		run.Exposures = append(run.Exposures, o.fxTable.Convert(res))
	}

	// Stage 6 input: qualitative scoring over entities with real text.
	candidates := o.selectCandidates(run)
	fmt.Printf("Scoring %d entities with qualifying narrative text\n", len(candidates))
	run.Scores, err = o.scorer.ScoreAll(ctx, candidates)
	if err != nil {
		return nil, err
	}

	run.Composite = composite.Merge(run.Scores, run.Exposures)
	run.FinishedAt = time.Now()

	if o.repo != nil {
		if err := o.repo.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to persist run: %w", err)
		}
	}

	fmt.Printf("Run %s complete: %d records, %d scored, %d in composite\n",
		run.RunID, len(run.Records), len(run.Scores), len(run.Composite))
	return run, nil
}

// selectCandidates picks the entities worth sending to the scoring
// service: qualifying narrative length, deduplicated by LEI keeping the
// filing with the most text (some groups file twice). Exposure context is
// attached when the entity has a ratio.
func (o *Orchestrator) selectCandidates(run *RunResult) []scoring.Candidate {
	pctByLEI := make(map[string]*float64, len(run.Exposures))
	for _, e := range run.Exposures {
		if _, seen := pctByLEI[e.LEI]; !seen {
			pctByLEI[e.LEI] = e.RatioPct
		}
	}

	best := make(map[string]*filing.Record)
	for _, rec := range run.Records {
		if rec.QualTextChars <= scoring.MinTextChars {
			continue
		}
		if cur, ok := best[rec.LEI]; !ok || rec.QualTextChars > cur.QualTextChars {
			best[rec.LEI] = rec
		}
	}

	leis := make([]string, 0, len(best))
	for lei := range best {
		leis = append(leis, lei)
	}
	sort.Strings(leis)

	candidates := make([]scoring.Candidate, 0, len(leis))
	for _, lei := range leis {
		rec := best[lei]
		candidates = append(candidates, scoring.Candidate{
			LEI:           lei,
			EntityName:    scoring.EntityName(lei),
			Narrative:     rec.QualText,
			QuantScorePct: pctByLEI[lei],
		})
	}
	return candidates
}
