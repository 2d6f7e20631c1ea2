package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"disclosure_index/pkg/core/pipeline"
)

// RunsRepo persists finished pipeline runs. Each run lands as one JSONB
// blob keyed by run ID, and the composite ranking is additionally flattened
// into a per-entity table for querying without unpacking the blob.
type RunsRepo struct{}

// NewRunsRepo creates a new repository instance.
func NewRunsRepo() *RunsRepo {
	return &RunsRepo{}
}

// SaveRun persists the full run output, then upserts the per-entity
// composite rows. It satisfies pipeline.Repository.
//
// Schema assumption (managed elsewhere, e.g. migrations):
//
//	CREATE TABLE IF NOT EXISTS disclosure_runs (
//	  run_id TEXT PRIMARY KEY,
//	  started_at TIMESTAMPTZ,
//	  finished_at TIMESTAMPTZ,
//	  run_json JSONB,
//	  created_at TIMESTAMPTZ
//	);
//	CREATE TABLE IF NOT EXISTS disclosure_composite (
//	  lei TEXT NOT NULL,
//	  run_id TEXT NOT NULL REFERENCES disclosure_runs(run_id),
//	  entity_name TEXT,
//	  country TEXT,
//	  das_normalized DOUBLE PRECISION,
//	  quant_score_normalized DOUBLE PRECISION,
//	  dci DOUBLE PRECISION,
//	  verdict TEXT,
//	  PRIMARY KEY (lei, run_id)
//	);
func (r *RunsRepo) SaveRun(ctx context.Context, run *pipeline.RunResult) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	query := `
		INSERT INTO disclosure_runs (run_id, started_at, finished_at, run_json, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id)
		DO UPDATE SET
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at,
			run_json = EXCLUDED.run_json;
	`
	if _, err := pool.Exec(ctx, query, run.RunID, run.StartedAt, run.FinishedAt, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	entityQuery := `
		INSERT INTO disclosure_composite (lei, run_id, entity_name, country, das_normalized, quant_score_normalized, dci, verdict)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (lei, run_id)
		DO UPDATE SET
			entity_name = EXCLUDED.entity_name,
			country = EXCLUDED.country,
			das_normalized = EXCLUDED.das_normalized,
			quant_score_normalized = EXCLUDED.quant_score_normalized,
			dci = EXCLUDED.dci,
			verdict = EXCLUDED.verdict;
	`
	for _, e := range run.Composite {
		_, err := pool.Exec(ctx, entityQuery,
			e.LEI, run.RunID, e.EntityName, e.Country,
			e.DASNormalized, e.QuantScoreNormalized, e.DCI, e.Verdict)
		if err != nil {
			return fmt.Errorf("failed to save composite row for %s: %w", e.LEI, err)
		}
	}

	return nil
}

// LoadRun retrieves a persisted run by ID.
func (r *RunsRepo) LoadRun(ctx context.Context, runID string) (*pipeline.RunResult, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT run_json FROM disclosure_runs WHERE run_id = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, runID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no run found for id %s", runID)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var run pipeline.RunResult
	if err := json.Unmarshal(jsonData, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run data: %w", err)
	}

	return &run, nil
}
