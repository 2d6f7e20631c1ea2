package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"disclosure_index/pkg/core/filing"
	"disclosure_index/pkg/core/fx"
	"disclosure_index/pkg/core/pipeline"
	"disclosure_index/pkg/core/report"
	"disclosure_index/pkg/core/scoring"
	"disclosure_index/pkg/core/store"
	"disclosure_index/pkg/core/taxonomy"
	"disclosure_index/pkg/core/units"
)

// resolveProviderName applies the flag > environment precedence. The flag
// default cannot read the environment itself: SCORING_PROVIDER may only
// exist in .env, which is loaded after flag parsing.
func resolveProviderName(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("SCORING_PROVIDER")
}

// buildProvider picks the scoring backend. The API key check happens here,
// up front, because a missing key is the one error worth dying over before
// any filing is touched.
func buildProvider(name string) (scoring.Provider, error) {
	switch name {
	case "claude", "":
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return &scoring.ClaudeProvider{}, nil
	case "gemini":
		if os.Getenv("GEMINI_API_KEY") == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		return &scoring.GeminiProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown scoring provider %q (want claude or gemini)", name)
	}
}

func loadTaxonomy(mappingPath, labelsPath string) (*taxonomy.Table, error) {
	source, err := taxonomy.LoadDatapointSource(mappingPath)
	if err != nil {
		return nil, err
	}

	labels := taxonomy.DefaultLabels()
	if labelsPath != "" {
		labels, err = taxonomy.LoadLabels(labelsPath)
		if err != nil {
			return nil, err
		}
	}
	return taxonomy.Build(source, labels), nil
}

func main() {
	root := flag.String("root", "filings", "directory of unpacked filing packages")
	mapping := flag.String("mapping", "taxonomy.json", "datapoint mapping file (k_41.00 cell codes and dimensions)")
	labels := flag.String("labels", "", "optional YAML override for sector and column labels")
	rates := flag.String("rates", "", "optional YAML override for the ECB rate snapshots")
	out := flag.String("out", "output", "report output directory")
	providerName := flag.String("provider", "", "scoring backend: claude or gemini (default $SCORING_PROVIDER, then claude)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	// Resolved after godotenv so a .env-only SCORING_PROVIDER is honored.
	provider, err := buildProvider(resolveProviderName(*providerName))
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	table, err := loadTaxonomy(*mapping, *labels)
	if err != nil {
		log.Fatalf("Error: failed to load datapoint mapping: %v", err)
	}
	fmt.Printf("Decoded %d datapoints (%d skipped without a recognizable cell code)\n",
		table.Len(), len(table.Skipped()))

	fxTable := fx.DefaultTable()
	if *rates != "" {
		fxTable, err = fx.LoadTable(*rates)
		if err != nil {
			log.Fatalf("Error: failed to load FX rate table: %v", err)
		}
	}

	ctx := context.Background()
	orch := pipeline.NewOrchestrator(
		&filing.DirSource{Root: *root},
		table,
		units.DefaultAnomalies(),
		fxTable,
		scoring.NewScorer(provider, scoring.DefaultCallDelay),
	)

	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			log.Fatalf("Error: failed to connect to database: %v", err)
		}
		defer store.Close()
		orch.SetRepository(store.NewRunsRepo())
	}

	run, err := orch.Run(ctx)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	if err := report.Write(run, *out); err != nil {
		log.Fatalf("Error: %v", err)
	}
	fmt.Printf("Report written to %s/ranking.md\n", *out)
}
