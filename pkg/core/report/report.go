// Package report renders a pipeline run into a Markdown ranking report and
// an HTML variant for sharing outside the terminal.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"disclosure_index/pkg/core/exposure"
	"disclosure_index/pkg/core/pipeline"
)

func fmtPtr(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.4f", *v)
}

func fmtPct(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// Generate builds the Markdown report for one run.
func Generate(run *pipeline.RunResult) string {
	var b strings.Builder

	b.WriteString("# Disclosure Consistency Ranking\n\n")
	fmt.Fprintf(&b, "Run `%s` — %s\n\n", run.RunID, run.FinishedAt.Format("2006-01-02 15:04 MST"))

	full, zero, noData := 0, 0, 0
	flagged := []string{}
	for _, e := range run.Exposures {
		switch e.Coverage {
		case exposure.CoverageFull:
			full++
		case exposure.CoverageZeroFossil:
			zero++
		case exposure.CoverageNoData:
			noData++
		}
		if e.UnreliableAbsolute {
			flagged = append(flagged, e.LEI)
		}
	}

	b.WriteString("## Coverage\n\n")
	fmt.Fprintf(&b, "- %d filing packages extracted (%d discarded for unparseable identity)\n", len(run.Records), len(run.Discarded))
	fmt.Fprintf(&b, "- Fossil exposure: %d full, %d zero-fossil, %d without usable totals\n", full, zero, noData)
	fmt.Fprintf(&b, "- %d entities scored on narrative quality, %d ranked\n\n", len(run.Scores), len(run.Composite))

	if len(flagged) > 0 {
		b.WriteString("## Data quality flags\n\n")
		b.WriteString("Absolute amounts for the following entities look off by orders of magnitude and are reported as filed:\n\n")
		for _, lei := range flagged {
			fmt.Fprintf(&b, "- `%s`\n", lei)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Ranking\n\n")
	b.WriteString("Entities sorted by DCI descending. Positive DCI means the narrative outruns the balance sheet; negative means the filing underplays what the numbers show.\n\n")
	b.WriteString("| # | Entity | Country | Narrative | Exposure | DCI | Verdict |\n")
	b.WriteString("|---|--------|---------|-----------|----------|-----|--------|\n")
	for i, e := range run.Composite {
		fmt.Fprintf(&b, "| %d | %s | %s | %.4f | %.4f | %+.4f | %s |\n",
			i+1, e.EntityName, e.Country, e.DASNormalized, e.QuantScoreNormalized, e.DCI, e.Verdict)
	}
	b.WriteString("\n")

	b.WriteString("## Exposure detail\n\n")
	b.WriteString("| LEI | Country | Coverage | Total (EUR M) | Fossil (EUR M) | Ratio | FX source |\n")
	b.WriteString("|-----|---------|----------|---------------|----------------|-------|----------|\n")
	for _, e := range run.Exposures {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			e.LEI, e.Country, e.Coverage,
			fmtPtr(e.GrandTotalEURM), fmtPtr(e.FossilTotalEURM), fmtPct(e.RatioPct), e.FXSource)
	}
	b.WriteString("\n")

	return b.String()
}

// RenderHTML converts the Markdown report to HTML.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

// Write emits both report variants into dir as ranking.md and ranking.html.
func Write(run *pipeline.RunResult, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}

	md := Generate(run)
	if err := os.WriteFile(filepath.Join(dir, "ranking.md"), []byte(md), 0o644); err != nil {
		return fmt.Errorf("failed to write markdown report: %w", err)
	}

	html, err := RenderHTML(md)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "ranking.html"), []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write html report: %w", err)
	}
	return nil
}
