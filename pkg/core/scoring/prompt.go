package scoring

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// maxNarrativeChars caps how much narrative goes into the prompt. The
// rubric only needs the substance, and some banks file book-length text.
const maxNarrativeChars = 3000

// CleanNarrative strips escaped XHTML markup from a narrative fact blob.
// XBRL narrative facts frequently carry their formatting as embedded
// markup; the model should score the prose, not the tags. Text that fails
// to parse as HTML is returned as-is.
func CleanNarrative(text string) string {
	if !strings.Contains(text, "<") {
		return strings.TrimSpace(text)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return strings.TrimSpace(text)
	}
	cleaned := strings.Join(strings.Fields(doc.Text()), " ")
	return strings.TrimSpace(cleaned)
}

// buildPrompt assembles the five-dimension scoring rubric for one entity.
// The quantitative exposure is included as context so the model can judge
// the consistency dimension against the filed numbers.
func buildPrompt(lei, entityName, narrative string, quantScorePct *float64) string {
	qs := "not available"
	if quantScorePct != nil {
		qs = fmt.Sprintf("%.2f%%", *quantScorePct)
	}

	text := CleanNarrative(narrative)
	if len(text) > maxNarrativeChars {
		// Back up to a rune boundary so multi-byte text never gets cut
		// mid-sequence.
		cut := maxNarrativeChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	return fmt.Sprintf(`You are an expert analyst evaluating the quality of ESG climate disclosure
in European bank regulatory filings. Your task is to score the following qualitative
disclosure text from a bank's EBA Pillar III XBRL submission (Template k_00.03).

BANK: %s (LEI: %s)
QUANTITATIVE FOSSIL FUEL EXPOSURE (from Template K_41.00): %s of total loan portfolio
(This covers NACE sectors: coal mining, oil/gas extraction, petroleum refining, gas distribution)

QUALITATIVE DISCLOSURE TEXT:
---
%s
---

Score this text on EXACTLY these five dimensions. Each dimension is scored 0, 1, or 2.

SCORING RUBRIC:

1. SPECIFICITY (0-2)
   0 = only vague statements ("we consider climate risks"), no numbers or named sectors
   1 = some concrete elements (mentions fossil fuels by name OR gives one percentage)
   2 = clearly specific (names multiple fossil sectors AND provides percentages or thresholds)

2. COMPLETENESS (0-2)
   0 = does not address fossil fuel exposure at all
   1 = addresses fossil fuels partially (e.g. only mentions one sector like coal)
   2 = addresses all major fossil fuel categories (coal, oil/gas, petroleum/refining, gas)

3. FORWARD_LOOKING (0-2)
   0 = no transition plans, timelines, or net-zero commitments
   1 = mentions transition or net-zero goals vaguely, without specific timelines
   2 = concrete transition plan with specific dates, targets, or phaseout commitments

4. CONSISTENCY (0-2)
   0 = narrative contradicts the quantitative data (e.g. claims zero fossil exposure
       when the exposure share is above 1%%, or claims high exposure when it is near zero)
   1 = narrative is neutral or non-committal relative to the quantitative data
   2 = narrative explicitly acknowledges and explains the quantitative fossil exposure

5. COMPARABILITY (0-2)
   0 = text is so generic that it could apply to any bank
   1 = some bank-specific content but lacks structure for peer comparison
   2 = structured and specific enough that an analyst could use it to compare
       this bank's fossil approach against peers

IMPORTANT: Return ONLY a valid JSON object with this exact structure, no preamble:
{
  "specificity": <0, 1, or 2>,
  "completeness": <0, 1, or 2>,
  "forward_looking": <0, 1, or 2>,
  "consistency": <0, 1, or 2>,
  "comparability": <0, 1, or 2>,
  "rationale": "<one sentence explaining the overall assessment>"
}`, entityName, lei, qs, text)
}
