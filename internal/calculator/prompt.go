package calculator

import (
	"fmt"
	"strings"

	"github.com/iwvelando/property-finance/internal/analysis"
)

const analysisSystemPrompt = `You are an experienced UK property investment analyst. You review calculator results for investors and give a frank, practical assessment.
Respond with a single JSON object and nothing else, using exactly this shape:
{"summary": string, "verdict": string, "insights": [{"type": "positive"|"warning"|"negative"|"info", "title": string, "message": string}], "recommendations": [string], "marketContext": string}
The verdict is one short phrase such as "strong deal", "proceed with caution" or "avoid".`

// AnalysisRequest builds the prompts asking for a qualitative review of a
// calculator's results.
func AnalysisRequest(calc Calculator, result Result) analysis.Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyse these %s results.\n", calc.Title())
	if calc.Description() != "" {
		fmt.Fprintf(&b, "Calculator: %s\n", calc.Description())
	}
	b.WriteString("\nResults:\n")
	for _, field := range result.Fields() {
		fmt.Fprintf(&b, "- %s: %s\n", field.Label, field.Display())
	}
	b.WriteString("\nHighlight the main risks and opportunities and what the investor should check next.")

	return analysis.Request{
		SystemPrompt: analysisSystemPrompt,
		UserPrompt:   b.String(),
	}
}
