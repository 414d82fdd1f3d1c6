package analysis

import "context"

// VerdictUnavailable is the verdict given when no provider is configured.
const VerdictUnavailable = "unavailable"

// FallbackAnalyzer answers every request with a fixed explanation that AI
// analysis is switched off, so callers always get a well-formed analysis.
type FallbackAnalyzer struct{}

// Analyze implements Analyzer.
func (FallbackAnalyzer) Analyze(_ context.Context, req Request) (*Analysis, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &Analysis{
		Summary: "AI analysis is not configured. The calculated figures are shown without a qualitative review.",
		Verdict: VerdictUnavailable,
		Insights: []Insight{{
			Type:    InsightInfo,
			Title:   "Analysis unavailable",
			Message: "Configure an analysis endpoint or an OpenAI-compatible provider to receive a verdict on these results.",
		}},
		Recommendations: []string{
			"Check the inputs against current lender and tax criteria before relying on the figures.",
		},
		MarketContext: "",
	}, nil
}
