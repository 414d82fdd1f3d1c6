// Package analysis defines the AI analysis contract used by the calculators
// and the clients that fulfil it.
//
// A Request carries a system and a user prompt; an Analysis is the structured
// verdict returned for it. Analyzers are either a remote endpoint speaking the
// same contract, an OpenAI-compatible chat model, or a fallback that explains
// no provider is configured. Any of them can be wrapped in a cache.
package analysis

import (
	"context"
	"errors"
	"strings"
)

// Insight types.
const (
	InsightPositive = "positive"
	InsightWarning  = "warning"
	InsightNegative = "negative"
	InsightInfo     = "info"
)

// ErrInvalidResponse is returned when a provider's reply does not match the
// analysis contract.
var ErrInvalidResponse = errors.New("invalid analysis response")

// ErrEmptyPrompt is returned for a request without a user prompt.
var ErrEmptyPrompt = errors.New("userPrompt is required")

// Request is the body of an analysis request.
type Request struct {
	SystemPrompt string `json:"systemPrompt"`
	UserPrompt   string `json:"userPrompt"`
}

// Validate checks that the request can be sent.
func (r Request) Validate() error {
	if strings.TrimSpace(r.UserPrompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// Insight is one observation within an analysis.
type Insight struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Analysis is the qualitative verdict on a set of calculator results.
type Analysis struct {
	Summary         string    `json:"summary"`
	Verdict         string    `json:"verdict"`
	Insights        []Insight `json:"insights"`
	Recommendations []string  `json:"recommendations"`
	MarketContext   string    `json:"marketContext"`
}

// Analyzer produces an analysis for a request.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Analysis, error)
}

// normalize fills empty collections so responses always carry arrays.
func (a *Analysis) normalize() {
	if a.Insights == nil {
		a.Insights = []Insight{}
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
}
