// Package output renders calculator results for the terminal or for other
// programs.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/property-finance/internal/analysis"
	"github.com/iwvelando/property-finance/internal/calculator"
	"github.com/iwvelando/property-finance/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report is one calculator run ready for output.
type Report struct {
	Calculator string             `json:"calculator"`
	Title      string             `json:"title"`
	Fields     []calculator.Field `json:"fields"`
	Metrics    map[string]float64 `json:"metrics"`
	Analysis   *analysis.Analysis `json:"analysis,omitempty"`
}

// NewReport collects the output of a calculator run.
func NewReport(calc calculator.Calculator, result calculator.Result, a *analysis.Analysis) Report {
	return Report{
		Calculator: calc.Name(),
		Title:      calc.Title(),
		Fields:     result.Fields(),
		Metrics:    calculator.Values(result),
		Analysis:   a,
	}
}

// Write renders the report in the named format.
func Write(w io.Writer, format string, report Report) error {
	switch format {
	case constants.OutputFormatCSV:
		return CsvFormat(w, report)
	case constants.OutputFormatJSON:
		return JSONFormat(w, report)
	default:
		return PrettyFormat(w, report)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, report Report) error {
	p := message.NewPrinter(language.BritishEnglish)

	width := 0
	for _, field := range report.Fields {
		width = max(width, len(field.Label))
	}

	if _, err := fmt.Fprintf(w, "--- %s ---\n", report.Title); err != nil {
		return err
	}
	for _, field := range report.Fields {
		if _, err := fmt.Fprintf(w, "%-*s | %s\n", width, field.Label, display(p, field)); err != nil {
			return err
		}
	}
	if report.Analysis != nil {
		return prettyAnalysis(w, report.Analysis)
	}
	return nil
}

// display renders money with the locale printer and everything else as the
// field describes itself.
func display(p *message.Printer, field calculator.Field) string {
	if field.Unit != calculator.UnitCurrency {
		return field.Display()
	}
	if field.Value < 0 {
		return p.Sprintf("-£%.2f", -field.Value)
	}
	return p.Sprintf("£%.2f", field.Value)
}

func prettyAnalysis(w io.Writer, a *analysis.Analysis) error {
	lines := []string{"", "--- Analysis ---", "Verdict: " + a.Verdict, a.Summary}
	for _, insight := range a.Insights {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", insight.Type, insight.Title, insight.Message))
	}
	for _, rec := range a.Recommendations {
		lines = append(lines, "- "+rec)
	}
	if a.MarketContext != "" {
		lines = append(lines, "Market: "+a.MarketContext)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// CsvFormat outputs one row per metric in comma-separated value format.
func CsvFormat(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"key", "label", "value", "unit", "display"}); err != nil {
		return err
	}
	for _, field := range report.Fields {
		row := []string{
			field.Key,
			field.Label,
			strconv.FormatFloat(field.Value, 'f', 2, 64),
			string(field.Unit),
			field.Display(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the report as indented JSON.
func JSONFormat(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
