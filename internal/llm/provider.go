package llm

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/bodycomp/internal/classify"
	"github.com/ppiankov/bodycomp/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize writes a plain-language narrative for an evaluation
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for a narrative
type SummarizeRequest struct {
	// Report is the finished evaluation; the narrative may only restate it
	Report model.Report

	// Prompt overrides BuildPrompt when set
	Prompt string

	Model     string
	MaxTokens int
}

// SummarizeResponse contains the provider output
type SummarizeResponse struct {
	Summary    string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", "" (disabled)
	Provider string
	Model    string
	APIKey   string

	// BaseURL for custom endpoints (OpenAI-compatible gateways, remote Ollama)
	BaseURL string

	Timeout   int // seconds
	MaxTokens int

	// Language the narrative is written in, e.g. "pt-BR"
	Language string

	// StrictNumbers rejects narratives quoting percentages or ratios that
	// are not in the report
	StrictNumbers bool

	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:       30,
		MaxTokens:     600,
		Language:      "pt-BR",
		StrictNumbers: true,
	}
}

const systemPrompt = "You explain anthropometric evaluation results to the person who was measured. " +
	"You never change, recompute or round differently any number you are given, and you never diagnose."

// BuildPrompt lays out the computed results. Only the report's own values
// are included, so identical evaluations produce identical prompts.
func BuildPrompt(report model.Report, language string) string {
	if language == "" {
		language = "pt-BR"
	}
	res := report.Result

	var b strings.Builder
	fmt.Fprintf(&b, `Write a short summary (3-5 sentences, language: %s) of the body composition evaluation below.

RULES:
1. Use ONLY the values listed here. Do not compute new numbers.
2. Quote numbers exactly as written (same decimals).
3. Do not give a medical diagnosis or prescribe treatment; suggest seeing a professional when a risk is flagged.
4. If a value is missing or a calculation failed, say so plainly.

Evaluation:
- Age: %d
- Sex: %s
`, language, res.Age, res.Sex)

	if sf := res.Skinfold; sf != nil {
		if sf.Failed() {
			fmt.Fprintf(&b, "- Skinfold protocol %s failed: %s\n", report.Protocol, sf.Error.Message)
		} else {
			fmt.Fprintf(&b, "- Protocol: %s\n", sf.Name)
			fmt.Fprintf(&b, "- Body fat: %s%%\n", Fixed(sf.BodyFat, 2))
			fmt.Fprintf(&b, "- Body density: %s g/mL\n", Fixed(sf.Density, 4))
			if report.Classification != nil {
				fmt.Fprintf(&b, "- Body fat classification: %s\n", report.Classification.Label())
			}
		}
	}

	for _, ix := range res.Indices {
		if ix.HasValue() {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", ix.Name, Fixed(*ix.Value, 2), ix.Status)
		} else {
			fmt.Fprintf(&b, "- %s: %s\n", ix.Name, ix.Status)
		}
	}

	b.WriteString("\nProvide the summary only, no headings.")
	return b.String()
}

// Fixed formats v the way results are displayed.
func Fixed(v float64, decimals int) string {
	return strconv.FormatFloat(classify.Round(v, decimals), 'f', decimals, 64)
}

var decimalPattern = regexp.MustCompile(`\d+[.,]\d+`)

// extractDecimals returns every decimal number in text, accepting either
// decimal separator.
func extractDecimals(text string) []float64 {
	matches := decimalPattern.FindAllString(text, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
		if err == nil {
			out = append(out, v)
		}
	}
	return out
}

// allowedNumbers lists the values a narrative may quote.
func allowedNumbers(report model.Report) []float64 {
	var out []float64
	if sf := report.Result.Skinfold; sf != nil && !sf.Failed() {
		out = append(out, classify.Round(sf.BodyFat, 2), classify.Round(sf.Density, 4), sf.Sum)
	}
	for _, ix := range report.Result.Indices {
		if ix.HasValue() {
			out = append(out, classify.Round(*ix.Value, 2))
		}
		if ix.Threshold > 0 {
			out = append(out, ix.Threshold)
		}
	}
	in := report.Input
	out = append(out, in.StatureCm, in.StatureCm/100, in.MassKg, in.WaistCm, in.HipCm)
	return append(out, referenceCutoffs...)
}

// referenceCutoffs are published thresholds a narrative may cite
var referenceCutoffs = []float64{18.5, 0.5, 0.6, 0.85, 0.95}

// VerifyNumbers returns the first decimal in summary that does not match a
// value from the report, or "" when every quoted number is known.
func VerifyNumbers(summary string, report model.Report) string {
	allowed := allowedNumbers(report)
	for _, v := range extractDecimals(summary) {
		if !containsNumber(allowed, v) {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// containsNumber accepts an exact match or the value rounded to one decimal.
func containsNumber(list []float64, v float64) bool {
	for _, a := range list {
		if math.Abs(a-v) < 0.0005 || math.Abs(classify.Round(a, 1)-v) < 0.0005 {
			return true
		}
	}
	return false
}
