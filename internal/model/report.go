package model

import (
	"time"

	"github.com/google/uuid"
)

// Report represents one complete evaluation as rendered and exported
type Report struct {
	ID          uuid.UUID      `json:"id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Protocol    Protocol       `json:"protocol"`
	Input       MeasurementSet `json:"input"` // Raw inputs, needed by the exporter

	Result EvaluationResult `json:"result"`

	// Classification of the displayed (2-decimal) body-fat percentage.
	// Nil when the skinfold protocol failed or was not run.
	Classification *Classification `json:"classification,omitempty"`

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative (separate, never affects results)
}

// NewReport stamps a fresh ID and timestamp.
func NewReport(input MeasurementSet, protocol Protocol, result EvaluationResult) *Report {
	return &Report{
		ID:          uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Protocol:    protocol,
		Input:       input,
		Result:      result,
	}
}

// LLMSummary contains the optional LLM-generated narrative
// CRITICAL: This never changes numbers or classifications
type LLMSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Cached    bool     `json:"cached,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}
