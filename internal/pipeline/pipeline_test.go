package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/bodycomp/internal/classify"
	"github.com/ppiankov/bodycomp/internal/model"
)

// sampleInput is a JP3 female evaluation: sum 56.5 mm, 23.04% body fat.
func sampleInput() model.MeasurementSet {
	return model.MeasurementSet{
		Name:      "Maria Clara",
		Age:       31,
		Sex:       model.SexFemale,
		StatureCm: 165,
		MassKg:    62.4,
		WaistCm:   72,
		HipCm:     98,
		Skinfolds: model.Skinfolds{Triceps: 18, Suprailiac: 14.5, Thigh: 24},
	}
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.LLM.Provider = ""
	return cfg
}

func newTestPipeline(t *testing.T, cfg *model.Config) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg, nil)
	require.NoError(t, err)
	return p
}

func TestPipeline_Evaluate(t *testing.T) {
	p := newTestPipeline(t, testConfig())

	report, err := p.Evaluate(context.Background(), sampleInput(), model.ProtocolJP3)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID.String())
	assert.Equal(t, model.ProtocolJP3, report.Protocol)
	assert.Equal(t, "Maria Clara", report.Result.Name)

	sf := report.Result.Skinfold
	require.NotNil(t, sf)
	require.False(t, sf.Failed())
	assert.Equal(t, 56.5, sf.Sum)
	assert.InDelta(t, 1.0464202, sf.Density, 1e-7)
	assert.InDelta(t, 23.041316, sf.BodyFat, 1e-5)

	require.NotNil(t, report.Classification)
	assert.Equal(t, classify.CategoryExcellent, report.Classification.Category)
	assert.Equal(t, "30-39", report.Classification.Band)

	require.Len(t, report.Result.Indices, 3)
	assert.Equal(t, model.IndexBMI, report.Result.Indices[0].Kind)
	assert.InDelta(t, 22.92, *report.Result.Indices[0].Value, 0.005)

	assert.Nil(t, report.LLM)
	assert.False(t, p.SummarizerEnabled())
}

func TestPipeline_Evaluate_MissingRequiredFields(t *testing.T) {
	p := newTestPipeline(t, testConfig())

	in := sampleInput()
	in.MassKg = 0

	report, err := p.Evaluate(context.Background(), in, model.ProtocolJP3)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, model.ErrMissingRequiredFields))
}

func TestPipeline_Evaluate_ProtocolFailureKeepsIndices(t *testing.T) {
	p := newTestPipeline(t, testConfig())

	in := sampleInput()
	in.Skinfolds = model.Skinfolds{}

	report, err := p.Evaluate(context.Background(), in, model.ProtocolJP3)
	require.NoError(t, err)

	assert.True(t, errors.Is(report.Result.Skinfold.Err(), model.ErrMissingSkinfolds))
	assert.Nil(t, report.Classification)
	assert.Len(t, report.Result.Indices, 3)
}

func TestPipeline_Evaluate_FormMask(t *testing.T) {
	in := sampleInput()
	in.Skinfolds.Biceps = 9

	cfg := testConfig()
	cfg.Export.ApplyFormMask = true
	report, err := newTestPipeline(t, cfg).Evaluate(context.Background(), in, model.ProtocolJP3)
	require.NoError(t, err)
	assert.Zero(t, report.Input.Skinfolds.Biceps, "jp3 form has no biceps input")
	assert.Equal(t, 18.0, report.Input.Skinfolds.Triceps)

	cfg = testConfig()
	cfg.Export.ApplyFormMask = false
	report, err = newTestPipeline(t, cfg).Evaluate(context.Background(), in, model.ProtocolJP3)
	require.NoError(t, err)
	assert.Equal(t, 9.0, report.Input.Skinfolds.Biceps)

	// The mask never changes the computed result
	assert.Equal(t, 56.5, report.Result.Skinfold.Sum)
}

func TestPipeline_Evaluate_Cancelled(t *testing.T) {
	p := newTestPipeline(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Evaluate(ctx, sampleInput(), model.ProtocolJP3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPipeline_ReferenceTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	table := `masculino:
  - band: "18+"
    min_age: 18
    limits: {athlete: 10, excellent: 15, good: 20, average: 25, poor: 30}
feminino:
  - band: "18+"
    min_age: 18
    limits: {athlete: 25, excellent: 28, good: 31, average: 34, poor: 37}
`
	require.NoError(t, os.WriteFile(path, []byte(table), 0644))

	cfg := testConfig()
	cfg.Reference.BodyFatTable = path
	report, err := newTestPipeline(t, cfg).Evaluate(context.Background(), sampleInput(), model.ProtocolJP3)
	require.NoError(t, err)
	assert.Equal(t, classify.CategoryAthlete, report.Classification.Category)
	assert.Equal(t, "18+", report.Classification.Band)

	cfg.Reference.BodyFatTable = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewPipeline(cfg, nil)
	assert.ErrorContains(t, err, "load classification table")
}

func TestNewPipeline_UnknownProviderDisablesNarrative(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Provider = "gemini"

	p := newTestPipeline(t, cfg)
	assert.False(t, p.SummarizerEnabled())
}

func newOllamaServer(t *testing.T, narrative string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/generate":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"model":    "llama3.1:8b",
				"response": narrative,
				"done":     true,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPipeline_Evaluate_WithNarrative(t *testing.T) {
	server := newOllamaServer(t, "Seu percentual de gordura é 23,04%, classificado como Excelente.")

	cfg := testConfig()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.Model = "llama3.1:8b"
	cfg.LLM.BaseURL = server.URL
	cfg.RateLimiting.RequestsPerSecond = 0

	p := newTestPipeline(t, cfg)
	require.True(t, p.SummarizerEnabled())

	report, err := p.Evaluate(context.Background(), sampleInput(), model.ProtocolJP3)
	require.NoError(t, err)

	require.NotNil(t, report.LLM)
	assert.True(t, report.LLM.Enabled)
	assert.Equal(t, "ollama", report.LLM.Provider)
	assert.Contains(t, report.LLM.SummaryMD, "23,04%")

	// Numbers are untouched by the narrative
	assert.InDelta(t, 23.041316, report.Result.Skinfold.BodyFat, 1e-5)
}

func TestPipeline_Evaluate_NarrativeRejected(t *testing.T) {
	server := newOllamaServer(t, "Seu percentual de gordura é 21,5%.")

	cfg := testConfig()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.Model = "m"
	cfg.LLM.BaseURL = server.URL

	report, err := newTestPipeline(t, cfg).Evaluate(context.Background(), sampleInput(), model.ProtocolJP3)
	require.NoError(t, err)
	require.NotNil(t, report.LLM)
	assert.False(t, report.LLM.Enabled)
	assert.Empty(t, report.LLM.SummaryMD)
	assert.NotEmpty(t, report.LLM.Warnings)
}

func TestPipeline_RenderReport(t *testing.T) {
	server := newOllamaServer(t, "Resultado classificado como Excelente.")

	cfg := testConfig()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.Model = "m"
	cfg.LLM.BaseURL = server.URL
	p := newTestPipeline(t, cfg)

	report, err := p.Evaluate(context.Background(), sampleInput(), model.ProtocolJP3)
	require.NoError(t, err)

	dir := t.TempDir()
	written, err := p.RenderReport(report, Outputs{
		JSONPath:     filepath.Join(dir, "out", "report.json"),
		MarkdownPath: filepath.Join(dir, "report.md"),
		CSVDir:       filepath.Join(dir, "csv"),
	})
	require.NoError(t, err)
	require.Len(t, written, 4)
	assert.Equal(t, filepath.Join(dir, "report.llm.md"), written[2])
	assert.True(t, strings.HasPrefix(filepath.Base(written[3]), "Avaliacao_Maria_Clara_"))

	for _, path := range written {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	var decoded model.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.ID, decoded.ID)
	assert.Equal(t, model.SexFemale, decoded.Result.Sex)
	assert.Equal(t, "Excelente", decoded.Classification.Category)

	llmMD, err := os.ReadFile(written[2])
	require.NoError(t, err)
	assert.Contains(t, string(llmMD), "Resultado classificado como Excelente.")
}

func TestPipeline_RenderReport_ExportDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Export.Enabled = false
	p := newTestPipeline(t, cfg)

	report, err := p.Evaluate(context.Background(), sampleInput(), model.ProtocolJP3)
	require.NoError(t, err)

	dir := t.TempDir()
	written, err := p.RenderReport(report, Outputs{
		MarkdownPath: filepath.Join(dir, "report.md"),
		CSVPath:      filepath.Join(dir, "report.csv"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "report.md")}, written)

	_, err = os.Stat(filepath.Join(dir, "report.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestPipeline_RenderReport_CSVPath(t *testing.T) {
	p := newTestPipeline(t, testConfig())

	report, err := p.Evaluate(context.Background(), sampleInput(), model.ProtocolJP3)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "row-002.csv")
	written, err := p.RenderReport(report, Outputs{CSVPath: path, CSVDir: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Percentual de Gordura")
}
