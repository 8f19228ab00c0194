package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/bodycomp/internal/model"
)

func evaluatedReport(t *testing.T, in model.MeasurementSet, p model.Protocol) *model.Report {
	t.Helper()
	report, err := newTestPipeline(t, testConfig()).Evaluate(context.Background(), in, p)
	require.NoError(t, err)
	return report
}

func TestRenderer_Markdown(t *testing.T) {
	md := NewRenderer(true).Markdown(evaluatedReport(t, sampleInput(), model.ProtocolJP3))

	for _, want := range []string{
		"# Avaliação Antropométrica: Maria Clara",
		"- **Idade:** 31 anos",
		"- **Sexo:** feminino",
		"- **Estatura:** 165 cm",
		"- **Cintura / Quadril:** 72 / 98 cm",
		"**Protocolo:** Jackson & Pollock 3 Dobras",
		"| Soma das dobras | 56.50 mm |",
		"| Densidade corporal | 1.0464 g/mL |",
		"| Gordura corporal | 23.04 % |",
		"| Classificação | Excelente (Faixa Etária: 30-39) `status-excelente` |",
		"Dobras utilizadas: Tríceps (18mm) + Supra-Ilíaca (14.5mm) + Coxa (24mm)",
		"| Índice de Massa Corporal (IMC) | 22.92 | Peso Normal `status-excelente` |",
		"| Relação Cintura-Quadril (RCQ) | 0.73 | Baixo Risco `status-excelente` |",
		"_Estimativas por equações",
	} {
		assert.Contains(t, md, want)
	}
}

func TestRenderer_Markdown_FailuresAndPlaceholder(t *testing.T) {
	in := sampleInput()
	in.Skinfolds = model.Skinfolds{}
	in.HipCm = 0

	md := NewRenderer(false).Markdown(evaluatedReport(t, in, model.ProtocolJP3))

	assert.Contains(t, md, "> **Erro:** O Protocolo JP3 (Mulheres) exige as dobras Tríceps, Supra-Ilíaca e Coxa.")
	assert.NotContains(t, md, "Gordura corporal")
	assert.Contains(t, md, "| Índices de Risco | N/A | Circunferências")
	assert.Contains(t, md, "- **Cintura / Quadril:** 72 / N/A cm")
	assert.NotContains(t, md, "_Estimativas por equações")
}

func TestRenderer_Markdown_ClassificationUnavailable(t *testing.T) {
	in := sampleInput()
	in.Age = 18

	md := NewRenderer(false).Markdown(evaluatedReport(t, in, model.ProtocolJP3))
	assert.Contains(t, md, "| Classificação | Idade (18) fora do range de classificação (20+ anos). |")
}

func TestRenderer_RenderSummary(t *testing.T) {
	report := evaluatedReport(t, sampleInput(), model.ProtocolJP3)
	report.LLM = &model.LLMSummary{Enabled: true, Provider: "ollama", Cached: true}

	var buf bytes.Buffer
	NewRenderer(true).RenderSummary(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "Maria Clara (31 anos, feminino)")
	assert.Contains(t, out, "Gordura:        23.04%")
	assert.Contains(t, out, "Classificação:  Excelente (Faixa Etária: 30-39) [status-excelente]")
	assert.Contains(t, out, "Peso Normal")
	assert.Contains(t, out, "Resumo narrativo: ollama (cache)")
}

func TestRenderer_RenderSummary_Failure(t *testing.T) {
	in := sampleInput()
	in.Skinfolds = model.Skinfolds{}

	var buf bytes.Buffer
	NewRenderer(true).RenderSummary(&buf, evaluatedReport(t, in, model.ProtocolJP3))
	assert.Contains(t, buf.String(), "✗ Jackson & Pollock 3 Dobras: O Protocolo JP3 (Mulheres)")
}
