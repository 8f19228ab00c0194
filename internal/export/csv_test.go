package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/bodycomp/internal/model"
)

func floatPtr(v float64) *float64 {
	return &v
}

func sampleReport() *model.Report {
	in := model.MeasurementSet{
		Name:      "Maria Clara",
		Age:       31,
		Sex:       model.SexFemale,
		StatureCm: 165,
		MassKg:    62.4,
		WaistCm:   72,
		HipCm:     98,
		Skinfolds: model.Skinfolds{Triceps: 18, Suprailiac: 14.5, Thigh: 24},
	}
	res := model.EvaluationResult{
		Name: in.Name,
		Age:  in.Age,
		Sex:  in.Sex,
		Skinfold: &model.SkinfoldResult{
			Protocol: model.ProtocolJP3,
			Name:     model.ProtocolJP3.Title(),
			Sum:      56.5,
			Density:  1.0449876,
			BodyFat:  23.703612,
		},
		Indices: []model.IndexResult{
			{Kind: model.IndexBMI, Name: "Índice de Massa Corporal (IMC)", Value: floatPtr(22.9201), Status: "Peso Normal"},
			{Kind: model.IndexWaistHip, Name: "Relação Cintura-Quadril (RCQ)", Value: floatPtr(0.7347), Status: "Baixo; Risco"},
		},
	}

	r := model.NewReport(in, model.ProtocolJP3, res)
	r.GeneratedAt = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	r.Classification = &model.Classification{Category: "Bom", Band: "30-39"}
	return r
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport()))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, BOM), "missing byte order mark")

	lines := strings.Split(strings.TrimPrefix(out, BOM), "\n")
	assert.Equal(t, "Categoria;Metrica;Valor;Unidade;Status_Risco", lines[0])

	assert.Contains(t, out, "Geral;Nome;Maria Clara;;\n")
	assert.Contains(t, out, "Geral;Idade;31;anos;\n")
	assert.Contains(t, out, "Geral;Sexo;feminino;;\n")
	assert.Contains(t, out, "Geral;Estatura;165,0000;cm;\n")
	assert.Contains(t, out, "Geral;Peso;62,4000;kg;\n")
	assert.Contains(t, out, "Geral;Protocolo Selecionado;jp3;;\n")

	assert.Contains(t, out, "\n\nDobras Inseridas;---;---;---;---\n")
	assert.Contains(t, out, "Dobras Inseridas;supraIliaca;14,5000;mm;\n")
	assert.Contains(t, out, "Dobras Inseridas;biceps;0,0000;mm;\n")

	assert.Contains(t, out, "\n\nResultados Cálculo;---;---;---;---\n")
	assert.Contains(t, out, "Composicao Corporal;Protocolo Utilizado;Jackson & Pollock 3 Dobras;;\n")
	assert.Contains(t, out, "Composicao Corporal;Percentual de Gordura Estimado;23,7000;%;Bom (Faixa Etária: 30-39)\n")
	assert.Contains(t, out, "Composicao Corporal;Densidade Corporal;1,0450;g/mL;\n")

	assert.Contains(t, out, "\n\nResultados Risco;---;---;---;---\n")
	assert.Contains(t, out, "Risco Antropometrico;Índice de Massa Corporal (IMC);22,9200;;Peso Normal\n")
	assert.Contains(t, out, "Risco Antropometrico;Relação Cintura-Quadril (RCQ);0,7300;;Baixo, Risco\n")
}

func TestWrite_SectionOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport()))
	out := buf.String()

	general := strings.Index(out, "Geral;")
	skinfolds := strings.Index(out, SectionSkinfolds)
	results := strings.Index(out, SectionResults)
	risk := strings.Index(out, SectionRisk)

	assert.True(t, general < skinfolds && skinfolds < results && results < risk)
}

func TestWrite_ProtocolErrorAndPlaceholder(t *testing.T) {
	r := sampleReport()
	r.Input.WaistCm = 0
	failed := model.SkinfoldFailure(model.ProtocolJP3, model.KindMissingSkinfolds, "O Protocolo JP3 (Mulheres) exige as dobras Tríceps, Supra-Ilíaca e Coxa.")
	r.Result.Skinfold = &failed
	r.Classification = nil
	r.Result.Indices = []model.IndexResult{{Kind: model.IndexPlaceholder, Name: "Índices de Risco", Status: "Circunferências não fornecidas."}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "Geral;Cintura;N/A;cm;\n")
	assert.Contains(t, out, "Composicao Corporal;Erro Protocolo Dobras;O Protocolo JP3 (Mulheres) exige as dobras Tríceps, Supra-Ilíaca e Coxa.;;\n")
	assert.NotContains(t, out, "Percentual de Gordura Estimado")
	assert.Contains(t, out, "Risco Antropometrico;Índices de Risco;N/A;;Circunferências não fornecidas.\n")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteFile(dir, sampleReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Avaliacao_Maria_Clara_2026-03-14.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
}

type closeFailer struct {
	bytes.Buffer
	err error
}

func (c *closeFailer) Close() error { return c.err }

func TestSave_CloseError(t *testing.T) {
	diskFull := errors.New("no space left on device")
	w := &closeFailer{err: diskFull}

	err := writeAndClose(w, sampleReport())
	require.ErrorIs(t, err, diskFull)
	assert.ErrorContains(t, err, "failed to close export file")
	assert.NotZero(t, w.Len(), "rows were written before close")

	require.NoError(t, writeAndClose(&closeFailer{}, sampleReport()))
}

func TestSave_CreateError(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "missing", "out.csv"), sampleReport())
	assert.ErrorContains(t, err, "failed to create export file")
}

func TestFileName(t *testing.T) {
	d := time.Date(2025, 1, 2, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "Avaliacao_Ana_Paula_Souza_2025-01-02.csv", FileName("Ana Paula\tSouza", d))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "22,8571", FormatNumber(22.857142))
	assert.Equal(t, "0,0000", FormatNumber(0))
	assert.Equal(t, "-1,5000", FormatNumber(-1.5))
}
