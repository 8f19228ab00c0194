package indices

import (
	"strconv"

	"github.com/ppiankov/bodycomp/internal/model"
)

// Waist-to-hip cut-offs: at or below is low risk.
const (
	WaistHipLimitMale   = 0.95
	WaistHipLimitFemale = 0.85
)

const (
	PlaceholderName   = "Índices de Risco"
	PlaceholderStatus = "Circunferências da Cintura e/ou Quadril não fornecidas para cálculo de RCE/RCQ."

	StatusSexNotSpecified = "Sexo não especificado para classificação de risco."
)

// BMI computes mass / stature² with stature converted to meters.
// Mass and stature are validated upstream.
func BMI(massKg, statureCm float64) model.IndexResult {
	m := statureCm / 100
	imc := massKg / (m * m)

	var status string
	switch {
	case imc < 18.5:
		status = "Baixo Peso"
	case imc < 25:
		status = "Peso Normal"
	case imc < 30:
		status = "Sobrepeso"
	case imc < 35:
		status = "Obesidade Grau I"
	case imc < 40:
		status = "Obesidade Grau II"
	default:
		status = "Obesidade Grau III"
	}

	return model.IndexResult{
		Kind:   model.IndexBMI,
		Name:   "Índice de Massa Corporal (IMC)",
		Value:  &imc,
		Status: status,
		Note:   "Não diferencia massa muscular de gordura. Deve ser complementado por outros índices (RCE, Dobras).",
	}
}

// WaistToHeight computes waist / stature. Only values strictly below 0.5 are
// low risk; 0.5 itself is already moderate.
func WaistToHeight(waistCm, statureCm float64) model.IndexResult {
	rce := waistCm / statureCm

	var status string
	switch {
	case rce < 0.5:
		status = "Baixo Risco (Saudável)"
	case rce <= 0.6:
		status = "Atenção (Risco Moderado)"
	default:
		status = "Alto Risco (Elevado)"
	}

	return model.IndexResult{
		Kind:   model.IndexWaistHeight,
		Name:   "Relação Cintura-Estatura (RCE)",
		Value:  &rce,
		Status: status,
		Note:   "Considerado um excelente preditor de risco cardiovascular, pois seu valor limite de 0.5 (ou 50%) é o mesmo para todas as idades e sexos.",
	}
}

// WaistToHip computes waist / hip and applies the sex-specific cut-off.
func WaistToHip(waistCm, hipCm float64, sex model.Sex) model.IndexResult {
	rcq := waistCm / hipCm

	var limit float64
	var status string
	switch sex {
	case model.SexMale:
		limit = WaistHipLimitMale
	case model.SexFemale:
		limit = WaistHipLimitFemale
	}
	if limit == 0 {
		status = StatusSexNotSpecified
	} else if rcq <= limit {
		status = "Baixo Risco"
	} else {
		status = "Risco Elevado"
	}

	return model.IndexResult{
		Kind:      model.IndexWaistHip,
		Name:      "Relação Cintura-Quadril (RCQ)",
		Value:     &rcq,
		Status:    status,
		Threshold: limit,
		Note: "Usado para avaliar o padrão de distribuição de gordura. O risco é elevado se o valor for superior a " +
			formatLimit(WaistHipLimitMale) + " (Homens) ou " + formatLimit(WaistHipLimitFemale) + " (Mulheres).",
	}
}

// Placeholder replaces all three indices when waist or hip is missing.
func Placeholder() model.IndexResult {
	return model.IndexResult{
		Kind:   model.IndexPlaceholder,
		Name:   PlaceholderName,
		Status: PlaceholderStatus,
	}
}

// Compute returns BMI, RCE and RCQ in that order, or the single placeholder
// when either circumference is absent.
func Compute(m model.MeasurementSet) []model.IndexResult {
	if !m.HasCircumferences() {
		return []model.IndexResult{Placeholder()}
	}
	return []model.IndexResult{
		BMI(m.MassKg, m.StatureCm),
		WaistToHeight(m.WaistCm, m.StatureCm),
		WaistToHip(m.WaistCm, m.HipCm, m.Sex),
	}
}

func formatLimit(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
