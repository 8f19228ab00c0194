// Package evaluate assembles an evaluation from a measurement set: it
// validates the required fields, runs exactly one skinfold protocol and
// computes the circumference indices. It never classifies.
package evaluate

import (
	"strings"

	"github.com/ppiankov/bodycomp/internal/indices"
	"github.com/ppiankov/bodycomp/internal/model"
	"github.com/ppiankov/bodycomp/internal/skinfold"
)

// MsgMissingRequiredFields is shown when the evaluation cannot start.
const MsgMissingRequiredFields = "Por favor, preencha todos os campos obrigatórios (Nome, Idade, Sexo, Estatura, Peso e escolha um Protocolo)."

// Evaluator is stateless apart from its read-only calculator.
type Evaluator struct {
	calc *skinfold.Calculator
}

// NewEvaluator creates an evaluator. A nil calculator uses the default tables.
func NewEvaluator(calc *skinfold.Calculator) *Evaluator {
	if calc == nil {
		calc = skinfold.NewCalculator(nil)
	}
	return &Evaluator{calc: calc}
}

// Evaluate runs protocol p over m. The only returned error is
// MissingRequiredFields; protocol failures travel inline in the result's
// Skinfold field and never suppress the indices.
func (e *Evaluator) Evaluate(m model.MeasurementSet, p model.Protocol) (*model.EvaluationResult, error) {
	if err := Validate(m, p); err != nil {
		return nil, err
	}

	sf := e.calc.Compute(p, skinfold.InputFrom(m))

	return &model.EvaluationResult{
		Name:     m.Name,
		Age:      m.Age,
		Sex:      m.Sex,
		Skinfold: &sf,
		Indices:  indices.Compute(m),
	}, nil
}

// Validate checks the fields every evaluation needs before any dispatch.
func Validate(m model.MeasurementSet, p model.Protocol) error {
	if strings.TrimSpace(m.Name) == "" ||
		!m.Sex.Valid() ||
		!supported(p) ||
		m.Age <= 0 ||
		!(m.StatureCm > 0) ||
		!(m.MassKg > 0) {
		return model.NewEvalError(model.KindMissingRequiredFields, MsgMissingRequiredFields)
	}
	return nil
}

func supported(p model.Protocol) bool {
	for _, known := range model.Protocols() {
		if p == known {
			return true
		}
	}
	return false
}
