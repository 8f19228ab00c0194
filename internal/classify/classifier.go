package classify

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/bodycomp/internal/model"
	"github.com/ppiankov/bodycomp/internal/reference"
)

// Category labels, strictest first
const (
	CategoryAthlete   = "Atleta (Ideal)"
	CategoryExcellent = "Excelente"
	CategoryGood      = "Bom"
	CategoryAverage   = "Mediano"
	CategoryPoor      = "Ruim (Risco)"
	CategoryVeryPoor  = "Muito Ruim (Obesidade)"
)

const (
	msgInvalidPercent = "Percentual de gordura não calculado ou inválido."
	msgNoSexData      = "Dados de classificação não encontrados para o sexo informado."
	msgNoBand         = "Tabela de classificação indisponível para esta idade/sexo."
)

// Classifier maps a body-fat percentage to a category using an injected,
// read-only table. Safe for concurrent use.
type Classifier struct {
	table *reference.BodyFatTable
}

// NewClassifier creates a classifier; a nil table selects the built-in one.
func NewClassifier(table *reference.BodyFatTable) *Classifier {
	if table == nil {
		table = reference.DefaultBodyFatTable()
	}
	return &Classifier{table: table}
}

// Classify looks up the band for sex and age and returns the first category
// whose upper bound is not exceeded.
func (c *Classifier) Classify(bodyFat float64, age int, sex model.Sex) model.Classification {
	if !sex.Valid() || math.IsNaN(bodyFat) || bodyFat <= 0 {
		return unavailable(msgInvalidPercent)
	}

	bands := c.table.Bands(sex)
	if len(bands) == 0 {
		return unavailable(msgNoSexData)
	}

	var row *reference.AgeBand
	for i := range bands {
		if bands[i].Contains(age) {
			row = &bands[i]
			break
		}
	}
	if row == nil {
		if age < bands[0].MinAge {
			return unavailable(fmt.Sprintf("Idade (%d) fora do range de classificação (%d+ anos).", age, bands[0].MinAge))
		}
		return unavailable(msgNoBand)
	}

	l := row.Limits
	category := CategoryVeryPoor
	switch {
	case bodyFat <= l.Athlete:
		category = CategoryAthlete
	case bodyFat <= l.Excellent:
		category = CategoryExcellent
	case bodyFat <= l.Good:
		category = CategoryGood
	case bodyFat <= l.Average:
		category = CategoryAverage
	case bodyFat <= l.Poor:
		category = CategoryPoor
	}

	return model.Classification{Category: category, Band: row.Band}
}

// ClassifyResult classifies a skinfold result the way it is displayed: the
// percentage is rounded to two decimals first. Failed or missing results
// yield nil.
func (c *Classifier) ClassifyResult(r *model.SkinfoldResult, age int, sex model.Sex) *model.Classification {
	if r == nil || r.Failed() {
		return nil
	}
	cl := c.Classify(Round(r.BodyFat, 2), age, sex)
	return &cl
}

func unavailable(msg string) model.Classification {
	return model.Classification{Error: model.NewEvalError(model.KindClassificationUnavailable, msg)}
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Badge derives the CSS-style badge class for a classification label:
// the first word, lower-cased, without parentheses ("status-bom").
func Badge(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	word := strings.ToLower(strings.Trim(fields[0], "()"))
	return "status-" + word
}

// IndexBadge maps a risk status to a badge class by keyword.
func IndexBadge(status string) string {
	switch {
	case strings.Contains(status, "Normal"), strings.Contains(status, "Baixo"):
		return "status-excelente"
	case strings.Contains(status, "Sobrepeso"), strings.Contains(status, "Moderado"):
		return "status-bom"
	case strings.Contains(status, "Obesidade"), strings.Contains(status, "Elevado"):
		return "status-risco"
	default:
		return ""
	}
}
