package skinfold

import (
	"strconv"
	"strings"

	"github.com/ppiankov/bodycomp/internal/model"
	"github.com/ppiankov/bodycomp/internal/reference"
)

// Input is the subset of a measurement set the protocols read
type Input struct {
	Skinfolds model.Skinfolds
	Age       int
	Sex       model.Sex
}

// InputFrom extracts the protocol input from a full measurement set.
func InputFrom(m model.MeasurementSet) Input {
	return Input{Skinfolds: m.Skinfolds, Age: m.Age, Sex: m.Sex}
}

// Siri converts body density (g/mL) to body-fat percentage.
// Every protocol goes through this single conversion point.
func Siri(density float64) float64 {
	return ((4.95 / density) - 4.50) * 100
}

// Calculator dispatches to the four protocols. It only holds read-only tables.
type Calculator struct {
	durnin *reference.DurninTable
}

// NewCalculator creates a calculator; a nil table selects the published constants.
func NewCalculator(durnin *reference.DurninTable) *Calculator {
	if durnin == nil {
		durnin = reference.DefaultDurninTable()
	}
	return &Calculator{durnin: durnin}
}

// Compute runs protocol p over in. Callers validate p first; an unknown
// protocol still yields a failed result rather than a panic.
func (c *Calculator) Compute(p model.Protocol, in Input) model.SkinfoldResult {
	switch p {
	case model.ProtocolJP7:
		return JacksonPollock7(in)
	case model.ProtocolJP3:
		return JacksonPollock3(in)
	case model.ProtocolGuedes:
		return Guedes(in)
	case model.ProtocolDurnin:
		return DurninWomersley(c.durnin, in)
	default:
		return model.SkinfoldFailure(p, model.KindMissingRequiredFields, "Protocolo de dobras não reconhecido: "+string(p)+".")
	}
}

// success assembles the valid payload once density is known.
func success(p model.Protocol, sum, density float64, sites, note string) model.SkinfoldResult {
	return model.SkinfoldResult{
		Protocol: p,
		Name:     p.Title(),
		Sum:      sum,
		Density:  density,
		BodyFat:  Siri(density),
		Sites:    sites,
		Note:     note,
	}
}

// describe renders "Tríceps (12mm) + Coxa (15.5mm)" for the given sites.
func describe(s model.Skinfolds, sites ...model.Site) string {
	parts := make([]string, len(sites))
	for i, site := range sites {
		parts[i] = site.Label() + " (" + strconv.FormatFloat(s.Get(site), 'f', -1, 64) + "mm)"
	}
	return strings.Join(parts, " + ")
}
