// Package form turns raw text fields, as typed into a collection form or a
// CSV row, into a MeasurementSet. Numeric parsing never fails: anything
// that is not a number becomes 0.
package form

import (
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/ppiankov/bodycomp/internal/model"
)

// Field names, shared with the batch CSV header
const (
	FieldName     = "nome"
	FieldAge      = "idade"
	FieldSex      = "sexo"
	FieldStature  = "estatura"
	FieldMass     = "peso"
	FieldWaist    = "cintura"
	FieldHip      = "quadril"
	FieldProtocol = "protocolo"
)

// Fields lists every recognized field name: general fields first, then the
// skinfold sites.
func Fields() []string {
	out := []string{FieldName, FieldAge, FieldSex, FieldStature, FieldMass, FieldWaist, FieldHip, FieldProtocol}
	for _, s := range model.Sites() {
		out = append(out, string(s))
	}
	return out
}

// RawFields is the untyped form content keyed by field name.
type RawFields map[string]string

// Parsed is the typed result of a form submission.
type Parsed struct {
	Measurement model.MeasurementSet
	Protocol    model.Protocol

	// ProtocolErr is set when the protocol field held an unknown value.
	// The protocol is then left empty and the evaluation reports missing fields.
	ProtocolErr error
}

// Parse converts raw fields. Unknown keys are ignored.
func Parse(raw RawFields) Parsed {
	get := func(k string) string {
		return raw[k]
	}

	var sf model.Skinfolds
	for _, site := range model.Sites() {
		sf = sf.With(site, ParseNumber(get(string(site))))
	}

	m := model.MeasurementSet{
		Name:      strings.TrimSpace(get(FieldName)),
		Age:       ParseAge(get(FieldAge)),
		Sex:       model.ParseSex(get(FieldSex)),
		StatureCm: ParseNumber(get(FieldStature)),
		MassKg:    ParseNumber(get(FieldMass)),
		WaistCm:   ParseNumber(get(FieldWaist)),
		HipCm:     ParseNumber(get(FieldHip)),
		Skinfolds: sf,
	}

	p, err := model.ParseProtocol(get(FieldProtocol))
	return Parsed{Measurement: m, Protocol: p, ProtocolErr: err}
}

// ParseNumber reads a decimal number written with either "." or ",".
// Empty, invalid, infinite and NaN input all yield 0.
func ParseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.Replace(s, ",", ".", 1)
	v, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseAge reads an age in whole years, truncating decimals. Values that do
// not fit an int32 yield 0 like any other invalid input.
func ParseAge(raw string) int {
	v := ParseNumber(raw)
	if v <= math.MinInt32 || v >= math.MaxInt32 {
		return 0
	}
	return int(v)
}

// MaskSkinfolds zeroes every site the protocol's form does not enable, the
// way a form clears disabled inputs.
func MaskSkinfolds(p model.Protocol, s model.Skinfolds) model.Skinfolds {
	enabled := make(map[model.Site]bool)
	for _, site := range p.FormSites() {
		enabled[site] = true
	}

	var out model.Skinfolds
	for _, site := range model.Sites() {
		if enabled[site] {
			out = out.With(site, s.Get(site))
		}
	}
	return out
}
