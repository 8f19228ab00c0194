package reference

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/bodycomp/internal/model"
)

// Limits are the upper-bound body-fat percentages of each category within
// one age band, from strictest to most lenient.
type Limits struct {
	Athlete   float64 `yaml:"athlete"`
	Excellent float64 `yaml:"excellent"`
	Good      float64 `yaml:"good"`
	Average   float64 `yaml:"average"`
	Poor      float64 `yaml:"poor"`
}

// AgeBand is one row of the classification table. MaxAge 0 means open-ended.
type AgeBand struct {
	Band   string `yaml:"band"`
	MinAge int    `yaml:"min_age"`
	MaxAge int    `yaml:"max_age"`
	Limits Limits `yaml:"limits"`
}

// Contains reports whether age falls inside the band.
func (b AgeBand) Contains(age int) bool {
	if age < b.MinAge {
		return false
	}
	return b.MaxAge == 0 || age <= b.MaxAge
}

// BodyFatTable maps sex to ordered age bands. It is built once and only read
// afterwards; accessors hand out copies.
type BodyFatTable struct {
	bands map[model.Sex][]AgeBand
}

type bodyFatFile struct {
	Male   []AgeBand `yaml:"masculino"`
	Female []AgeBand `yaml:"feminino"`
}

// DefaultBodyFatTable returns the Jackson & Pollock (1984) / ACSM adapted table.
// Values are upper bounds: male, 20-29, up to 17.5% is "Bom".
func DefaultBodyFatTable() *BodyFatTable {
	return &BodyFatTable{bands: map[model.Sex][]AgeBand{
		model.SexMale: {
			{Band: "20-29", MinAge: 20, MaxAge: 29, Limits: Limits{Athlete: 8.5, Excellent: 12.0, Good: 17.5, Average: 21.0, Poor: 24.5}},
			{Band: "30-39", MinAge: 30, MaxAge: 39, Limits: Limits{Athlete: 11.0, Excellent: 15.0, Good: 20.0, Average: 24.0, Poor: 27.0}},
			{Band: "40-49", MinAge: 40, MaxAge: 49, Limits: Limits{Athlete: 12.0, Excellent: 17.0, Good: 22.0, Average: 26.0, Poor: 29.0}},
			{Band: "50+", MinAge: 50, Limits: Limits{Athlete: 13.0, Excellent: 19.0, Good: 23.5, Average: 27.5, Poor: 30.5}},
		},
		model.SexFemale: {
			{Band: "20-29", MinAge: 20, MaxAge: 29, Limits: Limits{Athlete: 17.0, Excellent: 22.5, Good: 27.5, Average: 32.0, Poor: 36.0}},
			{Band: "30-39", MinAge: 30, MaxAge: 39, Limits: Limits{Athlete: 19.0, Excellent: 24.5, Good: 29.0, Average: 33.5, Poor: 37.5}},
			{Band: "40-49", MinAge: 40, MaxAge: 49, Limits: Limits{Athlete: 20.0, Excellent: 26.5, Good: 31.0, Average: 35.0, Poor: 39.0}},
			{Band: "50+", MinAge: 50, Limits: Limits{Athlete: 21.0, Excellent: 28.5, Good: 32.5, Average: 37.0, Poor: 40.5}},
		},
	}}
}

// LoadBodyFatTable reads a replacement table from a YAML file keyed by
// "masculino" and "feminino".
func LoadBodyFatTable(path string) (*BodyFatTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read body fat table: %w", err)
	}
	return ParseBodyFatTable(data)
}

// ParseBodyFatTable decodes and validates a YAML table.
func ParseBodyFatTable(data []byte) (*BodyFatTable, error) {
	var f bodyFatFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse body fat table: %w", err)
	}

	t := &BodyFatTable{bands: map[model.Sex][]AgeBand{
		model.SexMale:   f.Male,
		model.SexFemale: f.Female,
	}}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks band ordering and that limits grow from Athlete to Poor.
func (t *BodyFatTable) Validate() error {
	for _, sex := range []model.Sex{model.SexMale, model.SexFemale} {
		bands := t.bands[sex]
		if len(bands) == 0 {
			return fmt.Errorf("body fat table: no bands for %s", sex)
		}
		for i, b := range bands {
			if b.Band == "" {
				return fmt.Errorf("body fat table: %s band %d has no label", sex, i)
			}
			if b.MaxAge != 0 && b.MaxAge < b.MinAge {
				return fmt.Errorf("body fat table: %s band %s has max_age < min_age", sex, b.Band)
			}
			if i > 0 {
				prev := bands[i-1]
				if prev.MaxAge == 0 || b.MinAge <= prev.MaxAge {
					return fmt.Errorf("body fat table: %s band %s overlaps %s", sex, b.Band, prev.Band)
				}
			}
			l := b.Limits
			if !(l.Athlete <= l.Excellent && l.Excellent <= l.Good && l.Good <= l.Average && l.Average <= l.Poor) {
				return fmt.Errorf("body fat table: %s band %s limits are not ascending", sex, b.Band)
			}
		}
	}
	return nil
}

// Bands returns a copy of the rows for sex (nil for an unspecified sex).
func (t *BodyFatTable) Bands(sex model.Sex) []AgeBand {
	src, ok := t.bands[sex]
	if !ok {
		return nil
	}
	out := make([]AgeBand, len(src))
	copy(out, src)
	return out
}

// MarshalYAML writes the table in the same shape LoadBodyFatTable reads.
func (t *BodyFatTable) MarshalYAML() (interface{}, error) {
	return bodyFatFile{
		Male:   t.Bands(model.SexMale),
		Female: t.Bands(model.SexFemale),
	}, nil
}
