package reference

import "github.com/ppiankov/bodycomp/internal/model"

// DurninBand holds the Durnin & Womersley regression constants for one
// sex/age band: DC = C - M*log10(sum of 4 skinfolds).
type DurninBand struct {
	Band   string  `yaml:"band"`
	MinAge int     `yaml:"min_age"`
	MaxAge int     `yaml:"max_age"` // 0 = open-ended
	C      float64 `yaml:"c"`
	M      float64 `yaml:"m"`
}

// DurninTable is the constant table by sex
type DurninTable struct {
	bands map[model.Sex][]DurninBand
}

// DefaultDurninTable returns the published constants. The 30-39 row is
// identical for both sexes.
func DefaultDurninTable() *DurninTable {
	return &DurninTable{bands: map[model.Sex][]DurninBand{
		model.SexMale: {
			{Band: "17-19", MinAge: 17, MaxAge: 19, C: 1.1620, M: 0.0630},
			{Band: "20-29", MinAge: 20, MaxAge: 29, C: 1.1614, M: 0.0700},
			{Band: "30-39", MinAge: 30, MaxAge: 39, C: 1.1422, M: 0.0765},
			{Band: "40-49", MinAge: 40, MaxAge: 49, C: 1.1620, M: 0.0815},
			{Band: "50+", MinAge: 50, C: 1.1715, M: 0.0779},
		},
		model.SexFemale: {
			{Band: "17-19", MinAge: 17, MaxAge: 19, C: 1.1549, M: 0.0678},
			{Band: "20-29", MinAge: 20, MaxAge: 29, C: 1.1631, M: 0.0734},
			{Band: "30-39", MinAge: 30, MaxAge: 39, C: 1.1422, M: 0.0765},
			{Band: "40-49", MinAge: 40, MaxAge: 49, C: 1.1333, M: 0.0816},
			{Band: "50+", MinAge: 50, C: 1.1339, M: 0.0769},
		},
	}}
}

// Lookup finds the constants for sex and age.
func (t *DurninTable) Lookup(sex model.Sex, age int) (DurninBand, bool) {
	for _, b := range t.bands[sex] {
		if age >= b.MinAge && (b.MaxAge == 0 || age <= b.MaxAge) {
			return b, true
		}
	}
	return DurninBand{}, false
}

// Bands returns a copy of the rows for sex.
func (t *DurninTable) Bands(sex model.Sex) []DurninBand {
	src := t.bands[sex]
	out := make([]DurninBand, len(src))
	copy(out, src)
	return out
}
