package model

import (
	"fmt"
	"strings"
)

// Sex is the biological sex used by the sex-dependent regressions.
// The zero value is SexUnspecified and is rejected by every formula that needs a sex.
type Sex int

const (
	SexUnspecified Sex = iota
	SexMale
	SexFemale
)

func (s Sex) String() string {
	switch s {
	case SexMale:
		return "masculino"
	case SexFemale:
		return "feminino"
	default:
		return ""
	}
}

// Valid reports whether s is one of the two recognized values.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// ParseSex accepts the Portuguese form values as well as English aliases.
// Anything else yields SexUnspecified.
func ParseSex(raw string) Sex {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "masculino", "male", "m", "homem":
		return SexMale
	case "feminino", "female", "f", "mulher":
		return SexFemale
	default:
		return SexUnspecified
	}
}

// MarshalText keeps JSON/YAML output readable ("masculino", "feminino", "").
func (s Sex) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Sex) UnmarshalText(text []byte) error {
	*s = ParseSex(string(text))
	return nil
}

// Protocol selects which skinfold regression runs
type Protocol string

const (
	ProtocolNone   Protocol = ""
	ProtocolJP7    Protocol = "jp7"    // Jackson & Pollock, 7 sites
	ProtocolJP3    Protocol = "jp3"    // Jackson & Pollock, 3 sites
	ProtocolGuedes Protocol = "guedes" // Guedes (1994), 3 sites
	ProtocolDurnin Protocol = "durnin" // Durnin & Womersley, 4 sites
)

// Protocols lists the supported protocols in display order.
func Protocols() []Protocol {
	return []Protocol{ProtocolJP7, ProtocolJP3, ProtocolGuedes, ProtocolDurnin}
}

// ParseProtocol returns an error for anything outside the four supported values.
func ParseProtocol(raw string) (Protocol, error) {
	p := Protocol(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case ProtocolJP7, ProtocolJP3, ProtocolGuedes, ProtocolDurnin:
		return p, nil
	case ProtocolNone:
		return ProtocolNone, nil
	default:
		return ProtocolNone, fmt.Errorf("unknown protocol %q (supported: jp7, jp3, guedes, durnin)", raw)
	}
}

// Title is the human-readable protocol name used in results.
func (p Protocol) Title() string {
	switch p {
	case ProtocolJP7:
		return "Jackson & Pollock 7 Dobras"
	case ProtocolJP3:
		return "Jackson & Pollock 3 Dobras"
	case ProtocolGuedes:
		return "Protocolo de Guedes (3 Dobras)"
	case ProtocolDurnin:
		return "Durnin & Womersley (4 Dobras)"
	default:
		return ""
	}
}

// FormSites returns the skinfold inputs a collection form enables for p.
// For the sex-dependent protocols this is the union of both sexes' sites.
func (p Protocol) FormSites() []Site {
	switch p {
	case ProtocolJP7:
		return []Site{SiteTriceps, SiteSubscapular, SiteMidAxillary, SitePectoral, SiteAbdominal, SiteSuprailiac, SiteThigh}
	case ProtocolJP3:
		return []Site{SiteTriceps, SitePectoral, SiteAbdominal, SiteSuprailiac, SiteThigh}
	case ProtocolGuedes:
		return []Site{SiteTriceps, SiteSubscapular, SiteAbdominal, SiteSuprailiac, SiteThigh}
	case ProtocolDurnin:
		return []Site{SiteBiceps, SiteTriceps, SiteSubscapular, SiteSuprailiac}
	default:
		return nil
	}
}

// Site identifies a skinfold measurement location
type Site string

const (
	SiteTriceps     Site = "triceps"
	SiteBiceps      Site = "biceps"
	SiteSubscapular Site = "subescapular"
	SitePectoral    Site = "peitoral"
	SiteMidAxillary Site = "axilarMedia"
	SiteAbdominal   Site = "abdominal"
	SiteSuprailiac  Site = "supraIliaca"
	SiteThigh       Site = "coxa"
)

// Sites lists every site in export order.
func Sites() []Site {
	return []Site{SiteTriceps, SiteBiceps, SiteSubscapular, SitePectoral, SiteMidAxillary, SiteAbdominal, SiteSuprailiac, SiteThigh}
}

// Label is the display name of the site.
func (s Site) Label() string {
	switch s {
	case SiteTriceps:
		return "Tríceps"
	case SiteBiceps:
		return "Bíceps"
	case SiteSubscapular:
		return "Subescapular"
	case SitePectoral:
		return "Peitoral"
	case SiteMidAxillary:
		return "Axilar Média"
	case SiteAbdominal:
		return "Abdominal"
	case SiteSuprailiac:
		return "Supra-Ilíaca"
	case SiteThigh:
		return "Coxa"
	default:
		return string(s)
	}
}

// Skinfolds holds the eight skinfold thicknesses in millimeters.
// A zero means "not measured".
type Skinfolds struct {
	Triceps     float64 `json:"triceps" yaml:"triceps"`
	Biceps      float64 `json:"biceps" yaml:"biceps"`
	Subscapular float64 `json:"subscapular" yaml:"subscapular"`
	Pectoral    float64 `json:"pectoral" yaml:"pectoral"`
	MidAxillary float64 `json:"mid_axillary" yaml:"mid_axillary"`
	Abdominal   float64 `json:"abdominal" yaml:"abdominal"`
	Suprailiac  float64 `json:"suprailiac" yaml:"suprailiac"`
	Thigh       float64 `json:"thigh" yaml:"thigh"`
}

// Get returns the value recorded for site.
func (s Skinfolds) Get(site Site) float64 {
	switch site {
	case SiteTriceps:
		return s.Triceps
	case SiteBiceps:
		return s.Biceps
	case SiteSubscapular:
		return s.Subscapular
	case SitePectoral:
		return s.Pectoral
	case SiteMidAxillary:
		return s.MidAxillary
	case SiteAbdominal:
		return s.Abdominal
	case SiteSuprailiac:
		return s.Suprailiac
	case SiteThigh:
		return s.Thigh
	default:
		return 0
	}
}

// With returns a copy of s with site set to v.
func (s Skinfolds) With(site Site, v float64) Skinfolds {
	switch site {
	case SiteTriceps:
		s.Triceps = v
	case SiteBiceps:
		s.Biceps = v
	case SiteSubscapular:
		s.Subscapular = v
	case SitePectoral:
		s.Pectoral = v
	case SiteMidAxillary:
		s.MidAxillary = v
	case SiteAbdominal:
		s.Abdominal = v
	case SiteSuprailiac:
		s.Suprailiac = v
	case SiteThigh:
		s.Thigh = v
	}
	return s
}

// MeasurementSet is every raw input of one evaluation. It is passed by value
// and never mutated once built.
type MeasurementSet struct {
	Name      string    `json:"name"`
	Age       int       `json:"age"` // years
	Sex       Sex       `json:"sex"`
	StatureCm float64   `json:"stature_cm"`
	MassKg    float64   `json:"mass_kg"`
	WaistCm   float64   `json:"waist_cm"`
	HipCm     float64   `json:"hip_cm"`
	Skinfolds Skinfolds `json:"skinfolds"` // mm
}

// HasCircumferences reports whether both waist and hip were measured.
func (m MeasurementSet) HasCircumferences() bool {
	return m.WaistCm > 0 && m.HipCm > 0
}
