package model

// SkinfoldResult is the output of exactly one skinfold protocol.
// Either Error is set and the numeric fields are zero, or Error is nil.
type SkinfoldResult struct {
	Protocol Protocol `json:"protocol"`
	Name     string   `json:"name,omitempty"`
	Sum      float64  `json:"sum_mm,omitempty"`
	Density  float64  `json:"density,omitempty"`  // g/mL
	BodyFat  float64  `json:"body_fat,omitempty"` // percent
	Sites    string   `json:"sites,omitempty"`    // which skinfolds fed the sum
	Note     string   `json:"note,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	Error *EvalError `json:"error,omitempty"`
}

// Failed reports whether r carries an error payload.
func (r *SkinfoldResult) Failed() bool {
	return r != nil && r.Error != nil
}

// Err returns the error payload as an error, or nil.
func (r *SkinfoldResult) Err() error {
	if r == nil || r.Error == nil {
		return nil
	}
	return r.Error
}

// SkinfoldFailure builds the error variant for protocol p.
func SkinfoldFailure(p Protocol, kind ErrorKind, msg string) SkinfoldResult {
	return SkinfoldResult{Protocol: p, Error: NewEvalError(kind, msg)}
}

// IndexKind identifies a circumference/body index
type IndexKind string

const (
	IndexBMI         IndexKind = "imc"
	IndexWaistHeight IndexKind = "rce"
	IndexWaistHip    IndexKind = "rcq"
	IndexPlaceholder IndexKind = "placeholder"
)

// IndexResult is the output of one circumference/body index.
// Value is nil for the placeholder that replaces the three indices when
// waist or hip is missing.
type IndexResult struct {
	Kind      IndexKind `json:"kind"`
	Name      string    `json:"name"`
	Value     *float64  `json:"value,omitempty"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	Threshold float64   `json:"threshold,omitempty"` // sex-specific cut-off, RCQ only
}

// HasValue reports whether the index carries a numeric value.
func (r IndexResult) HasValue() bool {
	return r.Value != nil
}

// EvaluationResult is the terminal artifact handed to renderers and exporters.
type EvaluationResult struct {
	Name     string          `json:"name"`
	Age      int             `json:"age"`
	Sex      Sex             `json:"sex"`
	Skinfold *SkinfoldResult `json:"skinfold,omitempty"`
	Indices  []IndexResult   `json:"indices"`
}

// Classification is the classifier's verdict on a body-fat percentage.
type Classification struct {
	Category string     `json:"category,omitempty"`
	Band     string     `json:"band,omitempty"`
	Error    *EvalError `json:"error,omitempty"`
}

// Label composes "<category> (Faixa Etária: <band>)", or the descriptive
// message when no classification was possible.
func (c Classification) Label() string {
	if c.Error != nil {
		return c.Error.Message
	}
	return c.Category + " (Faixa Etária: " + c.Band + ")"
}

// Available reports whether a category was assigned.
func (c Classification) Available() bool {
	return c.Error == nil && c.Category != ""
}
