package model

// ErrorKind classifies a calculation failure. None of them are fatal to the process.
type ErrorKind string

const (
	KindMissingRequiredFields     ErrorKind = "missing_required_fields"
	KindMissingSkinfolds          ErrorKind = "missing_skinfolds"
	KindUnspecifiedSex            ErrorKind = "unspecified_sex"
	KindAgeOutOfRange             ErrorKind = "age_out_of_range"
	KindClassificationUnavailable ErrorKind = "classification_unavailable"
)

// EvalError is the inline error payload carried by results.
type EvalError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *EvalError) Error() string {
	return e.Message
}

// Is matches on Kind so callers can write errors.Is(err, model.ErrMissingSkinfolds).
func (e *EvalError) Is(target error) bool {
	t, ok := target.(*EvalError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewEvalError builds an error payload of the given kind.
func NewEvalError(kind ErrorKind, msg string) *EvalError {
	return &EvalError{Kind: kind, Message: msg}
}

// Sentinels for errors.Is comparisons
var (
	ErrMissingRequiredFields     = &EvalError{Kind: KindMissingRequiredFields}
	ErrMissingSkinfolds          = &EvalError{Kind: KindMissingSkinfolds}
	ErrUnspecifiedSex            = &EvalError{Kind: KindUnspecifiedSex}
	ErrAgeOutOfRange             = &EvalError{Kind: KindAgeOutOfRange}
	ErrClassificationUnavailable = &EvalError{Kind: KindClassificationUnavailable}
)
