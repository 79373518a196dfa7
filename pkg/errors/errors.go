// Package errors provides the error types shared by every fuelcast package.
//
// It wraps github.com/cockroachdb/errors so that callers get stack traces
// (printed with %+v), error marks and the usual Is/As helpers from one
// import, and adds typed errors for the situations the estimators and the
// prediction service distinguish:
//
//   - ValueError: an argument has an unusable value
//   - DimensionError: a matrix or vector has the wrong shape
//   - NotFittedError: an estimator was used before Fit
//   - ModelError: an estimator operation failed, wrapping a sentinel cause
//   - ValidationError: user input was rejected (re-promptable)
//   - ParseError: a raw field could not be parsed
//   - LoadError: the dataset could not be loaded (fatal at startup)
//
// Sentinels are compared with Is; typed errors are extracted with As.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel causes. Typed errors wrap one of these so that errors.Is can
// classify a failure without knowing its concrete type.
var (
	ErrEmptyData         = errors.New("empty data")
	ErrNotImplemented    = errors.New("not implemented")
	ErrSingularMatrix    = errors.New("singular matrix")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNotFitted         = errors.New("not fitted")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrMissingDate       = errors.New("missing date")
	ErrMissingDistrict   = errors.New("missing district")
	ErrUnknownDistrict   = errors.New("unknown district")
	ErrInvalidFuelType   = errors.New("invalid fuel type")
	ErrDateOutOfRange    = errors.New("date out of range")
)

// New, Newf, Wrap, Wrapf, Is, As, Mark and Unwrap are re-exported from
// cockroachdb/errors so packages need a single errors import.
var (
	New    = errors.New
	Newf   = errors.Newf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
	Mark   = errors.Mark
	Unwrap = errors.Unwrap
)

// ValueError reports an argument with an unusable value.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError for the given operation.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("fuelcast: %s: %s", e.Op, e.Message)
}

// DimensionError reports a shape mismatch along Axis (0 rows, 1 columns).
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

func (e *DimensionError) Error() string {
	axis := "rows"
	if e.Axis == 1 {
		axis = "columns"
	}
	return fmt.Sprintf("fuelcast: %s: dimension mismatch in %s: expected %d, got %d", e.Op, axis, e.Expected, e.Got)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// NotFittedError reports that an estimator method was called before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("fuelcast: %s: this %s instance is not fitted yet, call Fit before %s", e.ModelName, e.ModelName, e.Method)
}

func (e *NotFittedError) Unwrap() error { return ErrNotFitted }

// ModelError is an estimator failure with an underlying cause.
type ModelError struct {
	Op     string
	Kind   string
	Reason error
}

// NewModelError creates a ModelError wrapping reason.
func NewModelError(op, kind string, reason error) error {
	return &ModelError{Op: op, Kind: kind, Reason: reason}
}

func (e *ModelError) Error() string {
	if e.Reason == nil {
		return fmt.Sprintf("fuelcast: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("fuelcast: %s: %s: %v", e.Op, e.Kind, e.Reason)
}

func (e *ModelError) Unwrap() error { return e.Reason }

// ValidationError is a rejected input. Message is safe to show to a user.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

// NewValidationError creates a ValidationError for the named parameter.
func NewValidationError(param, reason string, value interface{}) error {
	return &ValidationError{ParamName: param, Reason: reason, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (got %v)", e.ParamName, e.Reason, e.Value)
}

// Message returns the user-facing reason without the parameter echo.
func (e *ValidationError) Message() string {
	return e.Reason
}

// NewInputError is a ValidationError marked with a sentinel, so that both
// As(*ValidationError) and Is(sentinel) hold for the result.
func NewInputError(sentinel error, param, reason string, value interface{}) error {
	return errors.Mark(NewValidationError(param, reason, value), sentinel)
}

// ParseError reports a raw field that did not match its expected format.
type ParseError struct {
	Field  string
	Value  string
	Format string
}

// NewParseError creates a ParseError.
func NewParseError(field, value, format string) error {
	return &ParseError{Field: field, Value: value, Format: format}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q: expected %s", e.Field, e.Value, e.Format)
}

// LoadError reports a dataset that could not be read. Row is the 1-based
// data row (header excluded), or 0 when the failure is not row specific.
type LoadError struct {
	Source string
	Row    int
	Err    error
}

// NewLoadError wraps err with the dataset source and row.
func NewLoadError(source string, row int, err error) error {
	return errors.WithStack(&LoadError{Source: source, Row: row, Err: err})
}

func (e *LoadError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("load %s: row %d: %v", e.Source, e.Row, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Recover converts a panic raised inside op into an error stored in *err.
// It must be deferred directly.
func Recover(err *error, op string) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = errors.Wrapf(e, "%s: recovered from panic", op)
			return
		}
		*err = errors.Newf("%s: recovered from panic: %v", op, r)
	}
}
