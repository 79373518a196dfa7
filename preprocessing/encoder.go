package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/fuelcast/core/model"
	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
)

// OrdinalEncoder maps string labels to the integers 0..n-1 in the order the
// labels are first seen. The mapping is a bijection: every label has
// exactly one code and every code names exactly one label.
type OrdinalEncoder struct {
	state *model.StateManager

	// Categories lists the labels by code
	Categories []string

	// CategoryToIdx maps a label to its code
	CategoryToIdx map[string]int
}

// NewOrdinalEncoder returns an unfitted OrdinalEncoder.
//
// Example:
//
//	enc := preprocessing.NewOrdinalEncoder()
//	err := enc.Fit([]string{"Kochi", "Kollam", "Kochi"})
//	code, ok := enc.Code("Kollam") // 1, true
func NewOrdinalEncoder() *OrdinalEncoder {
	return &OrdinalEncoder{state: model.NewStateManager()}
}

// Fit assigns codes to the distinct labels in first-occurrence order.
func (e *OrdinalEncoder) Fit(labels []string) (err error) {
	defer fcErrors.Recover(&err, "OrdinalEncoder.Fit")
	if len(labels) == 0 {
		return fcErrors.NewModelError("OrdinalEncoder.Fit", "empty data", fcErrors.ErrEmptyData)
	}

	categories := make([]string, 0)
	index := make(map[string]int)
	for _, label := range labels {
		if _, seen := index[label]; seen {
			continue
		}
		index[label] = len(categories)
		categories = append(categories, label)
	}

	e.Categories = categories
	e.CategoryToIdx = index
	e.state.SetFitted()
	e.state.SetDimensions(1, len(labels))
	return nil
}

// Code returns the code of label and whether label is known.
func (e *OrdinalEncoder) Code(label string) (int, bool) {
	if !e.state.IsFitted() {
		return -1, false
	}
	code, ok := e.CategoryToIdx[label]
	if !ok {
		return -1, false
	}
	return code, true
}

// Label returns the label for code and whether code is in range.
func (e *OrdinalEncoder) Label(code int) (string, bool) {
	if !e.state.IsFitted() || code < 0 || code >= len(e.Categories) {
		return "", false
	}
	return e.Categories[code], true
}

// Transform encodes labels as an (n, 1) column of codes.
//
// Errors:
//   - ErrNotFitted: if the encoder hasn't been fitted yet
//   - ValueError: if a label was not seen during Fit
func (e *OrdinalEncoder) Transform(labels []string) (_ mat.Matrix, err error) {
	defer fcErrors.Recover(&err, "OrdinalEncoder.Transform")
	if !e.state.IsFitted() {
		return nil, fcErrors.NewNotFittedError("OrdinalEncoder", "Transform")
	}
	if len(labels) == 0 {
		return nil, fcErrors.NewModelError("OrdinalEncoder.Transform", "empty data", fcErrors.ErrEmptyData)
	}

	out := mat.NewDense(len(labels), 1, nil)
	for i, label := range labels {
		code, ok := e.CategoryToIdx[label]
		if !ok {
			return nil, fcErrors.NewValueError("OrdinalEncoder.Transform", "unknown category "+label)
		}
		out.Set(i, 0, float64(code))
	}
	return out, nil
}

// Len returns the number of known labels.
func (e *OrdinalEncoder) Len() int {
	return len(e.Categories)
}

// Sorted returns the known labels in alphabetical order.
func (e *OrdinalEncoder) Sorted() []string {
	sorted := append([]string(nil), e.Categories...)
	sort.Strings(sorted)
	return sorted
}

// IsFitted returns whether the encoder has been fitted.
func (e *OrdinalEncoder) IsFitted() bool {
	return e.state.IsFitted()
}
