// Package preprocessing provides feature preparation for the fuel price models.
//
// This package implements scikit-learn compatible preprocessing components:
//
//   - StandardScaler: Standardizes features by removing the mean and scaling to unit variance
//   - OrdinalEncoder: Maps categorical labels to integer codes in first-seen order
//
// Components follow the Fit / Transform / FitTransform pattern. Transform
// only reads fitted statistics, so a fitted component can be applied to any
// number of datasets (and from concurrent goroutines) without changing.
//
// Example usage:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	err := scaler.Fit(petrolFeatures)
//	if err != nil {
//		log.Fatal(err)
//	}
//	dieselScaled, err := scaler.Transform(dieselFeatures)
package preprocessing

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/fuelcast/core/model"
	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
	"github.com/ezoic/fuelcast/pkg/log"
)

// zeroScaleTolerance is the standard deviation below which a feature is
// treated as constant and left unscaled.
const zeroScaleTolerance = 1e-8

// StandardScaler standardizes features to zero mean and unit variance.
type StandardScaler struct {
	state  *model.StateManager
	logger log.Logger

	// Mean is the per-feature mean seen during Fit
	Mean []float64

	// Scale is the per-feature population standard deviation seen during Fit
	Scale []float64

	// NFeatures is the number of features seen during Fit
	NFeatures int

	// WithMean controls centering (default: true)
	WithMean bool

	// WithStd controls scaling to unit variance (default: true)
	WithStd bool
}

// NewStandardScaler creates a new StandardScaler for feature standardization.
//
// Parameters:
//   - withMean: whether to center the data at zero by removing the mean
//   - withStd: whether to scale the data to unit variance
//
// Example:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	err := scaler.Fit(X_train)
//	X_scaled, err := scaler.Transform(X_test)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		logger:   log.GetLoggerWithName("preprocessing").With(log.ModelNameKey, "StandardScaler"),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault creates a StandardScaler that both centers and scales.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit computes the statistics (mean and scale) from the training data.
//
// The standard deviation is the population one (divided by n). Features
// whose standard deviation is effectively zero get a scale of 1 so that
// Transform never divides by zero.
//
// Errors:
//   - ErrEmptyData: if X is empty
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer fcErrors.Recover(&err, "StandardScaler.Fit")
	start := time.Now()
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return fcErrors.NewModelError("StandardScaler.Fit", "empty data", fcErrors.ErrEmptyData)
	}

	mean := make([]float64, c)
	scale := make([]float64, c)

	if s.WithMean {
		for j := 0; j < c; j++ {
			sum := 0.0
			for i := 0; i < r; i++ {
				sum += X.At(i, j)
			}
			mean[j] = sum / float64(r)
		}
	}

	for j := 0; j < c; j++ {
		if !s.WithStd {
			scale[j] = 1.0
			continue
		}
		// Spread is measured around the true mean even when centering is off.
		mu := mean[j]
		if !s.WithMean {
			sum := 0.0
			for i := 0; i < r; i++ {
				sum += X.At(i, j)
			}
			mu = sum / float64(r)
		}
		sumSquares := 0.0
		for i := 0; i < r; i++ {
			diff := X.At(i, j) - mu
			sumSquares += diff * diff
		}
		scale[j] = math.Sqrt(sumSquares / float64(r))
		if math.Abs(scale[j]) < zeroScaleTolerance {
			scale[j] = 1.0
		}
	}

	s.Mean = mean
	s.Scale = scale
	s.NFeatures = c
	s.state.SetFitted()
	s.state.SetDimensions(c, r)

	s.logger.Debug("Scaler fitted",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Transform applies X_scaled = (X - mean) / scale using fitted statistics.
//
// Errors:
//   - ErrNotFitted: if the scaler hasn't been fitted yet
//   - ErrDimensionMismatch: if X doesn't match the number of features from training
func (s *StandardScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer fcErrors.Recover(&err, "StandardScaler.Transform")
	if !s.IsFitted() {
		return nil, fcErrors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, fcErrors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}

	return result, nil
}

// FitTransform fits the scaler and transforms the training data in one step.
func (s *StandardScaler) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer fcErrors.Recover(&err, "StandardScaler.FitTransform")
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform reverses the standardization: X = X_scaled * scale + mean.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer fcErrors.Recover(&err, "StandardScaler.InverseTransform")
	if !s.IsFitted() {
		return nil, fcErrors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, fcErrors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}

	return result, nil
}

// IsFitted returns whether the scaler has been fitted.
func (s *StandardScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// Params returns copies of the fitted mean and scale.
func (s *StandardScaler) Params() (mean, scale []float64) {
	return append([]float64(nil), s.Mean...), append([]float64(nil), s.Scale...)
}

// GetParams returns the scaler's hyperparameters
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}
