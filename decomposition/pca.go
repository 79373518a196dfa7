// Package decomposition provides linear dimensionality reduction.
//
// PCA projects centered data onto its leading principal axes, computed
// from a singular value decomposition (gonum/stat.PC). Component signs are
// normalized so the largest-magnitude loading of every component is
// positive, which makes repeated fits on the same data produce identical
// parameters.
package decomposition

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/fuelcast/core/model"
	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
	"github.com/ezoic/fuelcast/pkg/log"
)

// PCA is principal component analysis without whitening.
type PCA struct {
	state  *model.StateManager
	logger log.Logger

	// NComponents is the number of components kept
	NComponents int

	// Components holds one principal axis per row, shape (NComponents, NFeatures)
	Components *mat.Dense

	// Mean is the per-feature mean removed before projection
	Mean []float64

	// ExplainedVariance is the variance captured by each component
	ExplainedVariance []float64

	// ExplainedVarianceRatio is ExplainedVariance over the total variance
	ExplainedVarianceRatio []float64

	// NFeatures is the number of input features seen during Fit
	NFeatures int
}

// NewPCA creates a PCA keeping nComponents components.
//
// Example:
//
//	pca := decomposition.NewPCA(2)
//	projected, err := pca.FitTransform(scaled)
func NewPCA(nComponents int) *PCA {
	return &PCA{
		state:       model.NewStateManager(),
		logger:      log.GetLoggerWithName("decomposition").With(log.ModelNameKey, "PCA"),
		NComponents: nComponents,
	}
}

// Fit learns the mean and principal axes of X.
//
// Errors:
//   - ErrEmptyData: if X is empty
//   - ErrInsufficientData: if NComponents exceeds min(n_samples, n_features)
//   - ValueError: if NComponents is not positive
func (p *PCA) Fit(X mat.Matrix) (err error) {
	defer fcErrors.Recover(&err, "PCA.Fit")
	start := time.Now()

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return fcErrors.NewModelError("PCA.Fit", "empty data", fcErrors.ErrEmptyData)
	}
	if p.NComponents <= 0 {
		return fcErrors.NewValueError("PCA.Fit", "n_components must be positive")
	}
	if p.NComponents > r || p.NComponents > c {
		return fcErrors.NewModelError("PCA.Fit",
			fmt.Sprintf("n_components=%d must be <= min(n_samples=%d, n_features=%d)", p.NComponents, r, c),
			fcErrors.ErrInsufficientData)
	}

	mean := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean[j] = stat.Mean(col, nil)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(X, nil); !ok {
		return fcErrors.NewModelError("PCA.Fit", "singular value decomposition failed", fcErrors.ErrSingularMatrix)
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	components := mat.NewDense(p.NComponents, c, nil)
	for k := 0; k < p.NComponents; k++ {
		// Columns of vecs are the axes; flip so the dominant loading is positive.
		sign := 1.0
		maxAbs := -1.0
		for j := 0; j < c; j++ {
			if v := math.Abs(vecs.At(j, k)); v > maxAbs {
				maxAbs = v
				if vecs.At(j, k) < 0 {
					sign = -1.0
				} else {
					sign = 1.0
				}
			}
		}
		for j := 0; j < c; j++ {
			components.Set(k, j, sign*vecs.At(j, k))
		}
	}

	total := 0.0
	for _, v := range vars {
		total += v
	}
	explained := make([]float64, p.NComponents)
	ratio := make([]float64, p.NComponents)
	for k := 0; k < p.NComponents; k++ {
		if k < len(vars) {
			explained[k] = vars[k]
		}
		if total > 0 {
			ratio[k] = explained[k] / total
		}
	}

	p.Mean = mean
	p.Components = components
	p.ExplainedVariance = explained
	p.ExplainedVarianceRatio = ratio
	p.NFeatures = c
	p.state.SetFitted()
	p.state.SetDimensions(c, r)

	p.logger.Debug("PCA fitted",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.ComponentsKey, p.NComponents,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Transform projects X onto the fitted components: (X - mean) * Components^T.
//
// Errors:
//   - ErrNotFitted: if the PCA hasn't been fitted yet
//   - ErrDimensionMismatch: if X doesn't match the number of features from training
func (p *PCA) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer fcErrors.Recover(&err, "PCA.Transform")
	if !p.state.IsFitted() {
		return nil, fcErrors.NewNotFittedError("PCA", "Transform")
	}

	r, c := X.Dims()
	if c != p.NFeatures {
		return nil, fcErrors.NewDimensionError("PCA.Transform", p.NFeatures, c, 1)
	}

	centered := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			centered.Set(i, j, X.At(i, j)-p.Mean[j])
		}
	}

	var out mat.Dense
	out.Mul(centered, p.Components.T())
	return &out, nil
}

// FitTransform fits the PCA on X and returns the projection of X.
func (p *PCA) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer fcErrors.Recover(&err, "PCA.FitTransform")
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// IsFitted returns whether the PCA has been fitted.
func (p *PCA) IsFitted() bool {
	return p.state.IsFitted()
}

// Params returns copies of the fitted components (row per component) and mean.
func (p *PCA) Params() (components [][]float64, mean []float64) {
	if p.Components == nil {
		return nil, append([]float64(nil), p.Mean...)
	}
	r, _ := p.Components.Dims()
	components = make([][]float64, r)
	for k := 0; k < r; k++ {
		components[k] = mat.Row(nil, k, p.Components)
	}
	return components, append([]float64(nil), p.Mean...)
}

func (p *PCA) String() string {
	return fmt.Sprintf("PCA(n_components=%d)", p.NComponents)
}
