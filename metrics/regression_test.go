package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/fuelcast/metrics"
	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
)

func TestRegressionMetrics_Errors(t *testing.T) {
	empty := &mat.VecDense{}
	a := mat.NewVecDense(3, []float64{1, 2, 3})
	b := mat.NewVecDense(2, []float64{1, 2})

	for name, fn := range map[string]func(x, y *mat.VecDense) (float64, error){
		"MSE":  metrics.MSE,
		"RMSE": metrics.RMSE,
		"MAE":  metrics.MAE,
		"R2":   metrics.R2Score,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := fn(empty, empty)
			var valErr *fcErrors.ValueError
			assert.True(t, fcErrors.As(err, &valErr))

			_, err = fn(a, b)
			assert.True(t, fcErrors.Is(err, fcErrors.ErrDimensionMismatch))
		})
	}
}

func TestR2Score_NoVariance(t *testing.T) {
	y := mat.NewVecDense(2, []float64{95, 95})
	_, err := metrics.R2Score(y, y)
	require.Error(t, err)

	rep, err := metrics.Evaluate(y, mat.NewVecDense(2, []float64{94, 96}))
	require.NoError(t, err)
	assert.Nil(t, rep.R2)
	assert.InDelta(t, 1.0, rep.RMSE, 1e-12)
	assert.InDelta(t, 1.0, rep.MAE, 1e-12)
}
