package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/fuelcast/metrics"
	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
)

func TestLinearRegression_Fit(t *testing.T) {
	tests := []struct {
		name    string
		X       *mat.Dense
		y       mat.Matrix
		wantErr error
	}{
		{
			name: "simple linear relationship y = 2x + 1",
			X:    mat.NewDense(5, 1, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			y:    mat.NewVecDense(5, []float64{3.0, 5.0, 7.0, 9.0, 11.0}),
		},
		{
			name: "multiple features",
			X: mat.NewDense(5, 2, []float64{
				1.0, 2.0,
				2.0, 1.0,
				3.0, 4.0,
				4.0, 3.0,
				5.0, 5.0,
			}),
			y: mat.NewVecDense(5, []float64{5.0, 4.0, 11.0, 10.0, 15.0}),
		},
		{
			name:    "mismatched dimensions",
			X:       mat.NewDense(3, 2, []float64{1.0, 2.0, 3.0, 4.0, 5.0, 6.0}),
			y:       mat.NewVecDense(2, []float64{1.0, 2.0}),
			wantErr: fcErrors.ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewLinearRegression()
			err := lr.Fit(tt.X, tt.y)

			if tt.wantErr != nil {
				assert.True(t, fcErrors.Is(err, tt.wantErr), "got %v", err)
				assert.False(t, lr.IsFitted())
				return
			}
			require.NoError(t, err)
			assert.True(t, lr.IsFitted())
		})
	}
}

func TestLinearRegression_EmptyData(t *testing.T) {
	lr := NewLinearRegression()
	err := lr.Fit(&mat.Dense{}, &mat.VecDense{})
	assert.Error(t, err)
}

func TestLinearRegression_Predict(t *testing.T) {
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(
		mat.NewDense(5, 1, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
		mat.NewVecDense(5, []float64{3.0, 5.0, 7.0, 9.0, 11.0}),
	))

	pred, err := lr.Predict(mat.NewDense(3, 1, []float64{0.0, 6.0, 10.0}))
	require.NoError(t, err)
	r, c := pred.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 1, c)
	assert.InDeltaSlice(t, []float64{1.0, 13.0, 21.0}, mat.Col(nil, 0, pred), 1e-9)

	assert.InDeltaSlice(t, []float64{2.0}, lr.GetWeights(), 1e-9)
	assert.InDelta(t, 1.0, lr.GetIntercept(), 1e-9)
	assert.Equal(t, 1, lr.Rank)

	_, err = lr.Predict(mat.NewDense(2, 2, []float64{1.0, 2.0, 3.0, 4.0}))
	assert.True(t, fcErrors.Is(err, fcErrors.ErrDimensionMismatch))
}

func TestLinearRegression_PredictNotFitted(t *testing.T) {
	lr := NewLinearRegression()
	_, err := lr.Predict(mat.NewDense(2, 1, []float64{1.0, 2.0}))
	assert.True(t, fcErrors.Is(err, fcErrors.ErrNotFitted))
	assert.Zero(t, lr.GetIntercept())
	assert.Nil(t, lr.GetWeights())
}

func TestLinearRegression_MultipleFeatures(t *testing.T) {
	// y = 1*x1 + 2*x2 + 3
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(
		mat.NewDense(6, 2, []float64{
			1.0, 1.0,
			2.0, 1.0,
			1.0, 2.0,
			3.0, 2.0,
			2.0, 3.0,
			4.0, 3.0,
		}),
		mat.NewVecDense(6, []float64{6.0, 7.0, 8.0, 10.0, 11.0, 13.0}),
	))

	pred, err := lr.Predict(mat.NewDense(2, 2, []float64{
		5.0, 1.0,
		1.0, 4.0,
	}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10.0, 12.0}, mat.Col(nil, 0, pred), 1e-9)
	assert.Equal(t, 2, lr.Rank)
}

func TestLinearRegression_ConstantFeatureGetsZeroWeight(t *testing.T) {
	// Second column is constant, as for a single-district dataset after PCA.
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(
		mat.NewDense(2, 2, []float64{
			-1, 0,
			1, 0,
		}),
		mat.NewVecDense(2, []float64{100, 110}),
	))

	assert.Equal(t, 1, lr.Rank)
	assert.InDeltaSlice(t, []float64{5, 0}, lr.GetWeights(), 1e-9)
	assert.InDelta(t, 105.0, lr.GetIntercept(), 1e-9)
}

func TestLinearRegression_SingleSample(t *testing.T) {
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(
		mat.NewDense(1, 2, []float64{0.4, -0.7}),
		mat.NewVecDense(1, []float64{92.5}),
	))
	assert.Equal(t, 0, lr.Rank)

	pred, err := lr.Predict(mat.NewDense(1, 2, []float64{3, 3}))
	require.NoError(t, err)
	assert.InDelta(t, 92.5, pred.At(0, 0), 1e-12)
}

func TestLinearRegression_Score(t *testing.T) {
	lr := NewLinearRegression()
	X := mat.NewDense(10, 1, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	y := mat.NewVecDense(10, []float64{3, 5, 7, 9, 11, 13, 15, 17, 19, 21})
	require.NoError(t, lr.Fit(X, y))

	pred, err := lr.Predict(X)
	require.NoError(t, err)
	mse, err := metrics.MSE(y, mat.VecDenseCopyOf(pred.(*mat.Dense).ColView(0)))
	require.NoError(t, err)
	assert.Less(t, mse, 1e-12)

	r2, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r2, 1e-12)

	_, err = NewLinearRegression().Score(X, y)
	assert.True(t, fcErrors.Is(err, fcErrors.ErrNotFitted))
}

func TestLinearRegression_Deterministic(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0.3, -1.2,
		1.1, 0.4,
		-0.8, 0.9,
		-0.6, -0.1,
	})
	y := mat.NewVecDense(4, []float64{101.2, 104.9, 99.7, 100.3})

	a, b := NewLinearRegression(), NewLinearRegression()
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	assert.Equal(t, a.GetWeights(), b.GetWeights())
	assert.Equal(t, a.GetIntercept(), b.GetIntercept())
}
