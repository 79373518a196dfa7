package forecast

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/fuelcast/dataset"
	"github.com/ezoic/fuelcast/decomposition"
	"github.com/ezoic/fuelcast/linear"
	"github.com/ezoic/fuelcast/metrics"
	"github.com/ezoic/fuelcast/pipeline"
	"github.com/ezoic/fuelcast/preprocessing"
	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
	"github.com/ezoic/fuelcast/pkg/log"
)

// Step names inside each feature pipeline.
const (
	StepScaler = "scaler"
	StepPCA    = "pca"
)

// NComponents is the dimensionality of the projected feature space.
const NComponents = 2

// Messages shown to users for rejected prediction inputs.
const (
	MsgMissingDate     = "Please select a date."
	MsgMissingDistrict = "Please select a district."
	MsgUnknownDistrict = "District not found."
	MsgInvalidFuelType = "Please select a fuel type."
)

// DistrictPlaceholder is the district value a form submits when nothing was chosen.
const DistrictPlaceholder = "Select district"

// FittedPipeline holds the fitted feature transforms and one regressor per
// fuel type. It is never mutated after Prepare returns, so Predict may be
// called from any number of goroutines.
type FittedPipeline struct {
	mode       FitMode
	districts  *preprocessing.OrdinalEncoder
	transforms map[dataset.FuelType]*pipeline.Pipeline
	regressors map[dataset.FuelType]*linear.LinearRegression
	reports    map[dataset.FuelType]metrics.Report
	logger     log.Logger
}

func newFeaturePipeline() *pipeline.Pipeline {
	return pipeline.New(
		pipeline.Step{Name: StepScaler, Transformer: preprocessing.NewStandardScalerDefault()},
		pipeline.Step{Name: StepPCA, Transformer: decomposition.NewPCA(NComponents)},
	)
}

// Mode returns the fit mode the pipeline was built with.
func (p *FittedPipeline) Mode() FitMode { return p.mode }

// Report returns the in-sample metrics of the fuel type's regressor.
func (p *FittedPipeline) Report(ft dataset.FuelType) (metrics.Report, bool) {
	r, ok := p.reports[ft]
	return r, ok
}

// Predict returns the predicted price for fuel in district on date.
//
// Inputs are checked in order: date, district, fuel type. Each rejection
// is a *errors.ValidationError marked with ErrMissingDate,
// ErrMissingDistrict, ErrUnknownDistrict or ErrInvalidFuelType. Dates are
// not bounded; the regressor extrapolates linearly.
func (p *FittedPipeline) Predict(date *time.Time, district, fuel string) (float64, error) {
	if date == nil {
		return 0, fcErrors.NewInputError(fcErrors.ErrMissingDate, "date", MsgMissingDate, nil)
	}
	if district == "" || district == DistrictPlaceholder {
		return 0, fcErrors.NewInputError(fcErrors.ErrMissingDistrict, "district", MsgMissingDistrict, district)
	}
	code, ok := p.districts.Code(district)
	if !ok {
		return 0, fcErrors.NewInputError(fcErrors.ErrUnknownDistrict, "district", MsgUnknownDistrict, district)
	}
	ft, ok := dataset.ParseFuelType(fuel)
	if !ok {
		return 0, fcErrors.NewInputError(fcErrors.ErrInvalidFuelType, "fuel_type", MsgInvalidFuelType, fuel)
	}

	x := mat.NewDense(1, 2, []float64{float64(dataset.Ordinal(*date)), float64(code)})
	y, err := p.predictFeatures(ft, x)
	if err != nil {
		return 0, err
	}

	p.logger.Debug("Prediction served",
		log.OperationKey, log.OperationPredict,
		log.FuelTypeKey, ft,
		log.DistrictKey, district,
		log.DateKey, date.Format(time.DateOnly),
	)
	return y.At(0, 0), nil
}

// PredictSeries predicts the fuel price in district for each date. Inputs
// are validated as in Predict.
func (p *FittedPipeline) PredictSeries(dates []time.Time, district, fuel string) ([]float64, error) {
	if len(dates) == 0 {
		return nil, fcErrors.NewInputError(fcErrors.ErrMissingDate, "date", MsgMissingDate, nil)
	}
	if _, err := p.Predict(&dates[0], district, fuel); err != nil {
		return nil, err
	}
	code, _ := p.districts.Code(district)
	ft, _ := dataset.ParseFuelType(fuel)

	x := mat.NewDense(len(dates), 2, nil)
	for i, d := range dates {
		x.Set(i, 0, float64(dataset.Ordinal(d)))
		x.Set(i, 1, float64(code))
	}
	y, err := p.predictFeatures(ft, x)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, y), nil
}

func (p *FittedPipeline) predictFeatures(ft dataset.FuelType, x mat.Matrix) (mat.Matrix, error) {
	z, err := p.transforms[ft].Transform(x)
	if err != nil {
		return nil, fcErrors.Wrapf(err, "transform %s features", ft)
	}
	y, err := p.regressors[ft].Predict(z)
	if err != nil {
		return nil, fcErrors.Wrapf(err, "predict %s", ft)
	}
	return y, nil
}

// ScalerParams are the fitted standardization statistics.
type ScalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// ProjectionParams are the fitted principal axes.
type ProjectionParams struct {
	Components             [][]float64 `json:"components"`
	Mean                   []float64   `json:"mean"`
	ExplainedVarianceRatio []float64   `json:"explained_variance_ratio"`
}

// RegressorParams are the fitted regression coefficients.
type RegressorParams struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Rank      int       `json:"rank"`
}

// FuelParams describe everything fitted for one fuel type.
type FuelParams struct {
	Scaler     ScalerParams     `json:"scaler"`
	Projection ProjectionParams `json:"projection"`
	Regressor  RegressorParams  `json:"regressor"`
	Metrics    metrics.Report   `json:"metrics"`
}

// Params is a copy of all fitted parameters.
type Params struct {
	Mode      FitMode                         `json:"fit_mode"`
	Districts []string                        `json:"districts"`
	Fuels     map[dataset.FuelType]FuelParams `json:"fuels"`
}

// Params returns a snapshot of the fitted parameters. Mutating the result
// does not affect the pipeline.
func (p *FittedPipeline) Params() Params {
	out := Params{
		Mode:      p.mode,
		Districts: append([]string(nil), p.districts.Categories...),
		Fuels:     make(map[dataset.FuelType]FuelParams, len(p.regressors)),
	}
	for _, ft := range dataset.FuelTypes {
		fp := FuelParams{Metrics: p.reports[ft]}

		tp := p.transforms[ft]
		if s, ok := tp.Named(StepScaler); ok {
			mean, scale := s.(*preprocessing.StandardScaler).Params()
			fp.Scaler = ScalerParams{Mean: mean, Scale: scale}
		}
		if s, ok := tp.Named(StepPCA); ok {
			pca := s.(*decomposition.PCA)
			components, mean := pca.Params()
			fp.Projection = ProjectionParams{
				Components:             components,
				Mean:                   mean,
				ExplainedVarianceRatio: append([]float64(nil), pca.ExplainedVarianceRatio...),
			}
		}

		reg := p.regressors[ft]
		fp.Regressor = RegressorParams{
			Weights:   reg.GetWeights(),
			Intercept: reg.GetIntercept(),
			Rank:      reg.Rank,
		}
		out.Fuels[ft] = fp
	}
	return out
}
