// Package forecast fits the fuel price models and serves predictions.
//
// Prepare turns a loaded dataset into an immutable Model: districts are
// encoded in first-occurrence order, each record becomes the feature pair
// (date ordinal, district code), features are standardized and projected
// onto two principal components, and one least squares regressor is fitted
// per fuel type. Only Petrol and Diesel rows are used for training.
//
// In the default shared fit mode the scaler and projection are fitted on
// Petrol features alone and then applied, transform-only, to Diesel
// features. FitMode selects the per-fuel and union alternatives.
//
//	m, err := forecast.Prepare(ds, forecast.ModeShared)
//	price, err := m.Predict(&date, "Kochi", "Petrol")
package forecast

import (
	"fmt"
	"math"
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

// Model is the prepared prediction state: the fitted pipeline, the district
// mapping it was fitted with, and the training history.
type Model struct {
	Pipeline        *FittedPipeline
	Districts       *preprocessing.OrdinalEncoder
	SortedDistricts []string
	History         *dataset.Dataset
}

// Predict is shorthand for m.Pipeline.Predict.
func (m *Model) Predict(date *time.Time, district, fuel string) (float64, error) {
	return m.Pipeline.Predict(date, district, fuel)
}

// Observations returns the historical records for district and fuel, in
// source order.
func (m *Model) Observations(district string, ft dataset.FuelType) []dataset.PriceRecord {
	var out []dataset.PriceRecord
	for _, r := range m.History.ByFuel(ft) {
		if r.District == district {
			out = append(out, r)
		}
	}
	return out
}

type subset struct {
	X *mat.Dense
	y *mat.Dense
}

// Prepare fits the district mapping, feature pipelines and regressors.
//
// Errors:
//   - ErrInsufficientData: if either fuel type has no records, or the
//     subset a projection is fitted on has fewer rows than NComponents
//   - ValidationError: if mode is not a known FitMode (empty means ModeShared)
func Prepare(ds *dataset.Dataset, mode FitMode) (*Model, error) {
	mode, err := ParseFitMode(string(mode))
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("forecast").With(
		log.ComponentKey, "forecast",
		log.FitModeKey, mode,
	)
	start := time.Now()

	logger.Info("Preparation started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SourceKey, ds.Source,
		log.SamplesKey, len(ds.Records),
	)

	labels := make([]string, len(ds.Records))
	for i, r := range ds.Records {
		labels[i] = r.District
	}
	districts := preprocessing.NewOrdinalEncoder()
	if err := districts.Fit(labels); err != nil {
		return nil, fcErrors.NewModelError("forecast.Prepare", "no records", fcErrors.ErrInsufficientData)
	}

	if n := ds.Unmodelled(); n > 0 {
		logger.Debug("Excluded records with unmodelled fuel labels", "n_excluded", n)
	}

	subsets := make(map[dataset.FuelType]subset, len(dataset.FuelTypes))
	for _, ft := range dataset.FuelTypes {
		s, err := buildSubset(ds, districts, ft)
		if err != nil {
			return nil, err
		}
		subsets[ft] = s
	}

	transforms, projected, err := fitTransforms(mode, subsets)
	if err != nil {
		return nil, err
	}

	fp := &FittedPipeline{
		mode:       mode,
		districts:  districts,
		transforms: transforms,
		regressors: make(map[dataset.FuelType]*linear.LinearRegression, len(subsets)),
		reports:    make(map[dataset.FuelType]metrics.Report, len(subsets)),
		logger:     logger,
	}

	for _, ft := range dataset.FuelTypes {
		reg := linear.NewLinearRegression()
		if err := reg.Fit(projected[ft], subsets[ft].y); err != nil {
			return nil, fcErrors.Wrapf(err, "fit %s regressor", ft)
		}
		fp.regressors[ft] = reg

		rep, err := evaluate(reg, projected[ft], subsets[ft].y)
		if err != nil {
			return nil, fcErrors.Wrapf(err, "evaluate %s regressor", ft)
		}
		fp.reports[ft] = rep

		fields := []interface{}{
			log.FuelTypeKey, ft,
			log.SamplesKey, rep.Samples,
			"rmse", rep.RMSE,
			"mae", rep.MAE,
			"rank", reg.Rank,
		}
		if rep.R2 != nil {
			fields = append(fields, "r2", *rep.R2)
		}
		if step, ok := transforms[ft].Named(StepPCA); ok {
			fields = append(fields, "explained_variance_ratio", step.(*decomposition.PCA).ExplainedVarianceRatio)
		}
		logger.Info("Regressor fitted", fields...)
	}

	logger.Info("Preparation completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		"n_districts", districts.Len(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Model{
		Pipeline:        fp,
		Districts:       districts,
		SortedDistricts: districts.Sorted(),
		History:         ds,
	}, nil
}

func buildSubset(ds *dataset.Dataset, districts *preprocessing.OrdinalEncoder, ft dataset.FuelType) (subset, error) {
	records := ds.ByFuel(ft)
	if len(records) == 0 {
		return subset{}, fcErrors.NewModelError("forecast.Prepare",
			fmt.Sprintf("no %s records", ft), fcErrors.ErrInsufficientData)
	}

	X := mat.NewDense(len(records), 2, nil)
	y := mat.NewDense(len(records), 1, nil)
	for i, r := range records {
		if math.IsNaN(r.Price) || math.IsInf(r.Price, 0) {
			return subset{}, fcErrors.NewValueError("forecast.Prepare",
				fmt.Sprintf("%s price on %s in %s is not finite", ft, r.Date.Format(time.DateOnly), r.District))
		}
		code, _ := districts.Code(r.District)
		X.Set(i, 0, float64(dataset.Ordinal(r.Date)))
		X.Set(i, 1, float64(code))
		y.Set(i, 0, r.Price)
	}
	return subset{X: X, y: y}, nil
}

// fitTransforms fits the feature pipelines for mode and returns the
// projected features of every subset.
func fitTransforms(mode FitMode, subsets map[dataset.FuelType]subset) (map[dataset.FuelType]*pipeline.Pipeline, map[dataset.FuelType]mat.Matrix, error) {
	transforms := make(map[dataset.FuelType]*pipeline.Pipeline, len(subsets))
	projected := make(map[dataset.FuelType]mat.Matrix, len(subsets))

	switch mode {
	case ModePerFuel:
		for _, ft := range dataset.FuelTypes {
			tp := newFeaturePipeline()
			z, err := tp.FitTransform(subsets[ft].X)
			if err != nil {
				return nil, nil, fcErrors.Wrapf(err, "fit %s features", ft)
			}
			transforms[ft] = tp
			projected[ft] = z
		}
		return transforms, projected, nil

	case ModeUnion:
		tp := newFeaturePipeline()
		var union mat.Dense
		union.Stack(subsets[dataset.Petrol].X, subsets[dataset.Diesel].X)
		if err := tp.Fit(&union); err != nil {
			return nil, nil, fcErrors.Wrap(err, "fit union features")
		}
		for _, ft := range dataset.FuelTypes {
			transforms[ft] = tp
		}

	default:
		tp := newFeaturePipeline()
		if err := tp.Fit(subsets[dataset.Petrol].X); err != nil {
			return nil, nil, fcErrors.Wrapf(err, "fit %s features", dataset.Petrol)
		}
		for _, ft := range dataset.FuelTypes {
			transforms[ft] = tp
		}
	}

	for _, ft := range dataset.FuelTypes {
		z, err := transforms[ft].Transform(subsets[ft].X)
		if err != nil {
			return nil, nil, fcErrors.Wrapf(err, "transform %s features", ft)
		}
		projected[ft] = z
	}
	return transforms, projected, nil
}

func evaluate(reg *linear.LinearRegression, X, y mat.Matrix) (metrics.Report, error) {
	yPred, err := reg.Predict(X)
	if err != nil {
		return metrics.Report{}, err
	}
	n, _ := y.Dims()
	return metrics.Evaluate(
		mat.NewVecDense(n, mat.Col(nil, 0, y)),
		mat.NewVecDense(n, mat.Col(nil, 0, yPred)),
	)
}
