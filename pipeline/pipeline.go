// Package pipeline chains fitted transformers.
//
// A Pipeline is an ordered list of named model.Transformer steps. Fit fits
// each step on the output of the previous one; Transform runs the fitted
// steps in order without refitting. Fitting a pipeline on one dataset and
// transforming another therefore applies the first dataset's statistics to
// the second:
//
//	p := pipeline.New(
//		pipeline.Step{Name: "scaler", Transformer: preprocessing.NewStandardScalerDefault()},
//		pipeline.Step{Name: "pca", Transformer: decomposition.NewPCA(2)},
//	)
//	petrolPCA, err := p.FitTransform(petrolFeatures)
//	dieselPCA, err := p.Transform(dieselFeatures)
package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/fuelcast/core/model"
	"github.com/ezoic/fuelcast/pkg/errors"
	"github.com/ezoic/fuelcast/pkg/log"
)

// Step is a single named stage of the pipeline.
type Step struct {
	Name        string
	Transformer model.Transformer
}

// Pipeline applies its steps in order.
type Pipeline struct {
	state  *model.StateManager
	logger log.Logger

	steps      []Step
	namedSteps map[string]model.Transformer
}

// New creates a Pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	named := make(map[string]model.Transformer, len(steps))
	for _, step := range steps {
		named[step.Name] = step.Transformer
	}

	return &Pipeline{
		state:      model.NewStateManager(),
		logger:     log.GetLoggerWithName("Pipeline"),
		steps:      steps,
		namedSteps: named,
	}
}

// Fit fits every step in order, feeding each the previous step's output.
func (p *Pipeline) Fit(X mat.Matrix) error {
	_, err := p.FitTransform(X)
	return err
}

// FitTransform fits every step and returns the final transformed data.
func (p *Pipeline) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if len(p.steps) == 0 {
		return nil, errors.NewValidationError("pipeline", "pipeline has no steps", 0)
	}

	Xt := X
	var err error
	for _, step := range p.steps {
		Xt, err = step.Transformer.FitTransform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to fit step '%s'", step.Name))
		}
	}

	r, c := X.Dims()
	p.state.SetFitted()
	p.state.SetDimensions(c, r)
	p.logger.Debug("Pipeline fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		"steps", p.stepNames(),
	)
	return Xt, nil
}

// Transform applies the fitted steps to X. No step is refitted.
func (p *Pipeline) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !p.state.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Transform")
	}

	Xt := X
	var err error
	for _, step := range p.steps {
		Xt, err = step.Transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to transform at step '%s'", step.Name))
		}
	}
	return Xt, nil
}

// IsFitted reports whether Fit or FitTransform has succeeded.
func (p *Pipeline) IsFitted() bool {
	return p.state.IsFitted()
}

// Named returns the transformer registered under name.
func (p *Pipeline) Named(name string) (model.Transformer, bool) {
	t, ok := p.namedSteps[name]
	return t, ok
}

// Steps returns a copy of the step list.
func (p *Pipeline) Steps() []Step {
	steps := make([]Step, len(p.steps))
	copy(steps, p.steps)
	return steps
}

func (p *Pipeline) stepNames() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name
	}
	return names
}
