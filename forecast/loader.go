package forecast

import (
	"context"
	"sync"
	"time"

	"github.com/ezoic/fuelcast/dataset"
)

// LoadFunc produces the dataset a Loader prepares.
type LoadFunc func(ctx context.Context) (*dataset.Dataset, error)

// Loader prepares a Model at most once per process. The first call to Model
// loads and fits; every later call returns the same *Model, or the same
// error if the first attempt failed.
type Loader struct {
	load LoadFunc
	mode FitMode

	once  sync.Once
	model *Model
	err   error
}

// NewLoader returns a Loader reading location with dataset.Load. timeout
// bounds the load when positive.
func NewLoader(location string, mode FitMode, timeout time.Duration) *Loader {
	return NewLoaderFunc(func(ctx context.Context) (*dataset.Dataset, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return dataset.Load(ctx, location)
	}, mode)
}

// NewLoaderFunc returns a Loader backed by load.
func NewLoaderFunc(load LoadFunc, mode FitMode) *Loader {
	return &Loader{load: load, mode: mode}
}

// Model returns the memoized Model, preparing it on first use. Only the
// first caller's ctx is used.
func (l *Loader) Model(ctx context.Context) (*Model, error) {
	l.once.Do(func() {
		ds, err := l.load(ctx)
		if err != nil {
			l.err = err
			return
		}
		l.model, l.err = Prepare(ds, l.mode)
	})
	return l.model, l.err
}
