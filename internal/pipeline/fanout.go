package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/vesta-spread-service/internal/domain"
)

// FanoutLoader loads each batch into several sinks in order. The first
// failure aborts the batch so the pipeline retries it; sinks must tolerate
// re-delivery of predictions they already stored.
type FanoutLoader struct {
	sinks []namedLoader
}

type namedLoader struct {
	name   string
	loader BatchLoader
}

// NewFanoutLoader returns an empty FanoutLoader. Add sinks with Add.
func NewFanoutLoader() *FanoutLoader {
	return &FanoutLoader{}
}

// Add appends a sink. Nil loaders are ignored so optional sinks can be
// passed unconditionally.
func (f *FanoutLoader) Add(name string, l BatchLoader) *FanoutLoader {
	if l != nil {
		f.sinks = append(f.sinks, namedLoader{name: name, loader: l})
	}
	return f
}

// Len reports the number of configured sinks.
func (f *FanoutLoader) Len() int {
	return len(f.sinks)
}

// CheckReadiness asks every sink that can report readiness and returns the
// first failure.
func (f *FanoutLoader) CheckReadiness(ctx context.Context) error {
	for _, s := range f.sinks {
		checker, ok := s.loader.(readinessChecker)
		if !ok {
			continue
		}
		if err := checker.CheckReadiness(ctx); err != nil {
			return fmt.Errorf("sink %s not ready: %w", s.name, err)
		}
	}
	return nil
}

func (f *FanoutLoader) LoadBatch(ctx context.Context, predictions []domain.SpreadPrediction) error {
	for _, s := range f.sinks {
		if err := s.loader.LoadBatch(ctx, predictions); err != nil {
			return fmt.Errorf("load %s: %w", s.name, err)
		}
	}
	return nil
}
