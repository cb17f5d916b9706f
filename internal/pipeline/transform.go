package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/vesta-spread-service/internal/domain"
)

// SpreadTransformer implements Transformer by evaluating the spread model for
// each observation under a fixed scenario, with optional place enrichment.
type SpreadTransformer struct {
	scenario domain.Scenario
	resolver domain.PlaceResolver
	logger   *slog.Logger
}

// NewTransformer creates a SpreadTransformer. Pass a nil resolver to disable
// reverse geocoding.
func NewTransformer(scenario domain.Scenario, resolver domain.PlaceResolver, logger *slog.Logger) *SpreadTransformer {
	return &SpreadTransformer{
		scenario: scenario,
		resolver: resolver,
		logger:   logger,
	}
}

func (t *SpreadTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.SpreadPrediction, error) {
	obs, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.SpreadPrediction{}, err
	}

	pred, err := domain.PredictSpread(obs, t.scenario)
	if err != nil {
		return domain.SpreadPrediction{}, err
	}

	return domain.EnrichWithPlace(ctx, pred, t.resolver, t.logger), nil
}
