package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/vesta-spread-service/internal/domain"
	"github.com/couchcryptid/vesta-spread-service/internal/pipeline"
	"github.com/couchcryptid/vesta-spread-service/internal/vesta"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	place domain.Place
	err   error
	calls int
}

func (s *stubResolver) ResolvePlace(_ context.Context, _, _ float64) (domain.Place, error) {
	s.calls++
	return s.place, s.err
}

func useFixedClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.January, 14, 12, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })
}

// readFixture returns the raw observation messages from data/mock.
func readFixture(t *testing.T) []domain.RawEvent {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "..", "data", "mock", "observations.json"))
	require.NoError(t, err)

	var records []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &records))

	events := make([]domain.RawEvent, len(records))
	for i, rec := range records {
		events[i] = domain.RawEvent{
			Value:     rec,
			Topic:     "fire-weather-observations",
			Offset:    int64(i),
			Timestamp: time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC),
		}
	}
	return events
}

func TestSpreadTransformer_WithMockObservations(t *testing.T) {
	useFixedClock(t)
	transformer := pipeline.NewTransformer(domain.DefaultScenario(), nil, slog.Default())

	expected := map[string]struct {
		regime vesta.Regime
		ros    float64
	}{
		"BRIDGEWATER":    {vesta.RegimePhase2, 714.164196162533},
		"HOBART_AIRPORT": {vesta.RegimePhase3, 2684.738572648986},
		"BUSHY_PARK":     {vesta.RegimePhase1, 20.189464627171134},
		"OUSE":           {vesta.RegimePhase3, 5523.103895245922},
		"LIAWENEE":       {vesta.RegimePhase1, 6.484859994716995},
		"BUTLERS_GORGE":  {vesta.RegimePhase2, 1045.3213016740192},
		"DUNALLEY":       {vesta.RegimePhase3, 6863.276109994675},
		"GROVE":          {vesta.RegimePhase1, 0},
		"SCOTTSDALE":     {vesta.RegimePhase2, 330.716488205157},
		"LAUNCESTON":     {vesta.RegimePhase3, 3919.7714292966834},
	}

	events := readFixture(t)
	require.Len(t, events, len(expected))

	for _, raw := range events {
		pred, err := transformer.Transform(context.Background(), raw)
		require.NoError(t, err)

		want, ok := expected[pred.Observation.Station]
		require.True(t, ok, "unexpected station %q", pred.Observation.Station)

		t.Run(pred.Observation.Station, func(t *testing.T) {
			assert.Equal(t, want.regime, pred.Spread.Regime)
			assert.InDelta(t, want.ros, pred.Spread.RateOfSpread, 1e-6)
			assert.Contains(t, pred.ID, pred.Observation.Station+"-")
			assert.True(t, pred.Observation.ObservedAt.Truncate(time.Hour).Equal(pred.TimeBucket))
			assert.Empty(t, pred.PlaceSource)
		})
	}
}

func TestSpreadTransformer_MatchesSeriesEvaluation(t *testing.T) {
	useFixedClock(t)
	transformer := pipeline.NewTransformer(domain.DefaultScenario(), nil, slog.Default())

	events := readFixture(t)
	observations := make([]domain.WeatherObservation, len(events))
	pointwise := make([]domain.SpreadPrediction, len(events))
	for i, raw := range events {
		obs, err := domain.ParseRawEvent(raw)
		require.NoError(t, err)
		observations[i] = obs

		pointwise[i], err = transformer.Transform(context.Background(), raw)
		require.NoError(t, err)
	}

	series, err := domain.PredictSeries(observations, domain.DefaultScenario())
	require.NoError(t, err)

	if diff := cmp.Diff(pointwise, series); diff != "" {
		t.Fatalf("series evaluation mismatch (-pointwise +series):\n%s", diff)
	}
}

func TestSpreadTransformer_Deterministic(t *testing.T) {
	useFixedClock(t)
	transformer := pipeline.NewTransformer(domain.DefaultScenario(), nil, slog.Default())
	raw := readFixture(t)[0]

	first, err := transformer.Transform(context.Background(), raw)
	require.NoError(t, err)
	second, err := transformer.Transform(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSpreadTransformer_ScenarioChangesID(t *testing.T) {
	useFixedClock(t)
	raw := readFixture(t)[0]

	steep := domain.DefaultScenario()
	steep.Slope = 15

	flat, err := pipeline.NewTransformer(domain.DefaultScenario(), nil, slog.Default()).Transform(context.Background(), raw)
	require.NoError(t, err)
	upslope, err := pipeline.NewTransformer(steep, nil, slog.Default()).Transform(context.Background(), raw)
	require.NoError(t, err)

	assert.NotEqual(t, flat.ID, upslope.ID)
	assert.Greater(t, upslope.Spread.RateOfSpread, flat.Spread.RateOfSpread)
}

func TestSpreadTransformer_EnrichesPlace(t *testing.T) {
	useFixedClock(t)
	resolver := &stubResolver{place: domain.Place{Name: "Bridgewater", FormattedAddress: "Bridgewater, Tasmania, Australia"}}
	transformer := pipeline.NewTransformer(domain.DefaultScenario(), resolver, slog.Default())

	pred, err := transformer.Transform(context.Background(), readFixture(t)[0])
	require.NoError(t, err)
	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, "Bridgewater", pred.PlaceName)
	assert.Equal(t, "reverse", pred.PlaceSource)
}

func TestSpreadTransformer_ResolverFailureDoesNotFail(t *testing.T) {
	useFixedClock(t)
	resolver := &stubResolver{err: errors.New("rate limited")}
	transformer := pipeline.NewTransformer(domain.DefaultScenario(), resolver, slog.Default())

	pred, err := transformer.Transform(context.Background(), readFixture(t)[0])
	require.NoError(t, err)
	assert.Equal(t, "failed", pred.PlaceSource)
	assert.Empty(t, pred.PlaceName)
}

func TestSpreadTransformer_RejectsInvalidObservations(t *testing.T) {
	transformer := pipeline.NewTransformer(domain.DefaultScenario(), nil, slog.Default())

	tests := []struct {
		name    string
		payload string
		target  error
	}{
		{"malformed json", `not json`, nil},
		{"missing drought factor", `{"station":"X","wind_speed":10,"fuel_moisture":8}`, domain.ErrMissingField},
		{"negative wind", `{"wind_speed":-1,"fuel_moisture":8,"drought_factor":5}`, domain.ErrInvalidObservation},
		{"drought factor above ten", `{"wind_speed":10,"fuel_moisture":8,"drought_factor":11}`, domain.ErrInvalidObservation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transformer.Transform(context.Background(), domain.RawEvent{Value: []byte(tt.payload)})
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}
