package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/vesta-spread-service/internal/vesta"
)

var (
	// ErrMissingField is returned when a required observation field is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidObservation is returned for physically implausible observations.
	ErrInvalidObservation = errors.New("invalid observation")
	// ErrNonFinite is returned when a prediction contains NaN or infinite values.
	ErrNonFinite = errors.New("non-finite prediction")
)

// rawObservation mirrors the source JSON. Pointers distinguish absent fields
// from zero values.
type rawObservation struct {
	Station       string   `json:"station"`
	Time          string   `json:"time"`
	Lat           *float64 `json:"lat"`
	Lon           *float64 `json:"lon"`
	WindSpeed     *float64 `json:"wind_speed"`
	FuelMoisture  *float64 `json:"fuel_moisture"`
	DroughtFactor *float64 `json:"drought_factor"`
	DroughtIndex  *float64 `json:"drought_index"`
}

// ParseRawEvent deserializes a RawEvent's value into a WeatherObservation and
// checks it is physically plausible.
func ParseRawEvent(raw RawEvent) (WeatherObservation, error) {
	var rec rawObservation
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return WeatherObservation{}, fmt.Errorf("parse raw event: %w", err)
	}

	required := []struct {
		name  string
		value *float64
	}{
		{"wind_speed", rec.WindSpeed},
		{"fuel_moisture", rec.FuelMoisture},
		{"drought_factor", rec.DroughtFactor},
	}
	for _, f := range required {
		if f.value == nil {
			return WeatherObservation{}, fmt.Errorf("parse raw event: %w: %s", ErrMissingField, f.name)
		}
	}

	observedAt, err := parseObservedAt(raw.Timestamp, rec.Time)
	if err != nil {
		return WeatherObservation{}, fmt.Errorf("parse raw event: %w", err)
	}

	obs := WeatherObservation{
		Station:       rec.Station,
		ObservedAt:    observedAt,
		Geo:           Geo{Lat: valueOrZero(rec.Lat), Lon: valueOrZero(rec.Lon)},
		WindSpeed:     *rec.WindSpeed,
		FuelMoisture:  *rec.FuelMoisture,
		DroughtFactor: *rec.DroughtFactor,
		DroughtIndex:  rec.DroughtIndex,
	}
	if err := validateObservation(obs); err != nil {
		return WeatherObservation{}, err
	}
	return obs, nil
}

// parseObservedAt parses an RFC 3339 time, using the message timestamp when
// the record carries none.
func parseObservedAt(fallback time.Time, value string) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", value, err)
	}
	return t, nil
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func validateObservation(obs WeatherObservation) error {
	switch {
	case obs.WindSpeed < 0 || math.IsNaN(obs.WindSpeed):
		return fmt.Errorf("%w: wind speed %v", ErrInvalidObservation, obs.WindSpeed)
	case obs.FuelMoisture < 0 || math.IsNaN(obs.FuelMoisture):
		return fmt.Errorf("%w: fuel moisture %v", ErrInvalidObservation, obs.FuelMoisture)
	case obs.DroughtFactor < 0 || obs.DroughtFactor > 10 || math.IsNaN(obs.DroughtFactor):
		return fmt.Errorf("%w: drought factor %v outside [0, 10]", ErrInvalidObservation, obs.DroughtFactor)
	case obs.DroughtIndex != nil && *obs.DroughtIndex < 0:
		return fmt.Errorf("%w: drought index %v", ErrInvalidObservation, *obs.DroughtIndex)
	}
	return nil
}

// PredictSpread evaluates the spread model for one observation.
func PredictSpread(obs WeatherObservation, scenario Scenario) (SpreadPrediction, error) {
	p := scenario.Point(obs)
	return newPrediction(obs, p, vesta.EvaluatePoint(p))
}

// PredictSeries evaluates a batch of observations in one vectorized call.
// Results match PredictSpread record for record.
func PredictSeries(observations []WeatherObservation, scenario Scenario) ([]SpreadPrediction, error) {
	if len(observations) == 0 {
		return nil, nil
	}

	points := make([]vesta.Point, len(observations))
	in := vesta.Inputs{
		WindSpeed:           make([]float64, len(observations)),
		FuelMoisture:        make([]float64, len(observations)),
		DroughtFactor:       make([]float64, len(observations)),
		DroughtIndex:        make([]float64, len(observations)),
		WindReductionFactor: vesta.Scalar(scenario.WindReductionFactor),
		FuelLoadSurface:     vesta.Scalar(scenario.FuelLoadSurface),
		Slope:               vesta.Scalar(scenario.Slope),
		FHSElevated:         vesta.Scalar(scenario.FHSElevated),
		HeightElevated:      vesta.Scalar(scenario.HeightElevated),
		WetForest:           scenario.WetForest,
	}
	for i, obs := range observations {
		points[i] = scenario.Point(obs)
		in.WindSpeed[i] = points[i].WindSpeed
		in.FuelMoisture[i] = points[i].FuelMoisture
		in.DroughtFactor[i] = points[i].DroughtFactor
		in.DroughtIndex[i] = points[i].DroughtIndex
	}

	out, err := vesta.Evaluate(in)
	if err != nil {
		return nil, fmt.Errorf("predict series: %w", err)
	}

	predictions := make([]SpreadPrediction, len(observations))
	for i, obs := range observations {
		pred, err := newPrediction(obs, points[i], out.At(i))
		if err != nil {
			return nil, fmt.Errorf("predict series record %d: %w", i, err)
		}
		predictions[i] = pred
	}
	return predictions, nil
}

func newPrediction(obs WeatherObservation, p vesta.Point, r vesta.Result) (SpreadPrediction, error) {
	if err := checkFinite(r); err != nil {
		return SpreadPrediction{}, err
	}
	return SpreadPrediction{
		ID:          generateID(obs.Station, obs.ObservedAt, p),
		Observation: obs,
		Inputs:      p,
		Spread:      r,
		TimeBucket:  deriveTimeBucket(obs.ObservedAt),
		ProcessedAt: clock.Now(),
	}, nil
}

// checkFinite rejects results that cannot be serialized as JSON numbers.
func checkFinite(r vesta.Result) error {
	values := []struct {
		name  string
		value float64
	}{
		{"height_understorey", r.HeightUnderstorey},
		{"fuel_availability", r.FuelAvailability},
		{"ros_phase1", r.RatePhase1},
		{"ros_phase2", r.RatePhase2},
		{"ros_phase3", r.RatePhase3},
		{"probability_phase2", r.ProbabilityPhase2},
		{"probability_phase3", r.ProbabilityPhase3},
		{"ros", r.RateOfSpread},
	}
	for _, v := range values {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return fmt.Errorf("%w: %s is %v", ErrNonFinite, v.name, v.value)
		}
	}
	return nil
}

// SerializePrediction converts a prediction into an OutputEvent keyed by its ID.
func SerializePrediction(pred SpreadPrediction) (OutputEvent, error) {
	data, err := json.Marshal(pred)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize spread prediction: %w", err)
	}
	return OutputEvent{
		Key:   []byte(pred.ID),
		Value: data,
		Headers: map[string]string{
			"regime":       string(pred.Spread.Regime),
			"processed_at": pred.ProcessedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}

// generateID hashes the station, observation time and model inputs so the
// same observation under the same scenario always yields the same ID.
func generateID(station string, observedAt time.Time, p vesta.Point) string {
	input := fmt.Sprintf("%s|%s|%g|%g|%g|%g|%g|%g|%g|%g|%g|%t",
		station, observedAt.UTC().Format(time.RFC3339),
		p.WindSpeed, p.FuelMoisture, p.DroughtFactor, p.DroughtIndex,
		p.WindReductionFactor, p.FuelLoadSurface, p.Slope, p.FHSElevated, p.HeightElevated,
		p.WetForest,
	)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if station == "" {
		return short
	}
	return station + "-" + short
}

// deriveTimeBucket truncates the observation time to the hour in UTC.
// Returns zero time if the input is zero.
func deriveTimeBucket(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Hour)
}
