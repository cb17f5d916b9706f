package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/vesta-spread-service/internal/vesta"
)

// Scenario holds the fuel and terrain constants applied to every observation.
type Scenario struct {
	WindReductionFactor float64 `json:"wind_reduction_factor"`
	FuelLoadSurface     float64 `json:"fuel_load_surface"` // t/ha, surface + near-surface
	Slope               float64 `json:"slope"`             // degrees, positive upslope
	FHSElevated         float64 `json:"fhs_elevated"`
	HeightElevated      float64 `json:"height_elevated"` // m
	WetForest           bool    `json:"wet_forest"`
	DroughtIndex        float64 `json:"drought_index"` // used when an observation omits it
}

// DefaultScenario matches the dry forest example of the Vesta Mk 2 field guide.
func DefaultScenario() Scenario {
	return Scenario{
		WindReductionFactor: vesta.DefaultWindReductionFactor,
		FuelLoadSurface:     15,
		Slope:               0,
		FHSElevated:         3,
		HeightElevated:      2,
		DroughtIndex:        vesta.DefaultDroughtIndex,
	}
}

// Validate rejects scenarios the spread model cannot evaluate meaningfully.
func (s Scenario) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"wind reduction factor", s.WindReductionFactor},
		{"surface fuel load", s.FuelLoadSurface},
		{"slope", s.Slope},
		{"elevated fuel hazard score", s.FHSElevated},
		{"elevated fuel height", s.HeightElevated},
		{"drought index", s.DroughtIndex},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s must be finite, got %v", f.name, f.value)
		}
	}
	if s.WindReductionFactor <= 0 {
		return errors.New("wind reduction factor must be positive")
	}
	if s.FuelLoadSurface < 0 {
		return errors.New("surface fuel load must not be negative")
	}
	if s.Slope <= -90 || s.Slope >= 90 {
		return fmt.Errorf("slope %v outside (-90, 90) degrees", s.Slope)
	}
	if h := vesta.UnderstoreyHeight(s.FHSElevated, s.HeightElevated); h < 0 {
		return fmt.Errorf("elevated fuel hazard %v and height %v give negative understorey height %.3f",
			s.FHSElevated, s.HeightElevated, h)
	}
	if s.DroughtIndex < 0 {
		return errors.New("drought index must not be negative")
	}
	return nil
}

// Point combines an observation with the scenario into model inputs.
func (s Scenario) Point(obs WeatherObservation) vesta.Point {
	di := s.DroughtIndex
	if obs.DroughtIndex != nil {
		di = *obs.DroughtIndex
	}
	return vesta.Point{
		WindSpeed:           obs.WindSpeed,
		FuelMoisture:        obs.FuelMoisture,
		DroughtFactor:       obs.DroughtFactor,
		DroughtIndex:        di,
		WindReductionFactor: s.WindReductionFactor,
		FuelLoadSurface:     s.FuelLoadSurface,
		Slope:               s.Slope,
		FHSElevated:         s.FHSElevated,
		HeightElevated:      s.HeightElevated,
		WetForest:           s.WetForest,
	}
}
