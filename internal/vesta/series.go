package vesta

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when series inputs cannot be broadcast
// against each other.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// DimensionMismatchError names the input whose length disagrees with the
// batch length established by an earlier input.
type DimensionMismatchError struct {
	Input string
	Len   int
	Want  int
	SetBy string
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: %s has length %d, want 1 or %d (from %s)",
		ErrDimensionMismatch, e.Input, e.Len, e.Want, e.SetBy)
}

func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// Scalar wraps a single value as a series that broadcasts against any length.
func Scalar(v float64) []float64 {
	return []float64{v}
}

type series struct {
	name   string
	values []float64
}

func named(name string, values []float64) series {
	return series{name: name, values: values}
}

func (s series) at(i int) float64 {
	if len(s.values) == 1 {
		return s.values[0]
	}
	return s.values[i]
}

// broadcastLen returns the common length of the inputs. Length-1 inputs
// stretch to match; if every input has length 1 the result is 1.
func broadcastLen(in ...series) (int, error) {
	n, setBy := 1, ""
	for _, s := range in {
		l := len(s.values)
		if l == 1 {
			continue
		}
		if setBy == "" {
			n, setBy = l, s.name
			continue
		}
		if l != n {
			return 0, &DimensionMismatchError{Input: s.name, Len: l, Want: n, SetBy: setBy}
		}
	}
	return n, nil
}

// mapSeries evaluates fn elementwise over broadcast inputs. Nothing is
// computed when the inputs do not line up.
func mapSeries(fn func(args []float64) float64, in ...series) ([]float64, error) {
	n, err := broadcastLen(in...)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	args := make([]float64, len(in))
	for i := range out {
		for j, s := range in {
			args[j] = s.at(i)
		}
		out[i] = fn(args)
	}
	return out, nil
}

// MoistureEffectSeries applies [MoistureEffect] to each element.
func MoistureEffectSeries(fuelMoisture []float64) []float64 {
	out := make([]float64, len(fuelMoisture))
	for i, m := range fuelMoisture {
		out[i] = MoistureEffect(m)
	}
	return out
}

// SlopeEffectSeries applies [SlopeEffect] to each element.
func SlopeEffectSeries(slope []float64) []float64 {
	out := make([]float64, len(slope))
	for i, s := range slope {
		out[i] = SlopeEffect(s)
	}
	return out
}

// FuelAvailabilitySeries is the broadcasting form of [FuelAvailability].
func FuelAvailabilitySeries(droughtFactor, droughtIndex, windReductionFactor []float64, wetForest bool) ([]float64, error) {
	return mapSeries(func(a []float64) float64 {
		return FuelAvailability(a[0], a[1], a[2], wetForest)
	},
		named("drought_factor", droughtFactor),
		named("drought_index", droughtIndex),
		named("wind_reduction_factor", windReductionFactor),
	)
}

// UnderstoreyHeightSeries is the broadcasting form of [UnderstoreyHeight].
func UnderstoreyHeightSeries(fhsElevated, heightElevated []float64) ([]float64, error) {
	return mapSeries(func(a []float64) float64 {
		return UnderstoreyHeight(a[0], a[1])
	},
		named("fhs_elevated", fhsElevated),
		named("height_elevated", heightElevated),
	)
}

// RatePhase1Series is the broadcasting form of [RatePhase1].
func RatePhase1Series(windSpeed, fuelMoisture, fuelAvailability, fuelLoadSurface, windReductionFactor, slope []float64) ([]float64, error) {
	return mapSeries(func(a []float64) float64 {
		return RatePhase1(a[0], a[1], a[2], a[3], a[4], a[5])
	},
		named("wind_speed", windSpeed),
		named("fuel_moisture", fuelMoisture),
		named("fuel_availability", fuelAvailability),
		named("fuel_load_surface", fuelLoadSurface),
		named("wind_reduction_factor", windReductionFactor),
		named("slope", slope),
	)
}

// RatePhase2Series is the broadcasting form of [RatePhase2].
func RatePhase2Series(windSpeed, fuelMoisture, fuelAvailability, fuelLoadSurface, windReductionFactor, heightUnderstorey, slope []float64) ([]float64, error) {
	return mapSeries(func(a []float64) float64 {
		return RatePhase2(a[0], a[1], a[2], a[3], a[4], a[5], a[6])
	},
		named("wind_speed", windSpeed),
		named("fuel_moisture", fuelMoisture),
		named("fuel_availability", fuelAvailability),
		named("fuel_load_surface", fuelLoadSurface),
		named("wind_reduction_factor", windReductionFactor),
		named("height_understorey", heightUnderstorey),
		named("slope", slope),
	)
}

// RatePhase3Series is the broadcasting form of [RatePhase3].
func RatePhase3Series(windSpeed, fuelMoisture, fuelAvailability []float64) ([]float64, error) {
	return mapSeries(func(a []float64) float64 {
		return RatePhase3(a[0], a[1], a[2])
	},
		named("wind_speed", windSpeed),
		named("fuel_moisture", fuelMoisture),
		named("fuel_availability", fuelAvailability),
	)
}

// ProbabilityPhase2Series is the broadcasting form of [ProbabilityPhase2].
func ProbabilityPhase2Series(windSpeed, fuelMoisture, fuelAvailability, fuelLoadSurface, windReductionFactor []float64) ([]float64, error) {
	return mapSeries(func(a []float64) float64 {
		return ProbabilityPhase2(a[0], a[1], a[2], a[3], a[4])
	},
		named("wind_speed", windSpeed),
		named("fuel_moisture", fuelMoisture),
		named("fuel_availability", fuelAvailability),
		named("fuel_load_surface", fuelLoadSurface),
		named("wind_reduction_factor", windReductionFactor),
	)
}

// ProbabilityPhase3Series is the broadcasting form of [ProbabilityPhase3].
func ProbabilityPhase3Series(windSpeed, fuelMoisture, fuelAvailability, ratePhase2 []float64) ([]float64, error) {
	return mapSeries(func(a []float64) float64 {
		return ProbabilityPhase3(a[0], a[1], a[2], a[3])
	},
		named("wind_speed", windSpeed),
		named("fuel_moisture", fuelMoisture),
		named("fuel_availability", fuelAvailability),
		named("ros_phase2", ratePhase2),
	)
}

// RateOfSpreadSeries is the broadcasting form of [RateOfSpread].
func RateOfSpreadSeries(ratePhase1, ratePhase2, ratePhase3, probabilityPhase2, probabilityPhase3 []float64) ([]float64, error) {
	return mapSeries(func(a []float64) float64 {
		return RateOfSpread(a[0], a[1], a[2], a[3], a[4])
	},
		named("ros_phase1", ratePhase1),
		named("ros_phase2", ratePhase2),
		named("ros_phase3", ratePhase3),
		named("probability_phase2", probabilityPhase2),
		named("probability_phase3", probabilityPhase3),
	)
}
