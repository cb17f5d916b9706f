package vesta

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referencePoint() Point {
	return Point{
		WindSpeed:           20,
		FuelMoisture:        10,
		DroughtFactor:       8,
		DroughtIndex:        DefaultDroughtIndex,
		WindReductionFactor: 3,
		FuelLoadSurface:     15,
		Slope:               0,
		FHSElevated:         3,
		HeightElevated:      2,
	}
}

// expectedROS evaluates the published equations directly, without any of the
// package helpers.
func expectedROS(p Point) float64 {
	h := -0.1 + 0.06*p.FHSElevated + 0.48*p.HeightElevated
	m := p.FuelMoisture
	me := 0.9082 + 0.1206*m - 0.03106*m*m + 0.001853*m*m*m - 0.00003467*m*m*m*m
	fa := 1.008 / (1 + 104.9*math.Exp(-0.9306*p.DroughtFactor))
	c := me * fa
	u := p.WindSpeed / p.WindReductionFactor

	r1 := (0.03 + 0.05024*math.Pow(u-1, 0.92628)*math.Pow(p.FuelLoadSurface/10, 0.79928)) * c * 1000
	r2 := 0.19591 * math.Pow(u, 0.8257) * math.Pow(p.FuelLoadSurface/10, 0.4672) * math.Pow(h, 0.495) * c * 1000
	r3 := 0.05235 * math.Pow(p.WindSpeed, 1.19128) * c * 1000
	p2 := 1 / (1 + math.Exp(-(-23.9315 + 1.7033*u + 12.0822*c + 0.95236*p.FuelLoadSurface)))
	p3 := 1 / (1 + math.Exp(-(-32.3074 + 0.2951*p.WindSpeed + 26.8734*c)))

	return r1*(1-p2) + r2*p2*(1-p3) + r3*p3
}

func TestEvaluatePoint_ReferenceScenario(t *testing.T) {
	p := referencePoint()
	r := EvaluatePoint(p)

	assert.InDelta(t, 1.04, r.HeightUnderstorey, 1e-12)
	assert.InDelta(t, 0.5145, r.MoistureEffect, 1e-9)
	assert.InDelta(t, 0.9498, r.FuelAvailability, 5e-5)
	assert.InEpsilon(t, 183.9341075890045, r.RatePhase1, 1e-9)
	assert.InEpsilon(t, 565.0183447634191, r.RatePhase2, 1e-9)
	assert.InEpsilon(t, 907.425243324449, r.RatePhase3, 1e-9)
	assert.InEpsilon(t, 0.999506390343999, r.ProbabilityPhase2, 1e-9)
	assert.InEpsilon(t, 1.7193642844701611e-06, r.ProbabilityPhase3, 1e-9)
	assert.InEpsilon(t, 564.8308271059203, r.RateOfSpread, 1e-6)
	assert.InEpsilon(t, expectedROS(p), r.RateOfSpread, 1e-6)
	assert.Equal(t, RegimePhase2, r.Regime)
}

func TestEvaluatePoint_MatchesStandaloneFunctions(t *testing.T) {
	p := referencePoint()
	p.Slope = -7
	p.WetForest = true
	r := EvaluatePoint(p)

	fa := FuelAvailability(p.DroughtFactor, p.DroughtIndex, p.WindReductionFactor, true)
	h := UnderstoreyHeight(p.FHSElevated, p.HeightElevated)
	r1 := RatePhase1(p.WindSpeed, p.FuelMoisture, fa, p.FuelLoadSurface, p.WindReductionFactor, p.Slope)
	r2 := RatePhase2(p.WindSpeed, p.FuelMoisture, fa, p.FuelLoadSurface, p.WindReductionFactor, h, p.Slope)
	r3 := RatePhase3(p.WindSpeed, p.FuelMoisture, fa)
	p2 := ProbabilityPhase2(p.WindSpeed, p.FuelMoisture, fa, p.FuelLoadSurface, p.WindReductionFactor)
	p3 := ProbabilityPhase3(p.WindSpeed, p.FuelMoisture, fa, r2)

	want := Result{
		HeightUnderstorey: h,
		MoistureEffect:    MoistureEffect(p.FuelMoisture),
		FuelAvailability:  fa,
		CombinedMoisture:  CombinedMoisture(p.FuelMoisture, fa),
		RatePhase1:        r1,
		RatePhase2:        r2,
		RatePhase3:        r3,
		ProbabilityPhase2: p2,
		ProbabilityPhase3: p3,
		RateOfSpread:      RateOfSpread(r1, r2, r3, p2, p3),
		Regime:            Classify(p2, p3),
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Fatalf("EvaluatePoint mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluatePoint_PlumeDominated(t *testing.T) {
	p := referencePoint()
	p.WindSpeed = 45
	p.FuelMoisture = 5
	p.DroughtFactor = 10
	p.Slope = 10

	r := EvaluatePoint(p)
	assert.Equal(t, RegimePhase3, r.Regime)
	assert.InEpsilon(t, 4601.628900426633, r.RateOfSpread, 1e-6)
}

func TestEvaluate_Broadcasting(t *testing.T) {
	in := Inputs{
		WindSpeed:       []float64{5, 20, 45},
		FuelMoisture:    []float64{12, 10, 5},
		DroughtFactor:   Scalar(8),
		FuelLoadSurface: Scalar(15),
		FHSElevated:     Scalar(3),
		HeightElevated:  Scalar(2),
	}

	out, err := Evaluate(in)
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())

	for i, ws := range in.WindSpeed {
		want := EvaluatePoint(Point{
			WindSpeed:           ws,
			FuelMoisture:        in.FuelMoisture[i],
			DroughtFactor:       8,
			DroughtIndex:        DefaultDroughtIndex,
			WindReductionFactor: DefaultWindReductionFactor,
			FuelLoadSurface:     15,
			FHSElevated:         3,
			HeightElevated:      2,
		})
		if diff := cmp.Diff(want, out.At(i)); diff != "" {
			t.Errorf("record %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestEvaluate_AllScalars(t *testing.T) {
	p := referencePoint()
	out, err := Evaluate(Inputs{
		WindSpeed:           Scalar(p.WindSpeed),
		FuelMoisture:        Scalar(p.FuelMoisture),
		DroughtFactor:       Scalar(p.DroughtFactor),
		DroughtIndex:        Scalar(p.DroughtIndex),
		WindReductionFactor: Scalar(p.WindReductionFactor),
		FuelLoadSurface:     Scalar(p.FuelLoadSurface),
		Slope:               Scalar(p.Slope),
		FHSElevated:         Scalar(p.FHSElevated),
		HeightElevated:      Scalar(p.HeightElevated),
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, EvaluatePoint(p), out.At(0))
}

func TestEvaluate_DimensionMismatch(t *testing.T) {
	out, err := Evaluate(Inputs{
		WindSpeed:       []float64{10, 20, 30},
		FuelMoisture:    []float64{8, 9},
		DroughtFactor:   Scalar(8),
		FuelLoadSurface: Scalar(15),
		FHSElevated:     Scalar(3),
		HeightElevated:  Scalar(2),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	var dimErr *DimensionMismatchError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, "fuel_moisture", dimErr.Input)
	assert.Equal(t, 2, dimErr.Len)
	assert.Equal(t, 3, dimErr.Want)
	assert.Equal(t, "wind_speed", dimErr.SetBy)

	assert.Zero(t, out.Len())
	assert.Nil(t, out.RateOfSpread)
}

func TestEvaluate_Deterministic(t *testing.T) {
	in := Inputs{
		WindSpeed:       []float64{0, 4, 12, 25, 40, 60},
		FuelMoisture:    []float64{3, 6, 9, 12, 18, 26},
		DroughtFactor:   []float64{2, 4, 6, 8, 9, 10},
		FuelLoadSurface: Scalar(12),
		Slope:           []float64{-15, -5, 0, 5, 15, 25},
		FHSElevated:     Scalar(3.5),
		HeightElevated:  Scalar(1.5),
	}

	first, err := Evaluate(in)
	require.NoError(t, err)
	second, err := Evaluate(in)
	require.NoError(t, err)

	for i := range first.RateOfSpread {
		assert.Equal(t, math.Float64bits(first.RateOfSpread[i]), math.Float64bits(second.RateOfSpread[i]))
	}
	assert.Equal(t, first, second)
}

func TestEvaluate_Invariants(t *testing.T) {
	in := Inputs{
		WindSpeed:       []float64{0, 2, 8, 15, 30, 50, 80},
		FuelMoisture:    []float64{2, 4.1, 7, 11, 16, 24, 35},
		DroughtFactor:   []float64{0, 1, 3, 5, 7, 9, 10},
		FuelLoadSurface: Scalar(18),
		FHSElevated:     Scalar(3),
		HeightElevated:  Scalar(2),
	}

	out, err := Evaluate(in)
	require.NoError(t, err)
	for i := 0; i < out.Len(); i++ {
		r := out.At(i)
		assert.GreaterOrEqual(t, r.MoistureEffect, 0.0)
		assert.LessOrEqual(t, r.MoistureEffect, 1.0)
		assert.GreaterOrEqual(t, r.ProbabilityPhase2, 0.0)
		assert.LessOrEqual(t, r.ProbabilityPhase2, 1.0)
		assert.GreaterOrEqual(t, r.ProbabilityPhase3, 0.0)
		assert.LessOrEqual(t, r.ProbabilityPhase3, 1.0)
		assert.GreaterOrEqual(t, r.RateOfSpread, 0.0)
	}
}
