package vesta

import "math"

// Defaults used by the reference model when the caller omits a value.
const (
	DefaultDroughtIndex        = 100.0
	DefaultWindReductionFactor = 3.0
)

const (
	// moistureFloor is the fuel moisture (%) at or below which moisture no
	// longer suppresses spread.
	moistureFloor = 4.1
	// moistureCeiling is the fuel moisture (%) above which fuel will not
	// carry a fire.
	moistureCeiling = 24.0

	// wetForestSlopeAspectTerm is C2 of the wet forest drought factor
	// adjustment. The slope and aspect effect is not implemented yet and
	// contributes nothing.
	wetForestSlopeAspectTerm = 0.0

	// kmToM converts the regression outputs from km/h to m/h.
	kmToM = 1000.0
)

// MoistureEffect returns the dimensionless fuel moisture function of Cruz
// et al. 2021 eq 5. It is 1 at or below 4.1 % and 0 above 24 %.
func MoistureEffect(fuelMoisture float64) float64 {
	switch {
	case fuelMoisture <= moistureFloor:
		return 1
	case fuelMoisture > moistureCeiling:
		return 0
	}
	m := fuelMoisture
	return 0.9082 +
		0.1206*m -
		0.03106*math.Pow(m, 2) +
		0.001853*math.Pow(m, 3) -
		0.00003467*math.Pow(m, 4)
}

// FuelAvailability returns the proportion of fuel available to burn in the
// flaming front (Cruz et al. 2022). For wet forests the drought factor is
// first rescaled using the drought index (KBDI, or SDI in Tasmania) and the
// wind reduction factor.
func FuelAvailability(droughtFactor, droughtIndex, windReductionFactor float64, wetForest bool) float64 {
	df := droughtFactor
	if wetForest {
		df = wetForestDroughtFactor(droughtFactor, droughtIndex, windReductionFactor)
	}
	return 1.008 / (1 + 104.9*math.Exp(-0.9306*df))
}

// wetForestDroughtFactor floors the combined coefficient at zero before
// scaling and clips the scaled drought factor to [0, 10].
func wetForestDroughtFactor(droughtFactor, droughtIndex, wrf float64) float64 {
	c1 := (0.0046*wrf*wrf-0.0079*wrf-0.0175)*droughtIndex +
		(-0.9167*wrf*wrf + 1.5833*wrf + 13.5)
	coeff := math.Max(c1+wetForestSlopeAspectTerm, 0)
	return clip(droughtFactor*coeff/10, 0, 10)
}

// SlopeEffect returns the slope steepness multiplier of Cruz et al. 2021
// eq 13. Upslope spread doubles every 10 degrees; downslope spread decays
// toward one half.
func SlopeEffect(slope float64) float64 {
	switch {
	case slope == 0:
		return 1
	case slope > 0:
		return math.Pow(2, slope/10)
	default:
		s := math.Pow(2, -slope/10)
		return s / (2*s - 1)
	}
}

// UnderstoreyHeight returns the average understorey height (m) from the
// elevated fuel hazard score and elevated fuel height (Cruz et al. 2021 eq 1).
func UnderstoreyHeight(fhsElevated, heightElevated float64) float64 {
	return -0.1 + 0.06*fhsElevated + 0.48*heightElevated
}

// CombinedMoisture is the moisture effect scaled by fuel availability, the
// term shared by every rate and probability function.
func CombinedMoisture(fuelMoisture, fuelAvailability float64) float64 {
	return MoistureEffect(fuelMoisture) * fuelAvailability
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
