package vesta

import "math"

const (
	// minPhase2FuelLoad is the surface fuel load (t/ha) below which a fire
	// cannot move into the understorey.
	minPhase2FuelLoad = 1.0
	// minPhase3RatePhase2 is the phase 2 rate (m/h) below which a fire cannot
	// become plume dominated.
	minPhase3RatePhase2 = 300.0
)

// ProbabilityPhase2 returns the likelihood of transition from phase 1 to
// phase 2, Cruz et al. 2021 eq 9 and 10. It is exactly 0 below 1 t/ha of
// surface fuel.
func ProbabilityPhase2(windSpeed, fuelMoisture, fuelAvailability, fuelLoadSurface, windReductionFactor float64) float64 {
	return probabilityPhase2(
		windSpeed/windReductionFactor,
		fuelLoadSurface,
		CombinedMoisture(fuelMoisture, fuelAvailability),
	)
}

func probabilityPhase2(u, fuelLoadSurface, combinedMoisture float64) float64 {
	if fuelLoadSurface < minPhase2FuelLoad {
		return 0
	}
	return logistic(-23.9315 + 1.7033*u + 12.0822*combinedMoisture + 0.95236*fuelLoadSurface)
}

// ProbabilityPhase3 returns the likelihood of transition from phase 2 to
// phase 3, Cruz et al. 2021 eq 11 and 12. ratePhase2 is in m/h as returned
// by [RatePhase2]; the probability is exactly 0 below 300 m/h.
func ProbabilityPhase3(windSpeed, fuelMoisture, fuelAvailability, ratePhase2 float64) float64 {
	return probabilityPhase3(windSpeed, ratePhase2, CombinedMoisture(fuelMoisture, fuelAvailability))
}

func probabilityPhase3(windSpeed, ratePhase2, combinedMoisture float64) float64 {
	if ratePhase2 < minPhase3RatePhase2 {
		return 0
	}
	return logistic(-32.3074 + 0.2951*windSpeed + 26.8734*combinedMoisture)
}

func logistic(g float64) float64 {
	return 1 / (1 + math.Exp(-g))
}
