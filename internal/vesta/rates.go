package vesta

import "math"

// phase1CalmRate is the phase 1 base rate (km/h) when the sub-canopy wind
// is at or below 2 km/h.
const phase1CalmRate = 0.03

// RatePhase1 returns the phase 1 (surface fire) forward rate of spread in
// m/h, Cruz et al. 2021 eq 14a and 14b. Pass a slope of 0 for flat ground.
func RatePhase1(windSpeed, fuelMoisture, fuelAvailability, fuelLoadSurface, windReductionFactor, slope float64) float64 {
	return ratePhase1(
		windSpeed/windReductionFactor,
		fuelLoadSurface,
		CombinedMoisture(fuelMoisture, fuelAvailability),
		SlopeEffect(slope),
	)
}

func ratePhase1(u, fuelLoadSurface, combinedMoisture, slopeEffect float64) float64 {
	base := phase1CalmRate
	if u > 2 {
		base = 0.03 + 0.05024*math.Pow(u-1, 0.92628)*math.Pow(fuelLoadSurface/10, 0.79928)
	}
	return base * combinedMoisture * slopeEffect * kmToM
}

// RatePhase2 returns the phase 2 (understorey involvement) forward rate of
// spread in m/h, Cruz et al. 2021 eq 15.
//
// Unlike phase 1 there is no low wind branch: the power law applies for any
// sub-canopy wind, so calm conditions give a rate of exactly 0.
func RatePhase2(windSpeed, fuelMoisture, fuelAvailability, fuelLoadSurface, windReductionFactor, heightUnderstorey, slope float64) float64 {
	return ratePhase2(
		windSpeed/windReductionFactor,
		fuelLoadSurface,
		heightUnderstorey,
		CombinedMoisture(fuelMoisture, fuelAvailability),
		SlopeEffect(slope),
	)
}

func ratePhase2(u, fuelLoadSurface, heightUnderstorey, combinedMoisture, slopeEffect float64) float64 {
	base := 0.19591 *
		math.Pow(u, 0.8257) *
		math.Pow(fuelLoadSurface/10, 0.4672) *
		math.Pow(heightUnderstorey, 0.495)
	return base * combinedMoisture * slopeEffect * kmToM
}

// RatePhase3 returns the phase 3 (plume dominated) forward rate of spread in
// m/h, Cruz et al. 2021 eq 16. Slope is ignored for phase 3 fires.
func RatePhase3(windSpeed, fuelMoisture, fuelAvailability float64) float64 {
	return ratePhase3(windSpeed, CombinedMoisture(fuelMoisture, fuelAvailability))
}

func ratePhase3(windSpeed, combinedMoisture float64) float64 {
	return 0.05235 * math.Pow(windSpeed, 1.19128) * combinedMoisture * kmToM
}
