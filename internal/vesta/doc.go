// Package vesta implements the multi-phase forward rate of spread model for
// dry eucalypt forest described by Cruz et al. (2021, 2022), known as Vesta Mk 2.
//
// # Model Structure
//
// A fire is described as a probability-weighted mix of three regimes:
//
//	Phase 1: surface fire spreading under the canopy
//	Phase 2: fire involving the elevated understorey (transition)
//	Phase 3: plume-dominated fire with crowning and spotting
//
// Each phase has its own empirical spread-rate regression. Two logistic
// models estimate the likelihood of moving from phase 1 to 2 and from 2 to 3,
// and [RateOfSpread] blends the three candidate rates with those probabilities.
//
// Evaluation order:
//
//	fuel moisture   -> MoistureEffect   \
//	drought factor  -> FuelAvailability  -> CombinedMoisture -> RatePhase{1,2,3}
//	slope           -> SlopeEffect      /                   -> ProbabilityPhase{2,3}
//	FHS, height     -> UnderstoreyHeight (phase 2 only)          -> RateOfSpread
//
// # Units
//
//	wind speed          km/h, 10 m open wind
//	fuel moisture       % (fine dead fuel)
//	drought factor      0-10
//	fuel load           t/ha (surface + near-surface)
//	slope               degrees, positive upslope
//	rates of spread     m/h (the regressions return km/h, scaled by 1000)
//
// # Input Domain
//
// The functions evaluate the published formulas as given. Out-of-range inputs
// (negative loads or wind, moisture outside the fitted range) are not clamped
// or rejected and can produce negative rates or values outside [0, 1]. Callers
// validate physical plausibility before evaluation.
//
// Degenerate arithmetic follows the math package: a zero base with a positive
// fractional exponent yields 0, a negative base yields NaN, and an overflowing
// exponential yields +Inf. Nothing in this package panics on numeric input.
//
// # Shapes
//
// Every operation has a scalar form and a series form (suffix "Series").
// Series arguments broadcast elementwise: a length-1 series pairs with every
// element of the others, and any other length disagreement fails with
// [ErrDimensionMismatch] before computation starts.
package vesta
