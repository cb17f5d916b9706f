package vesta

// Regime names the fire behaviour phase selected by the rate of spread blend.
type Regime string

const (
	RegimePhase1 Regime = "phase1"
	RegimePhase2 Regime = "phase2"
	RegimePhase3 Regime = "phase3"
)

// phase2Threshold is the phase 2 probability at which phase 3 starts to
// contribute to the blend.
const phase2Threshold = 0.5

// RateOfSpread blends the three phase rates into the overall forward rate of
// spread, Cruz et al. 2021 eq 17. While the phase 2 probability is below 0.5
// only phases 1 and 2 contribute; from 0.5 upward phase 3 is mixed in.
func RateOfSpread(ratePhase1, ratePhase2, ratePhase3, probabilityPhase2, probabilityPhase3 float64) float64 {
	if probabilityPhase2 < phase2Threshold {
		return ratePhase1*(1-probabilityPhase2) + ratePhase2*probabilityPhase2
	}
	return ratePhase1*(1-probabilityPhase2) +
		ratePhase2*probabilityPhase2*(1-probabilityPhase3) +
		ratePhase3*probabilityPhase3
}

// Classify reports the regime that dominates a blend: phase 1 when the
// two-term blend applies, otherwise phase 3 once its probability reaches
// 0.5, else phase 2.
func Classify(probabilityPhase2, probabilityPhase3 float64) Regime {
	switch {
	case probabilityPhase2 < phase2Threshold:
		return RegimePhase1
	case probabilityPhase3 >= 0.5:
		return RegimePhase3
	default:
		return RegimePhase2
	}
}
