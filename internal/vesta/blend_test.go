package vesta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateOfSpread_BranchBoundary(t *testing.T) {
	const (
		r1 = 100.0
		r2 = 200.0
		r3 = 1000.0
		p3 = 0.5
	)
	twoTerm := func(p2 float64) float64 { return r1*(1-p2) + r2*p2 }
	threeTerm := func(p2 float64) float64 { return r1*(1-p2) + r2*p2*(1-p3) + r3*p3 }

	tests := []struct {
		name     string
		p2       float64
		expected float64
	}{
		{"well below", 0.1, twoTerm(0.1)},
		{"just below", 0.5 - 1e-12, twoTerm(0.5 - 1e-12)},
		{"exactly half", 0.5, threeTerm(0.5)},
		{"just above", 0.5 + 1e-12, threeTerm(0.5 + 1e-12)},
		{"certain", 1, threeTerm(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, RateOfSpread(r1, r2, r3, tt.p2, p3), 1e-9)
		})
	}

	// The switch is discrete: crossing 0.5 jumps from 150 to 600.
	assert.InDelta(t, 150, RateOfSpread(r1, r2, r3, 0.5-1e-12, p3), 1e-6)
	assert.InDelta(t, 600, RateOfSpread(r1, r2, r3, 0.5, p3), 1e-6)
}

func TestRateOfSpread_IgnoresPhase3BelowThreshold(t *testing.T) {
	assert.Equal(t,
		RateOfSpread(100, 200, 1000, 0.3, 0),
		RateOfSpread(100, 200, 1000, 0.3, 1),
	)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, RegimePhase1, Classify(0, 0))
	assert.Equal(t, RegimePhase1, Classify(0.4999, 0.99))
	assert.Equal(t, RegimePhase2, Classify(0.5, 0))
	assert.Equal(t, RegimePhase2, Classify(0.9, 0.4999))
	assert.Equal(t, RegimePhase3, Classify(0.9, 0.5))
}
