// Package quorum computes the coefficient-weighted attendance percentage
// that gates opening an assembly.
package quorum

import "math"

// Calculator compares attendance against a configured minimum percentage.
// The zero value is unusable; construct with New.
type Calculator struct {
	minimum float64
}

// New returns a Calculator with the given minimum percentage. Compared with
// >=, so exactly-at-threshold passes.
func New(minimum float64) Calculator {
	return Calculator{minimum: minimum}
}

// Minimum returns the configured threshold percentage.
func (c Calculator) Minimum() float64 { return c.minimum }

// Result is one quorum computation. Percentage is unrounded; rounding is
// presentation-only so a borderline value is never pushed over the threshold.
type Result struct {
	PresentCoefficient float64 `json:"present_coefficient"`
	TotalCoefficient   float64 `json:"total_coefficient"`
	Percentage         float64 `json:"percentage"`
	MeetsMinimum       bool    `json:"meets_minimum"`
	Minimum            float64 `json:"minimum"`
}

// Compute derives the quorum verdict from the meeting's coefficient snapshot
// and the sum of coefficients captured at presence registration. A
// non-positive total yields 0%, never a division error. Pure function, safe
// to call concurrently.
func (c Calculator) Compute(presentCoefficient, totalCoefficient float64) Result {
	percentage := 0.0
	if totalCoefficient > 0 {
		percentage = presentCoefficient / totalCoefficient * 100.0
	}
	return Result{
		PresentCoefficient: presentCoefficient,
		TotalCoefficient:   totalCoefficient,
		Percentage:         percentage,
		MeetsMinimum:       percentage >= c.minimum,
		Minimum:            c.minimum,
	}
}

// RoundedPercentage is the two-decimal display value. The MeetsMinimum
// verdict always uses the unrounded percentage.
func (r Result) RoundedPercentage() float64 {
	return math.Round(r.Percentage*100) / 100
}
