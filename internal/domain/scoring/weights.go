// Package scoring turns regional indicators into a priority score, a
// redevelopment scenario and the evidence sentences that justify it, and
// blends externally collected facts into baseline indicators.
package scoring

import (
	"fmt"
	"math"

	"github.com/turtacn/urban-dds/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Weights
// ─────────────────────────────────────────────────────────────────────────────

// Weights are the per-indicator multipliers of the priority score.
type Weights struct {
	AgingScore  float64 `json:"agingScore"`
	InfraRisk   float64 `json:"infraRisk"`
	MarketScore float64 `json:"marketScore"`
	PolicyFit   float64 `json:"policyFit"`
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		AgingScore:  0.35,
		InfraRisk:   0.25,
		MarketScore: 0.25,
		PolicyFit:   0.15,
	}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.AgingScore + w.InfraRisk + w.MarketScore + w.PolicyFit
}

// Validate checks that every weight is non-negative and that they sum to 1
// within floating-point tolerance.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"agingScore":  w.AgingScore,
		"infraRisk":   w.InfraRisk,
		"marketScore": w.MarketScore,
		"policyFit":   w.PolicyFit,
	} {
		if v < 0 || math.IsNaN(v) {
			return errors.InvalidParam(fmt.Sprintf("weight %s must be non-negative, got %v", name, v))
		}
	}
	if math.Abs(w.Sum()-1.0) > 1e-6 {
		return errors.InvalidParam(fmt.Sprintf("weights must sum to 1.0, got %.6f", w.Sum()))
	}
	return nil
}

//Personal.AI order the ending
