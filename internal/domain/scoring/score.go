package scoring

import (
	"math"
	"strconv"

	"github.com/turtacn/urban-dds/internal/domain/region"
)

// Scenario is a redevelopment strategy.
type Scenario string

const (
	ScenarioFull      Scenario = "full_redevelopment"
	ScenarioSelective Scenario = "selective_redevelopment"
	ScenarioPhased    Scenario = "phased_redevelopment"
)

// ParseScenario maps stored values back to a Scenario; anything unknown is
// treated as phased.
func ParseScenario(s string) Scenario {
	switch Scenario(s) {
	case ScenarioFull, ScenarioSelective:
		return Scenario(s)
	default:
		return ScenarioPhased
	}
}

// Breakdown is the result of Score.
type Breakdown struct {
	PriorityScore float64 `json:"priorityScore"`
	Contributions Weights `json:"contributions"`
}

// Clamp bounds v to [0, 100].
func Clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Score applies DefaultWeights.
func Score(m region.Metrics) Breakdown {
	return ScoreWith(m, DefaultWeights())
}

// ScoreWith clamps each indicator, weights it, and sums the rounded
// contributions.
func ScoreWith(m region.Metrics, w Weights) Breakdown {
	c := Weights{
		AgingScore:  Round2(Clamp(m.AgingScore) * w.AgingScore),
		InfraRisk:   Round2(Clamp(m.InfraRisk) * w.InfraRisk),
		MarketScore: Round2(Clamp(m.MarketScore) * w.MarketScore),
		PolicyFit:   Round2(Clamp(m.PolicyFit) * w.PolicyFit),
	}
	return Breakdown{
		PriorityScore: Round2(c.Sum()),
		Contributions: c,
	}
}

// Classify picks the scenario.  Rules are evaluated in order and the first
// match wins.
func Classify(m region.Metrics) Scenario {
	if m.AgingScore >= 80 && m.InfraRisk >= 70 && m.PolicyFit >= 60 {
		return ScenarioFull
	}
	if m.MarketScore >= 70 || m.PolicyFit >= 80 {
		return ScenarioSelective
	}
	return ScenarioPhased
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Evidence returns one sentence per indicator followed by the scenario's
// closing sentence.
func Evidence(m region.Metrics, s Scenario) []string {
	out := []string{
		"Aging score is " + formatValue(m.AgingScore) + " (higher value indicates more urgent renewal need).",
		"Infrastructure risk is " + formatValue(m.InfraRisk) + " (higher value indicates higher aging infrastructure burden).",
		"Market score is " + formatValue(m.MarketScore) + " (higher value indicates stronger redevelopment feasibility).",
		"Policy fit is " + formatValue(m.PolicyFit) + " (higher value indicates better regulatory alignment).",
	}

	switch s {
	case ScenarioFull:
		out = append(out, "Aging and infrastructure burdens are high enough to justify full redevelopment.")
	case ScenarioSelective:
		out = append(out, "Market and policy indicators support selective redevelopment before full-scale conversion.")
	default:
		out = append(out, "Recommend phased redevelopment pilots to reduce budget risk and build consensus first.")
	}
	return out
}

//Personal.AI order the ending
