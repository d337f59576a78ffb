package scoring

import (
	"math"

	"github.com/turtacn/urban-dds/internal/domain/region"
)

const (
	agingHorizonYears  = 45.0
	farScale           = 3.0
	dealAmountScale    = 120000.0
	dealCountScale     = 30.0
	trendMultiplier    = 5.0
	neutralTrendIndex  = 50.0
	baselineBlendShare = 0.6
	derivedBlendShare  = 0.4
)

// AgingIndex derives an aging indicator from building facts.  False when
// the average completion year is missing or zero.
func AgingIndex(b *region.BuildingFacts, currentYear int) (float64, bool) {
	if b == nil || b.AvgCompletionYear == nil || *b.AvgCompletionYear == 0 {
		return 0, false
	}
	age := math.Max(0, float64(currentYear)-*b.AvgCompletionYear)
	ageIndex := Clamp(age / agingHorizonYears * 100)
	farIndex := ageIndex
	if b.AvgFloorAreaRatio != nil {
		farIndex = Clamp(*b.AvgFloorAreaRatio / farScale)
	}
	return Round2(ageIndex*0.75 + farIndex*0.25), true
}

// MarketIndex derives a market indicator from trade facts.  False without
// an average deal amount or with no deals.
func MarketIndex(t *region.TradeFacts) (float64, bool) {
	if t == nil || t.AvgDealAmount == nil || t.DealCount <= 0 {
		return 0, false
	}
	priceIndex := Clamp(*t.AvgDealAmount / dealAmountScale * 100)
	volumeIndex := Clamp(float64(t.DealCount) / dealCountScale * 100)
	trendIndex := neutralTrendIndex
	if t.PriceTrend3m != nil {
		trendIndex = Clamp(neutralTrendIndex + *t.PriceTrend3m*trendMultiplier)
	}
	return Round2(priceIndex*0.5 + volumeIndex*0.25 + trendIndex*0.25), true
}

func blend(base, derived float64) float64 {
	return Round2(base*baselineBlendShare + derived*derivedBlendShare)
}

// Fuse blends derived indices into the baseline.  Infrastructure risk and
// policy fit pass through; absent facts leave the baseline untouched.
func Fuse(base region.Metrics, facts region.ExternalFacts, currentYear int) region.Metrics {
	out := base
	if idx, ok := AgingIndex(facts.Building, currentYear); ok {
		out.AgingScore = blend(base.AgingScore, idx)
	}
	if idx, ok := MarketIndex(facts.Trade); ok {
		out.MarketScore = blend(base.MarketScore, idx)
	}
	return out
}

//Personal.AI order the ending
