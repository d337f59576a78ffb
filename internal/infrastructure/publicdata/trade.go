package publicdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/urban-dds/internal/domain/region"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
)

var (
	tradeAmountKeys = []string{"거래금액", "거래금액(만원)", "dealAmount", "dealamount"}
	tradeAreaKeys   = []string{"전용면적", "excluUseAr", "excluusear"}
)

const tradeRows = "999"

// DealMonths lists YYYYMM keys for the months window ending with the month
// of now, oldest first.  The window is at least one month.
func DealMonths(now time.Time, months int) []string {
	if months < 1 {
		months = 1
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]string, 0, months)
	for i := months - 1; i >= 0; i-- {
		out = append(out, first.AddDate(0, -i, 0).Format("200601"))
	}
	return out
}

type tradeSample struct {
	amount  float64
	area    float64
	hasArea bool
}

// FetchTradeFacts aggregates apartment trades for lawdCode over the last
// months (the configured window when months <= 0).  Months are requested
// sequentially; a failed month is logged and skipped.  Nil when disabled,
// when lawdCode is blank, or when no usable sample was found.
func (c *Client) FetchTradeFacts(ctx context.Context, lawdCode string, months int) *region.TradeFacts {
	lawd := strings.TrimSpace(lawdCode)
	if !c.cfg.Enabled || lawd == "" {
		return nil
	}
	if months <= 0 {
		months = c.cfg.TradeMonths
	}

	monthKeys := DealMonths(c.now(), months)
	var (
		samples       []tradeSample
		monthAverages []float64
		hadError      bool
	)

	for _, ym := range monthKeys {
		payload, err := c.RequestJSON(ctx, c.cfg.TradeEndpoint, Params{
			"LAWD_CD":   lawd,
			"DEAL_YMD":  ym,
			"numOfRows": tradeRows,
			"pageNo":    "1",
		})
		if err != nil {
			hadError = true
			c.logger.Warn(fmt.Sprintf("apartment trade fetch failed (%s): %s", ym, err.Error()),
				logging.String("lawd_cd", lawd))
			continue
		}

		var amounts []float64
		for _, item := range ExtractItems(payload) {
			raw, _ := PickByKeys(item, tradeAmountKeys)
			amount, ok := ToLooseNumber(raw)
			if !ok {
				continue
			}
			s := tradeSample{amount: amount}
			if rawArea, found := PickByKeys(item, tradeAreaKeys); found {
				s.area, s.hasArea = ToLooseNumber(rawArea)
			}
			samples = append(samples, s)
			amounts = append(amounts, amount)
		}
		if avg, ok := Average(amounts); ok {
			monthAverages = append(monthAverages, avg)
		}
	}

	if len(samples) == 0 {
		if hadError {
			c.logger.Warn("apartment trade no usable samples after request errors",
				logging.String("lawd_cd", lawd))
		}
		return nil
	}

	amounts := make([]float64, 0, len(samples))
	var unitPrices []float64
	for _, s := range samples {
		amounts = append(amounts, s.amount)
		if s.hasArea && s.area > 0 {
			unitPrices = append(unitPrices, s.amount/s.area)
		}
	}

	return &region.TradeFacts{
		AvgDealAmount:    optional(Average(amounts)),
		MedianDealAmount: optional(Median(amounts)),
		AvgPricePerArea:  optional(Average(unitPrices)),
		DealCount:        len(samples),
		PriceTrend3m:     PriceTrend(monthAverages),
		Period:           monthKeys[0] + "~" + monthKeys[len(monthKeys)-1],
		Source:           region.TradeFactsSource,
	}
}

// PriceTrend is the percent change from the first to the last monthly
// average.  Nil with fewer than two months or a non-positive first month.
func PriceTrend(monthAverages []float64) *float64 {
	if len(monthAverages) < 2 {
		return nil
	}
	first, last := monthAverages[0], monthAverages[len(monthAverages)-1]
	if first <= 0 {
		return nil
	}
	trend := Round2((last - first) / first * 100)
	return &trend
}

//Personal.AI order the ending
