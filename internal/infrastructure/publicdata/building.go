package publicdata

import (
	"context"
	"strconv"
	"strings"

	"github.com/turtacn/urban-dds/internal/domain/region"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
)

var (
	buildingYearKeys = []string{"useAprDay", "useAprDt", "pmsDay", "crtnDay"}
	buildingAreaKeys = []string{"totArea", "totarea", "archArea", "platArea", "vlRatEstmTotArea"}
	buildingFARKeys  = []string{"vlRat", "vlrat", "flrAreaRat", "floorAreaRatio"}
)

const buildingRows = "100"

// FetchResult is the outcome of a building-ledger lookup.  Reason is empty
// when Facts is set.
type FetchResult struct {
	Facts    *region.BuildingFacts
	Reason   region.FactsStatus
	Attempts int
}

// RecapEndpoint maps a title-info endpoint to its recap-title counterpart.
func RecapEndpoint(endpoint string) string {
	return strings.Replace(endpoint, "/getBrTitleInfo", "/getBrRecapTitleInfo", 1)
}

// SummarizeBuildings reduces ledger items to averages.  Nil for no items.
func SummarizeBuildings(items []map[string]interface{}) *region.BuildingFacts {
	if len(items) == 0 {
		return nil
	}

	var years, areas, ratios []float64
	for _, item := range items {
		if v, ok := PickByKeys(item, buildingYearKeys); ok {
			if year, ok := ToYear(v); ok {
				years = append(years, float64(year))
			}
		}
		if v, ok := PickByKeys(item, buildingAreaKeys); ok {
			if area, ok := ToLooseNumber(v); ok {
				areas = append(areas, area)
			}
		}
		if v, ok := PickByKeys(item, buildingFARKeys); ok {
			if far, ok := ToLooseNumber(v); ok {
				ratios = append(ratios, far)
			}
		}
	}

	return &region.BuildingFacts{
		AvgCompletionYear: optional(Average(years)),
		AvgGrossArea:      optional(Average(areas)),
		AvgFloorAreaRatio: optional(Average(ratios)),
		SampleSize:        len(items),
		Source:            region.BuildingFactsSource,
	}
}

type buildingCandidate struct {
	endpoint string
	params   Params
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (c *Client) buildingCandidates(lookup *region.BuildingLookup, sigungu string) []buildingCandidate {
	endpoint := c.cfg.BuildingEndpoint
	bjdong := strings.TrimSpace(lookup.BjdongCd)
	platGb := orDefault(lookup.PlatGbCd, "0")

	var out []buildingCandidate
	if bjdong != "" {
		out = append(out,
			buildingCandidate{endpoint, Params{
				"sigunguCd": sigungu,
				"bjdongCd":  bjdong,
				"platGbCd":  platGb,
				"bun":       orDefault(lookup.Bun, "0000"),
				"ji":        orDefault(lookup.Ji, "0000"),
				"numOfRows": buildingRows,
				"pageNo":    "1",
			}},
			buildingCandidate{endpoint, Params{
				"sigunguCd": sigungu,
				"bjdongCd":  bjdong,
				"platGbCd":  platGb,
				"numOfRows": buildingRows,
				"pageNo":    "1",
			}},
		)
	}
	sigunguOnly := Params{"sigunguCd": sigungu, "numOfRows": buildingRows, "pageNo": "1"}
	out = append(out,
		buildingCandidate{endpoint, sigunguOnly},
		buildingCandidate{RecapEndpoint(endpoint), sigunguOnly},
	)
	return out
}

// FetchBuildingFacts walks progressively coarser queries for lookup and
// returns the first non-empty summary.  Attempts counts every request made.
func (c *Client) FetchBuildingFacts(ctx context.Context, lookup *region.BuildingLookup) FetchResult {
	if !c.cfg.Enabled {
		return FetchResult{Reason: region.FactsStatusDisabled}
	}
	if lookup == nil {
		return FetchResult{Reason: region.FactsStatusMissingLookup}
	}
	sigungu := strings.TrimSpace(lookup.SigunguCd)
	if sigungu == "" {
		return FetchResult{Reason: region.FactsStatusMissingLookup}
	}

	var (
		attempts   int
		hadError   bool
		lastNoData Meta
	)
	for _, cand := range c.buildingCandidates(lookup, sigungu) {
		if ctx.Err() != nil {
			hadError = true
			break
		}
		attempts++
		payload, err := c.RequestJSON(ctx, cand.endpoint, cand.params)
		if err != nil {
			hadError = true
			c.logger.Warn("building ledger fetch failed: "+err.Error(),
				logging.String("sigungu_cd", sigungu))
			continue
		}
		if facts := SummarizeBuildings(ExtractItems(payload)); facts != nil {
			return FetchResult{Facts: facts, Attempts: attempts}
		}
		lastNoData = ExtractMeta(payload)
	}

	if hadError {
		return FetchResult{Reason: region.FactsStatusRequestFailed, Attempts: attempts}
	}

	c.logger.Info("building ledger no-data",
		logging.String("code", orDefault(lastNoData.ResultCode, "n/a")),
		logging.String("msg", orDefault(lastNoData.ResultMsg, "n/a")),
		logging.String("total_count", formatCount(lastNoData.TotalCount)))
	return FetchResult{Reason: region.FactsStatusNoData, Attempts: attempts}
}

func formatCount(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

//Personal.AI order the ending
