package region

// Source tags carried by collected facts.
const (
	BuildingFactsSource = "data-go-kr-building-ledger"
	TradeFactsSource    = "data-go-kr-apartment-trade"
)

// BuildingFacts summarises building-ledger items for one lookup.
type BuildingFacts struct {
	AvgCompletionYear *float64 `json:"avgCompletionYear,omitempty"`
	AvgGrossArea      *float64 `json:"avgGrossArea,omitempty"`
	AvgFloorAreaRatio *float64 `json:"avgFloorAreaRatio,omitempty"`
	SampleSize        int      `json:"sampleSize"`
	Source            string   `json:"source"`
}

// TradeFacts summarises apartment trades across a month window.
type TradeFacts struct {
	AvgDealAmount    *float64 `json:"avgDealAmount,omitempty"`
	MedianDealAmount *float64 `json:"medianDealAmount,omitempty"`
	AvgPricePerArea  *float64 `json:"avgPricePerArea,omitempty"`
	DealCount        int      `json:"dealCount"`
	PriceTrend3m     *float64 `json:"priceTrend3m,omitempty"`
	Period           string   `json:"period"`
	Source           string   `json:"source"`
}

// FactsStatus explains the building-facts outcome.
type FactsStatus string

const (
	FactsStatusOK            FactsStatus = "ok"
	FactsStatusDisabled      FactsStatus = "disabled"
	FactsStatusMissingLookup FactsStatus = "missing-lookup"
	FactsStatusNoData        FactsStatus = "no-data"
	FactsStatusRequestFailed FactsStatus = "request-failed"
)

// ExternalFacts is the collector output for one region.
type ExternalFacts struct {
	Building         *BuildingFacts `json:"buildingFacts"`
	Trade            *TradeFacts    `json:"tradeFacts"`
	DataSource       []string       `json:"dataSource"`
	BuildingStatus   FactsStatus    `json:"buildingFactsStatus,omitempty"`
	BuildingAttempts int            `json:"buildingFactsAttempts"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

//Personal.AI order the ending
