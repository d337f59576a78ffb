// Package region holds the administrative-region seed registry, its address
// resolver, and the value types shared by the scoring pipeline.
package region

import (
	"math"
	"strings"
	"time"

	"github.com/turtacn/urban-dds/pkg/errors"
)

// Level is the administrative granularity of a region record.
type Level string

const (
	LevelCity  Level = "city"
	LevelGu    Level = "gu"
	LevelDong  Level = "dong"
	LevelMyeon Level = "myeon"
)

// Rank orders levels by specificity: dong/myeon > gu > city.
func (l Level) Rank() int {
	switch l {
	case LevelDong, LevelMyeon:
		return 3
	case LevelGu:
		return 2
	default:
		return 1
	}
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MetricsValidationMessage is returned for any out-of-range metric.
const MetricsValidationMessage = "metrics must be numbers between 0 and 100"

// Metrics are the four normalised regional indicators, each in [0,100].
type Metrics struct {
	AgingScore  float64 `json:"agingScore"`
	InfraRisk   float64 `json:"infraRisk"`
	MarketScore float64 `json:"marketScore"`
	PolicyFit   float64 `json:"policyFit"`
}

// Validate rejects non-finite or out-of-range values.
func (m Metrics) Validate() error {
	for _, v := range []float64{m.AgingScore, m.InfraRisk, m.MarketScore, m.PolicyFit} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
			return errors.Validation(MetricsValidationMessage)
		}
	}
	return nil
}

// BuildingLookup is a building-ledger query key.  Only SigunguCd is required.
type BuildingLookup struct {
	SigunguCd string `json:"sigunguCd"`
	BjdongCd  string `json:"bjdongCd,omitempty"`
	PlatGbCd  string `json:"platGbCd,omitempty"`
	Bun       string `json:"bun,omitempty"`
	Ji        string `json:"ji,omitempty"`
}

// Signature identifies a lookup for de-duplication.
func (l BuildingLookup) Signature() string {
	return strings.Join([]string{l.SigunguCd, l.BjdongCd, l.PlatGbCd, l.Bun, l.Ji}, "|")
}

// Region is an immutable seed record.
type Region struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Level          Level           `json:"level"`
	ParentRegionID string          `json:"parentRegionId,omitempty"`
	AddressHint    string          `json:"addressHint"`
	Center         GeoPoint        `json:"center"`
	LawdCode       string          `json:"lawdCode,omitempty"`
	BuildingLookup *BuildingLookup `json:"buildingLookup,omitempty"`
	Metrics        Metrics         `json:"metrics"`
	Source         string          `json:"source"`
	LastUpdated    time.Time       `json:"lastUpdated"`
}

//Personal.AI order the ending
