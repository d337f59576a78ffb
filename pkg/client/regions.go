package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Metrics are the four redevelopment indicators, each in [0, 100].
type Metrics struct {
	AgingScore  float64 `json:"agingScore"`
	InfraRisk   float64 `json:"infraRisk"`
	MarketScore float64 `json:"marketScore"`
	PolicyFit   float64 `json:"policyFit"`
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RegionSummary is the response of GET /region/summary.
type RegionSummary struct {
	RegionID              string                 `json:"regionId"`
	RegionCode            string                 `json:"regionCode"`
	Name                  string                 `json:"name"`
	Level                 string                 `json:"level"`
	Center                GeoPoint               `json:"center"`
	Metrics               Metrics                `json:"metrics"`
	BaseMetrics           Metrics                `json:"baseMetrics"`
	PriorityScore         float64                `json:"priorityScore"`
	BuildingFacts         map[string]interface{} `json:"buildingFacts,omitempty"`
	BuildingFactsStatus   string                 `json:"buildingFactsStatus,omitempty"`
	BuildingFactsAttempts int                    `json:"buildingFactsAttempts"`
	TradeFacts            map[string]interface{} `json:"tradeFacts,omitempty"`
	DataSource            []string               `json:"dataSource"`
	Source                string                 `json:"source"`
	UpdatedAt             string                 `json:"updatedAt"`
	Summary               string                 `json:"summary"`
}

// RegionMetrics is the response of GET /region/metrics.
type RegionMetrics struct {
	RegionID   string  `json:"regionId"`
	RegionCode string  `json:"regionCode"`
	Name       string  `json:"name"`
	Level      string  `json:"level"`
	Metrics    Metrics `json:"metrics"`
	Source     string  `json:"source"`
	UpdatedAt  string  `json:"updatedAt"`
}

// RegionsClient covers the region lookups.
type RegionsClient struct {
	client *Client
}

// Summary resolves address and returns fused metrics and collected facts.
func (r *RegionsClient) Summary(ctx context.Context, address string) (*RegionSummary, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("address is required")
	}
	var out RegionSummary
	path := withQuery(apiPrefix+"/region/summary", url.Values{"address": {address}})
	if err := r.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Metrics returns the baseline metrics of a region code.
func (r *RegionsClient) Metrics(ctx context.Context, regionCode string) (*RegionMetrics, error) {
	if strings.TrimSpace(regionCode) == "" {
		return nil, fmt.Errorf("regionCode is required")
	}
	var out RegionMetrics
	path := withQuery(apiPrefix+"/region/metrics", url.Values{"regionCode": {regionCode}})
	if err := r.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
