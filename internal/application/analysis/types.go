// Package analysis orchestrates region lookups, external-facts fusion,
// scoring and narrative generation into the summaries and reports served
// to callers, and hands finished reports to best-effort persistence.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/turtacn/urban-dds/internal/domain/region"
	"github.com/turtacn/urban-dds/internal/domain/scoring"
	"github.com/turtacn/urban-dds/internal/intelligence/narrative"
)

// ReportVersion is stamped on every generated report.
const ReportVersion = 2

// DefaultOwner owns reports when no caller identity is available.
const DefaultOwner = "anonymous"

// Persistence failure reasons.
const (
	ReasonPersistenceDisabled = "persistence-disabled"
	ReasonRegionCodeMissing   = "regionCode-missing"
	ReasonSaveFailed          = "save-failed"
)

// List limits.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ============================================================================
// DTOs
// ============================================================================

// ReportRequest is the analysis input.  RegionCode is preferred; RegionID is
// accepted when RegionCode is blank or unknown.
type ReportRequest struct {
	RegionCode string          `json:"regionCode,omitempty"`
	RegionID   string          `json:"regionId,omitempty"`
	Metrics    *region.Metrics `json:"metrics"`

	// set when the decoded metrics object had a missing, null or
	// non-numeric indicator
	metricsMalformed bool
}

type reportRequestWire struct {
	RegionCode json.RawMessage `json:"regionCode"`
	RegionID   json.RawMessage `json:"regionId"`
	Metrics    json.RawMessage `json:"metrics"`
}

type metricsWire struct {
	AgingScore  *float64 `json:"agingScore"`
	InfraRisk   *float64 `json:"infraRisk"`
	MarketScore *float64 `json:"marketScore"`
	PolicyFit   *float64 `json:"policyFit"`
}

// UnmarshalJSON decodes a request body field by field.  Only a body that is
// not a JSON object fails; identifiers that are not strings are dropped and
// a metrics object lacking any of its four numbers is flagged so that
// CreateReport rejects it with the metrics validation message.
func (r *ReportRequest) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		return nil
	}
	var wire reportRequestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = ReportRequest{
		RegionCode: decodeJSONString(wire.RegionCode),
		RegionID:   decodeJSONString(wire.RegionID),
	}
	if isJSONNull(wire.Metrics) {
		return nil
	}

	var m metricsWire
	if err := json.Unmarshal(wire.Metrics, &m); err != nil ||
		m.AgingScore == nil || m.InfraRisk == nil || m.MarketScore == nil || m.PolicyFit == nil {
		r.Metrics = &region.Metrics{}
		r.metricsMalformed = true
		return nil
	}
	r.Metrics = &region.Metrics{
		AgingScore:  *m.AgingScore,
		InfraRisk:   *m.InfraRisk,
		MarketScore: *m.MarketScore,
		PolicyFit:   *m.PolicyFit,
	}
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeJSONString(raw json.RawMessage) string {
	var s string
	if isJSONNull(raw) || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// Report is a generated analysis report.
type Report struct {
	RegionCode          string                 `json:"regionCode"`
	RegionName          string                 `json:"regionName"`
	PriorityScore       float64                `json:"priorityScore"`
	RecommendedScenario scoring.Scenario       `json:"recommendedScenario"`
	Summary             string                 `json:"summary"`
	ExecutiveSummary    string                 `json:"executiveSummary"`
	Evidence            []string               `json:"evidence"`
	Risks               []string               `json:"risks"`
	ActionPlan          []narrative.ActionItem `json:"actionPlan"`
	Confidence          int                    `json:"confidence"`
	Metrics             region.Metrics         `json:"metrics"`
	WeightedScores      scoring.Weights        `json:"weightedScores"`
	ReportVersion       int                    `json:"reportVersion"`
	Model               string                 `json:"model"`
	GeneratedAt         string                 `json:"generatedAt"`
	TraceID             string                 `json:"traceId"`
	AISource            string                 `json:"aiSource"`
	FallbackReason      string                 `json:"fallbackReason,omitempty"`
}

// RegionSummary is a resolved region with fused metrics and collected facts.
type RegionSummary struct {
	RegionID              string                `json:"regionId"`
	RegionCode            string                `json:"regionCode"`
	Name                  string                `json:"name"`
	Level                 region.Level          `json:"level"`
	Center                region.GeoPoint       `json:"center"`
	Metrics               region.Metrics        `json:"metrics"`
	BaseMetrics           region.Metrics        `json:"baseMetrics"`
	PriorityScore         float64               `json:"priorityScore"`
	BuildingFacts         *region.BuildingFacts `json:"buildingFacts,omitempty"`
	BuildingFactsStatus   region.FactsStatus    `json:"buildingFactsStatus,omitempty"`
	BuildingFactsAttempts int                   `json:"buildingFactsAttempts"`
	TradeFacts            *region.TradeFacts    `json:"tradeFacts,omitempty"`
	DataSource            []string              `json:"dataSource"`
	Source                string                `json:"source"`
	UpdatedAt             string                `json:"updatedAt"`
	Summary               string                `json:"summary"`
}

// RegionMetrics is the baseline view of a region looked up by code.
type RegionMetrics struct {
	RegionID   string         `json:"regionId"`
	RegionCode string         `json:"regionCode"`
	Name       string         `json:"name"`
	Level      region.Level   `json:"level"`
	Metrics    region.Metrics `json:"metrics"`
	Source     string         `json:"source"`
	UpdatedAt  string         `json:"updatedAt"`
}

// ReportListItem is the stored projection of a report.
type ReportListItem struct {
	ID                  string           `json:"id"`
	RegionCode          string           `json:"regionCode"`
	RegionName          string           `json:"regionName"`
	RecommendedScenario scoring.Scenario `json:"recommendedScenario"`
	Summary             string           `json:"summary"`
	ExecutiveSummary    string           `json:"executiveSummary,omitempty"`
	PriorityScore       float64          `json:"priorityScore"`
	Confidence          *int             `json:"confidence,omitempty"`
	Model               string           `json:"model,omitempty"`
	ReportVersion       *int             `json:"reportVersion,omitempty"`
	CreatedAt           string           `json:"createdAt,omitempty"`
}

// ListResult wraps listed or searched reports.
type ListResult struct {
	Items []ReportListItem `json:"items"`
}

// PersistInput is handed to the repository.
type PersistInput struct {
	OwnerUserID string
	RegionCode  string
	RegionName  string
	Report      *Report
}

// PersistResult reports the outcome of a best-effort save.
type PersistResult struct {
	Saved      bool   `json:"saved"`
	DocumentID string `json:"documentId,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// ReportEvent announces a persisted report.
type ReportEvent struct {
	EventID    string    `json:"eventId"`
	DocumentID string    `json:"documentId"`
	Owner      string    `json:"owner"`
	RegionCode string    `json:"regionCode"`
	RegionName string    `json:"regionName"`
	Report     *Report   `json:"report"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ============================================================================
// Ports
// ============================================================================

// FactsCollector gathers external facts for a region.
type FactsCollector interface {
	Collect(ctx context.Context, rec *region.Region) region.ExternalFacts
}

// NarrativeGenerator produces the policy document of a report.
type NarrativeGenerator interface {
	Generate(ctx context.Context, in narrative.PromptInput) narrative.Result
	Model() string
}

// ReportRepository stores reports.
type ReportRepository interface {
	Save(ctx context.Context, in PersistInput) (string, error)
	ListRecent(ctx context.Context, owner string, limit int) ([]ReportListItem, error)
}

// ReportPublisher announces persisted reports.
type ReportPublisher interface {
	PublishReportCreated(ctx context.Context, evt ReportEvent) error
}

// ReportIndex makes persisted reports searchable.
type ReportIndex interface {
	IndexReport(ctx context.Context, item ReportListItem) error
	SearchReports(ctx context.Context, query string, limit int) ([]ReportListItem, error)
}

//Personal.AI order the ending
