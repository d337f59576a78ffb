package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Response headers set by POST /analysis/report.
const (
	headerReportSaved      = "x-analysis-report-saved"
	headerReportID         = "x-analysis-report-id"
	headerReportSaveReason = "x-analysis-report-save-reason"
)

// ReportRequest asks for an analysis of a region.  RegionCode is preferred
// over RegionID.
type ReportRequest struct {
	RegionCode string   `json:"regionCode,omitempty"`
	RegionID   string   `json:"regionId,omitempty"`
	Metrics    *Metrics `json:"metrics"`
}

// ActionItem is one row of a report's action plan.
type ActionItem struct {
	Phase    string `json:"phase"`
	Task     string `json:"task"`
	Owner    string `json:"owner"`
	Timeline string `json:"timeline"`
}

// Report is a generated analysis report.
type Report struct {
	RegionCode          string             `json:"regionCode"`
	RegionName          string             `json:"regionName"`
	PriorityScore       float64            `json:"priorityScore"`
	RecommendedScenario string             `json:"recommendedScenario"`
	Summary             string             `json:"summary"`
	ExecutiveSummary    string             `json:"executiveSummary"`
	Evidence            []string           `json:"evidence"`
	Risks               []string           `json:"risks"`
	ActionPlan          []ActionItem       `json:"actionPlan"`
	Confidence          int                `json:"confidence"`
	Metrics             Metrics            `json:"metrics"`
	WeightedScores      Metrics            `json:"weightedScores"`
	ReportVersion       int                `json:"reportVersion"`
	Model               string             `json:"model"`
	GeneratedAt         string             `json:"generatedAt"`
	TraceID             string             `json:"traceId"`
	AISource            string             `json:"aiSource"`
	FallbackReason      string             `json:"fallbackReason,omitempty"`
}

// Persistence is the save outcome carried in the response headers.
type Persistence struct {
	Saved      bool
	DocumentID string
	Reason     string
}

// ReportResult is a created report plus its save outcome.
type ReportResult struct {
	Report      *Report
	Persistence Persistence
}

// ReportListItem is one stored report.
type ReportListItem struct {
	ID                  string  `json:"id"`
	RegionCode          string  `json:"regionCode"`
	RegionName          string  `json:"regionName"`
	RecommendedScenario string  `json:"recommendedScenario"`
	Summary             string  `json:"summary"`
	ExecutiveSummary    string  `json:"executiveSummary,omitempty"`
	PriorityScore       float64 `json:"priorityScore"`
	Confidence          *int    `json:"confidence,omitempty"`
	Model               string  `json:"model,omitempty"`
	ReportVersion       *int    `json:"reportVersion,omitempty"`
	CreatedAt           string  `json:"createdAt,omitempty"`
}

type listResponse struct {
	Items []ReportListItem `json:"items"`
}

// AnalysisClient covers report creation, rendering, listing and search.
type AnalysisClient struct {
	client *Client
}

// CreateReport generates a report; the server saves it best-effort.
func (a *AnalysisClient) CreateReport(ctx context.Context, req *ReportRequest) (*ReportResult, error) {
	resp, err := a.client.doRaw(ctx, http.MethodPost, apiPrefix+"/analysis/report", req)
	if err != nil {
		return nil, err
	}
	var report Report
	if err := decode(resp.body, &report); err != nil {
		return nil, err
	}
	saved, _ := strconv.ParseBool(resp.header.Get(headerReportSaved))
	return &ReportResult{
		Report: &report,
		Persistence: Persistence{
			Saved:      saved,
			DocumentID: resp.header.Get(headerReportID),
			Reason:     resp.header.Get(headerReportSaveReason),
		},
	}, nil
}

// Markdown renders a report document without saving it.
func (a *AnalysisClient) Markdown(ctx context.Context, req *ReportRequest) (string, error) {
	resp, err := a.client.doRaw(ctx, http.MethodPost, apiPrefix+"/analysis/document?format=markdown", req)
	if err != nil {
		return "", err
	}
	return string(resp.body), nil
}

// ListReports returns the most recent saved reports.  A non-positive limit
// uses the server default.
func (a *AnalysisClient) ListReports(ctx context.Context, limit int) ([]ReportListItem, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out listResponse
	if err := a.client.get(ctx, withQuery(apiPrefix+"/analysis/reports", q), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// SearchReports runs a full-text search over saved reports.
func (a *AnalysisClient) SearchReports(ctx context.Context, query string, limit int) ([]ReportListItem, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out listResponse
	if err := a.client.get(ctx, withQuery(apiPrefix+"/analysis/reports/search", q), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

//Personal.AI order the ending
