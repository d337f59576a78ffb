package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
)

// Response headers set on report creation.
const (
	HeaderReportSaved      = "x-analysis-report-saved"
	HeaderReportVersion    = "x-analysis-report-version"
	HeaderReportModel      = "x-analysis-report-model"
	HeaderReportTraceID    = "x-analysis-report-trace-id"
	HeaderAISource         = "x-analysis-ai-source"
	HeaderFallbackReason   = "x-analysis-fallback-reason"
	HeaderReportID         = "x-analysis-report-id"
	HeaderReportSaveReason = "x-analysis-report-save-reason"
)

const markdownContentType = "text/markdown; charset=utf-8"

// Persistence outcomes reported to the ReportRecorder.
const (
	PersistOutcomeSaved = "saved"
)

// ReportRecorder receives report observations.  It is optional.
type ReportRecorder interface {
	ObserveReport(scenario, narrativeSource string)
	ObservePersistence(outcome string)
}

// AnalysisHandler serves report creation, rendering, listing and search.
type AnalysisHandler struct {
	svc      analysis.Service
	owner    string
	recorder ReportRecorder
	logger   logging.Logger
}

// AnalysisOption configures an AnalysisHandler.
type AnalysisOption func(*AnalysisHandler)

// WithOwner sets the owner recorded on saved reports.
func WithOwner(owner string) AnalysisOption {
	return func(h *AnalysisHandler) {
		if strings.TrimSpace(owner) != "" {
			h.owner = owner
		}
	}
}

// WithReportRecorder installs a ReportRecorder.
func WithReportRecorder(r ReportRecorder) AnalysisOption {
	return func(h *AnalysisHandler) { h.recorder = r }
}

func NewAnalysisHandler(svc analysis.Service, log logging.Logger, opts ...AnalysisOption) *AnalysisHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	h := &AnalysisHandler{svc: svc, owner: analysis.DefaultOwner, logger: log}
	for _, o := range opts {
		o(h)
	}
	return h
}

// bindReportRequest decodes the body.  An unreadable or non-object body
// yields a nil request, which the service rejects.  Mistyped fields are
// decoded by analysis.ReportRequest so they surface as field errors.
func bindReportRequest(c *gin.Context) *analysis.ReportRequest {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil
	}
	var req analysis.ReportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil
	}
	if strings.TrimSpace(string(body)) == "null" {
		return nil
	}
	return &req
}

// CreateReport handles POST /analysis/report.
func (h *AnalysisHandler) CreateReport(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := h.svc.CreateReport(ctx, bindReportRequest(c))
	if err != nil {
		writeError(c, err)
		return
	}
	persist := h.svc.SaveReport(ctx, h.owner, report)
	if !persist.Saved {
		h.logger.Debug("report not saved",
			logging.String("trace_id", report.TraceID),
			logging.String("reason", persist.Reason))
	}

	if h.recorder != nil {
		h.recorder.ObserveReport(string(report.RecommendedScenario), report.AISource)
		outcome := PersistOutcomeSaved
		if !persist.Saved {
			outcome = persist.Reason
		}
		h.recorder.ObservePersistence(outcome)
	}

	c.Header(HeaderReportSaved, strconv.FormatBool(persist.Saved))
	if report.ReportVersion > 0 {
		c.Header(HeaderReportVersion, strconv.Itoa(report.ReportVersion))
	}
	if report.Model != "" {
		c.Header(HeaderReportModel, report.Model)
	}
	if report.TraceID != "" {
		c.Header(HeaderReportTraceID, report.TraceID)
	}
	setSourceHeaders(c, report)
	if persist.DocumentID != "" {
		c.Header(HeaderReportID, persist.DocumentID)
	}
	if !persist.Saved && persist.Reason != "" {
		c.Header(HeaderReportSaveReason, persist.Reason)
	}

	c.JSON(http.StatusOK, report)
}

func setSourceHeaders(c *gin.Context, report *analysis.Report) {
	if report.AISource != "" {
		c.Header(HeaderAISource, report.AISource)
	}
	if report.FallbackReason != "" {
		c.Header(HeaderFallbackReason, report.FallbackReason)
	}
}

// Document handles POST /analysis/document?format=markdown|json.  The
// report is generated but not saved.  Markdown is the default.
func (h *AnalysisHandler) Document(c *gin.Context) {
	report, err := h.svc.CreateReport(c.Request.Context(), bindReportRequest(c))
	if err != nil {
		writeError(c, err)
		return
	}
	setSourceHeaders(c, report)

	if strings.EqualFold(strings.TrimSpace(c.Query("format")), "json") {
		c.JSON(http.StatusOK, report)
		return
	}
	c.Data(http.StatusOK, markdownContentType, []byte(analysis.RenderMarkdown(report)))
}

// ListReports handles GET /analysis/reports?limit=.
func (h *AnalysisHandler) ListReports(c *gin.Context) {
	res, err := h.svc.ListReports(c.Request.Context(), h.owner, parseLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SearchReports handles GET /analysis/reports/search?q=&limit=.
func (h *AnalysisHandler) SearchReports(c *gin.Context) {
	res, err := h.svc.SearchReports(c.Request.Context(), c.Query("q"), parseLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

//Personal.AI order the ending
