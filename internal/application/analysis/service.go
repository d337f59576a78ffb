package analysis

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/urban-dds/internal/domain/region"
	"github.com/turtacn/urban-dds/internal/domain/scoring"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/internal/intelligence/narrative"
	"github.com/turtacn/urban-dds/pkg/errors"
)

// Caller-facing validation messages.
const (
	MsgInvalidBody          = "Invalid request body"
	MsgRegionCodeRequired   = "regionCode is required"
	MsgAddressRequired      = "address query parameter is required"
	MsgAddressNotMeaningful = "address query parameter has no meaningful value"
	MsgRegionCodeParam      = "regionCode query parameter is required"
)

const (
	defaultSaveTimeout = 5 * time.Second
	traceAlphabet      = "0123456789abcdefghijklmnopqrstuvwxyz"
	generatedAtLayout  = "2006-01-02T15:04:05.000Z07:00"
)

// Service is the analysis application service.
type Service interface {
	// CreateReport validates req, scores its metrics and attaches a policy
	// document.  Only caller-input problems fail it.
	CreateReport(ctx context.Context, req *ReportRequest) (*Report, error)
	// SaveReport persists report best-effort; it never fails.
	SaveReport(ctx context.Context, owner string, report *Report) PersistResult
	RegionSummary(ctx context.Context, address string) (*RegionSummary, error)
	RegionMetrics(ctx context.Context, code string) (*RegionMetrics, error)
	ListReports(ctx context.Context, owner string, limit int) (*ListResult, error)
	SearchReports(ctx context.Context, query string, limit int) (*ListResult, error)
}

// Deps wires a Service.  Registry and Narrative are required; the rest are
// optional and their features degrade when absent.
type Deps struct {
	Registry    *region.Registry
	Facts       FactsCollector
	Narrative   NarrativeGenerator
	Repository  ReportRepository
	Publisher   ReportPublisher
	Index       ReportIndex
	SaveTimeout time.Duration
	Logger      logging.Logger
	Now         func() time.Time
}

type serviceImpl struct {
	deps   Deps
	logger logging.Logger
	now    func() time.Time
}

// NewService creates a Service.
func NewService(deps Deps) (Service, error) {
	if deps.Registry == nil {
		return nil, errors.New(errors.ErrCodeInvalidParam, "region registry is required")
	}
	if deps.Narrative == nil {
		return nil, errors.New(errors.ErrCodeInvalidParam, "narrative generator is required")
	}
	if deps.SaveTimeout <= 0 {
		deps.SaveTimeout = defaultSaveTimeout
	}
	log := deps.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &serviceImpl{deps: deps, logger: log.Named("analysis"), now: now}, nil
}

// NewTraceID returns trace-<base36 unix millis>-<8 random base36 chars>.
func NewTraceID(now time.Time) string {
	var b strings.Builder
	b.WriteString("trace-")
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	b.WriteByte('-')
	for i := 0; i < 8; i++ {
		b.WriteByte(traceAlphabet[rand.Intn(len(traceAlphabet))])
	}
	return b.String()
}

// ValidateMetrics rejects missing metrics and any indicator outside [0, 100].
func ValidateMetrics(m *region.Metrics) error {
	if m == nil {
		return errors.Validation(region.MetricsValidationMessage)
	}
	return m.Validate()
}

// NormalizeLimit maps non-positive limits to DefaultListLimit and caps the
// rest at MaxListLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// resolveIdentifiers returns the canonical code and display name for the
// requested identifiers.  Unknown identifiers are echoed back verbatim.
func (s *serviceImpl) resolveIdentifiers(code, id string) (string, string) {
	if code != "" {
		if rec, err := s.deps.Registry.ResolveByCode(code); err == nil {
			return rec.Code, nameOr(rec.Name, code)
		}
	}
	if id != "" {
		if rec, err := s.deps.Registry.ResolveByID(id); err == nil {
			return rec.Code, nameOr(rec.Name, id)
		}
	}
	raw := code
	if raw == "" {
		raw = id
	}
	return raw, raw
}

func nameOr(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

// ============================================================================
// Reports
// ============================================================================

func (s *serviceImpl) CreateReport(ctx context.Context, req *ReportRequest) (*Report, error) {
	if req == nil {
		return nil, errors.Validation(MsgInvalidBody)
	}
	code := strings.TrimSpace(req.RegionCode)
	id := strings.TrimSpace(req.RegionID)
	if code == "" && id == "" {
		return nil, errors.Validation(MsgRegionCodeRequired)
	}
	regionCode, regionName := s.resolveIdentifiers(code, id)

	if req.metricsMalformed {
		return nil, errors.Validation(region.MetricsValidationMessage)
	}
	if err := ValidateMetrics(req.Metrics); err != nil {
		return nil, err
	}
	metrics := *req.Metrics

	scenario := scoring.Classify(metrics)
	score := scoring.Score(metrics)
	result := s.deps.Narrative.Generate(ctx, narrative.PromptInput{
		RegionName:    regionName,
		Metrics:       metrics,
		Scenario:      scenario,
		PriorityScore: score.PriorityScore,
	})
	doc := result.Document

	now := s.now()
	report := &Report{
		RegionCode:          regionCode,
		RegionName:          regionName,
		PriorityScore:       score.PriorityScore,
		RecommendedScenario: scenario,
		Summary:             doc.Summary,
		ExecutiveSummary:    doc.ExecutiveSummary,
		Evidence:            narrative.MergeEvidence(doc.Evidence, scoring.Evidence(metrics, scenario)),
		Risks:               doc.Risks,
		ActionPlan:          doc.ActionPlan,
		Confidence:          narrative.ClampPercent(float64(doc.Confidence)),
		Metrics:             metrics,
		WeightedScores:      score.Contributions,
		ReportVersion:       ReportVersion,
		Model:               s.deps.Narrative.Model(),
		GeneratedAt:         now.UTC().Format(generatedAtLayout),
		TraceID:             NewTraceID(now),
		AISource:            result.Source,
		FallbackReason:      result.FallbackReason,
	}

	s.logger.Info("analysis report created",
		logging.String("region_code", regionCode),
		logging.String("scenario", string(scenario)),
		logging.Float64("priority_score", score.PriorityScore),
		logging.String("ai_source", result.Source),
		logging.String("trace_id", report.TraceID))
	return report, nil
}

func (s *serviceImpl) SaveReport(ctx context.Context, owner string, report *Report) PersistResult {
	if s.deps.Repository == nil {
		return PersistResult{Reason: ReasonPersistenceDisabled}
	}
	if report == nil || strings.TrimSpace(report.RegionCode) == "" {
		return PersistResult{Reason: ReasonRegionCodeMissing}
	}
	if strings.TrimSpace(owner) == "" {
		owner = DefaultOwner
	}

	raw := strings.TrimSpace(report.RegionCode)
	code, name := s.resolveIdentifiers(raw, raw)
	if report.RegionName != "" {
		name = report.RegionName
	}
	in := PersistInput{OwnerUserID: owner, RegionCode: code, RegionName: name, Report: report}

	saveCtx, cancel := context.WithTimeout(ctx, s.deps.SaveTimeout)
	defer cancel()
	docID, err := s.deps.Repository.Save(saveCtx, in)
	if err != nil {
		s.logger.Warn("failed to persist analysis report",
			logging.String("region_code", code),
			logging.String("trace_id", report.TraceID),
			logging.Err(err))
		return PersistResult{Reason: ReasonSaveFailed}
	}

	s.afterSave(ctx, docID, in)
	return PersistResult{Saved: true, DocumentID: docID}
}

// afterSave publishes and indexes a saved report.  Both steps are
// best-effort.
func (s *serviceImpl) afterSave(ctx context.Context, docID string, in PersistInput) {
	if s.deps.Publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, s.deps.SaveTimeout)
		evt := ReportEvent{
			EventID:    uuid.NewString(),
			DocumentID: docID,
			Owner:      in.OwnerUserID,
			RegionCode: in.RegionCode,
			RegionName: in.RegionName,
			Report:     in.Report,
			CreatedAt:  s.now().UTC(),
		}
		if err := s.deps.Publisher.PublishReportCreated(pubCtx, evt); err != nil {
			s.logger.Warn("failed to publish report event", logging.String("document_id", docID), logging.Err(err))
		}
		cancel()
	}
	if s.deps.Index != nil {
		idxCtx, cancel := context.WithTimeout(ctx, s.deps.SaveTimeout)
		if err := s.deps.Index.IndexReport(idxCtx, ListItemFor(docID, in, s.now())); err != nil {
			s.logger.Warn("failed to index report", logging.String("document_id", docID), logging.Err(err))
		}
		cancel()
	}
}

// ListItemFor projects a persisted report onto its list representation.
func ListItemFor(docID string, in PersistInput, createdAt time.Time) ReportListItem {
	r := in.Report
	confidence := r.Confidence
	version := r.ReportVersion
	return ReportListItem{
		ID:                  docID,
		RegionCode:          in.RegionCode,
		RegionName:          in.RegionName,
		RecommendedScenario: r.RecommendedScenario,
		Summary:             r.Summary,
		ExecutiveSummary:    r.ExecutiveSummary,
		PriorityScore:       r.PriorityScore,
		Confidence:          &confidence,
		Model:               r.Model,
		ReportVersion:       &version,
		CreatedAt:           createdAt.UTC().Format(time.RFC3339),
	}
}

func (s *serviceImpl) ListReports(ctx context.Context, owner string, limit int) (*ListResult, error) {
	if s.deps.Repository == nil || strings.TrimSpace(owner) == "" {
		return &ListResult{Items: []ReportListItem{}}, nil
	}
	items, err := s.deps.Repository.ListRecent(ctx, owner, NormalizeLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "Failed to list reports")
	}
	if items == nil {
		items = []ReportListItem{}
	}
	return &ListResult{Items: items}, nil
}

func (s *serviceImpl) SearchReports(ctx context.Context, query string, limit int) (*ListResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.Validation("q query parameter is required")
	}
	if s.deps.Index == nil {
		return nil, errors.FeatureDisabled("report search is not configured")
	}
	items, err := s.deps.Index.SearchReports(ctx, query, NormalizeLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "Failed to search reports")
	}
	if items == nil {
		items = []ReportListItem{}
	}
	return &ListResult{Items: items}, nil
}

// ============================================================================
// Regions
// ============================================================================

func (s *serviceImpl) RegionSummary(ctx context.Context, address string) (*RegionSummary, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, errors.Validation(MsgAddressRequired)
	}
	if !region.HasMeaningfulInput(address) {
		return nil, errors.Validation(MsgAddressNotMeaningful)
	}

	rec, err := s.deps.Registry.ResolveByAddress(address)
	if err != nil {
		return nil, err
	}

	facts := region.ExternalFacts{DataSource: []string{}, BuildingStatus: region.FactsStatusDisabled}
	if s.deps.Facts != nil {
		facts = s.deps.Facts.Collect(ctx, rec)
	}
	fused := scoring.Fuse(rec.Metrics, facts, s.now().Year())
	score := scoring.Score(fused)

	dataSource := facts.DataSource
	if dataSource == nil {
		dataSource = []string{}
	}
	return &RegionSummary{
		RegionID:              rec.ID,
		RegionCode:            rec.Code,
		Name:                  rec.Name,
		Level:                 rec.Level,
		Center:                rec.Center,
		Metrics:               fused,
		BaseMetrics:           rec.Metrics,
		PriorityScore:         score.PriorityScore,
		BuildingFacts:         facts.Building,
		BuildingFactsStatus:   facts.BuildingStatus,
		BuildingFactsAttempts: facts.BuildingAttempts,
		TradeFacts:            facts.Trade,
		DataSource:            dataSource,
		Source:                rec.Source,
		UpdatedAt:             rec.LastUpdated.UTC().Format(time.RFC3339),
		Summary:               summaryNote(address, dataSource),
	}, nil
}

func summaryNote(address string, dataSource []string) string {
	note := "Derived from address match for \"" + address + "\"."
	if len(dataSource) > 0 {
		note += " Fused with external facts from " + strings.Join(dataSource, ", ") + "."
	}
	return note
}

func (s *serviceImpl) RegionMetrics(_ context.Context, code string) (*RegionMetrics, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.Validation(MsgRegionCodeParam)
	}
	rec, err := s.deps.Registry.ResolveByCode(code)
	if err != nil {
		return nil, errors.Newf(errors.ErrCodeRegionNotFound, "No metrics found for regionCode: %s", code)
	}
	return &RegionMetrics{
		RegionID:   rec.ID,
		RegionCode: rec.Code,
		Name:       rec.Name,
		Level:      rec.Level,
		Metrics:    rec.Metrics,
		Source:     rec.Source,
		UpdatedAt:  rec.LastUpdated.UTC().Format(time.RFC3339),
	}, nil
}

//Personal.AI order the ending
