package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/internal/domain/scoring"
	"github.com/turtacn/urban-dds/internal/infrastructure/database/postgres"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/pkg/errors"
)

type sqlExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type postgresReportRepo struct {
	conn *postgres.Connection
	log  logging.Logger
	now  func() time.Time
}

// ReportRepoOption customises the report repository.
type ReportRepoOption func(*postgresReportRepo)

// WithClock overrides the created_at source.
func WithClock(now func() time.Time) ReportRepoOption {
	return func(r *postgresReportRepo) { r.now = now }
}

// NewPostgresReportRepo returns the analysis_reports backed repository.
func NewPostgresReportRepo(conn *postgres.Connection, log logging.Logger, opts ...ReportRepoOption) analysis.ReportRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	r := &postgresReportRepo{conn: conn, log: log, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *postgresReportRepo) executor() sqlExecutor {
	return r.conn.DB()
}

// Save stores the full report document and returns its generated id.
func (r *postgresReportRepo) Save(ctx context.Context, in analysis.PersistInput) (string, error) {
	if in.Report == nil {
		return "", errors.New(errors.ErrCodeValidation, "report is required")
	}
	doc, err := json.Marshal(in.Report)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode report")
	}

	id := uuid.New()
	query := `
		INSERT INTO analysis_reports (
			id, owner_user_id, region_code, region_name, recommended_scenario, summary,
			executive_summary, priority_score, confidence, model, report_version, report, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`
	_, err = r.executor().ExecContext(ctx, query,
		id, in.OwnerUserID, in.RegionCode, in.RegionName, string(in.Report.RecommendedScenario), in.Report.Summary,
		in.Report.ExecutiveSummary, in.Report.PriorityScore, in.Report.Confidence, in.Report.Model,
		in.Report.ReportVersion, doc, r.now().UTC(),
	)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save analysis report")
	}

	r.log.Debug("analysis report saved",
		logging.String("id", id.String()),
		logging.String("region_code", in.RegionCode),
	)
	return id.String(), nil
}

// ListRecent returns the newest reports of owner, newest first.
func (r *postgresReportRepo) ListRecent(ctx context.Context, owner string, limit int) ([]analysis.ReportListItem, error) {
	query := `
		SELECT id, region_code, region_name, recommended_scenario, summary, executive_summary,
			priority_score, confidence, model, report_version, created_at
		FROM analysis_reports
		WHERE owner_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.executor().QueryContext(ctx, query, owner, analysis.NormalizeLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list analysis reports")
	}
	defer rows.Close()

	items := make([]analysis.ReportListItem, 0)
	for rows.Next() {
		item, err := scanReportListItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate analysis reports")
	}
	return items, nil
}

func scanReportListItem(row rowScanner) (analysis.ReportListItem, error) {
	var (
		item       analysis.ReportListItem
		scenario   string
		confidence sql.NullInt32
		version    sql.NullInt32
		createdAt  time.Time
	)
	err := row.Scan(
		&item.ID, &item.RegionCode, &item.RegionName, &scenario, &item.Summary, &item.ExecutiveSummary,
		&item.PriorityScore, &confidence, &item.Model, &version, &createdAt,
	)
	if err != nil {
		return item, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan analysis report")
	}
	item.RecommendedScenario = scoring.Scenario(scenario)
	if confidence.Valid {
		v := int(confidence.Int32)
		item.Confidence = &v
	}
	if version.Valid {
		v := int(version.Int32)
		item.ReportVersion = &v
	}
	if !createdAt.IsZero() {
		item.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	}
	return item, nil
}

//Personal.AI order the ending
