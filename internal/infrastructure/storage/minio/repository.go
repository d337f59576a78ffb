package minio

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid request")
)

const (
	reportPrefix        = "reports"
	markdownContentType = "text/markdown; charset=utf-8"
)

// UploadResult describes a stored object.
type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	VersionID  string
	UploadedAt time.Time
}

// ReportArchive stores rendered markdown reports in the report bucket.
type ReportArchive interface {
	Archive(ctx context.Context, ev analysis.ReportEvent) (*UploadResult, error)
	Exists(ctx context.Context, regionCode, documentID string) (bool, error)
	Delete(ctx context.Context, regionCode, documentID string) error
	PresignedURL(ctx context.Context, regionCode, documentID string, expiry time.Duration) (string, error)
}

type minioReportArchive struct {
	client *MinIOClient
	logger logging.Logger
	now    func() time.Time
}

// NewReportArchive returns the MinIO backed ReportArchive.
func NewReportArchive(client *MinIOClient, log logging.Logger) ReportArchive {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &minioReportArchive{client: client, logger: log, now: time.Now}
}

// ObjectKey returns reports/<regionCode>/<documentId>.md.  Path separators
// inside either part are replaced so one report maps to one object.
func ObjectKey(regionCode, documentID string) string {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		s = strings.ReplaceAll(s, "/", "_")
		return strings.ReplaceAll(s, "\\", "_")
	}
	return reportPrefix + "/" + clean(regionCode) + "/" + clean(documentID) + ".md"
}

func (r *minioReportArchive) Archive(ctx context.Context, ev analysis.ReportEvent) (*UploadResult, error) {
	if ev.Report == nil || strings.TrimSpace(ev.DocumentID) == "" || strings.TrimSpace(ev.RegionCode) == "" {
		return nil, ErrInvalidRequest
	}
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}

	body := []byte(analysis.RenderMarkdown(ev.Report))
	key := ObjectKey(ev.RegionCode, ev.DocumentID)

	info, err := api.PutObject(ctx, r.client.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: markdownContentType,
		UserMetadata: map[string]string{
			"document-id": ev.DocumentID,
			"region-code": ev.RegionCode,
			"trace-id":    ev.Report.TraceID,
			"owner":       ev.Owner,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeStorage, "failed to upload %s", key)
	}

	r.logger.Info("report archived",
		logging.String("bucket", r.client.bucket),
		logging.String("key", key),
		logging.Int64("size", info.Size))

	return &UploadResult{
		Bucket:     r.client.bucket,
		ObjectKey:  key,
		ETag:       info.ETag,
		Size:       info.Size,
		VersionID:  info.VersionID,
		UploadedAt: r.now().UTC(),
	}, nil
}

func (r *minioReportArchive) Exists(ctx context.Context, regionCode, documentID string) (bool, error) {
	api, err := r.client.api()
	if err != nil {
		return false, err
	}
	_, err = api.StatObject(ctx, r.client.bucket, ObjectKey(regionCode, documentID), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeStorage, "failed to stat report object")
}

func (r *minioReportArchive) Delete(ctx context.Context, regionCode, documentID string) error {
	api, err := r.client.api()
	if err != nil {
		return err
	}
	if err := api.RemoveObject(ctx, r.client.bucket, ObjectKey(regionCode, documentID), minio.RemoveObjectOptions{}); err != nil {
		if isNotFound(err) {
			return ErrObjectNotFound
		}
		return errors.Wrap(err, errors.ErrCodeStorage, "failed to delete report object")
	}
	return nil
}

func (r *minioReportArchive) PresignedURL(ctx context.Context, regionCode, documentID string, expiry time.Duration) (string, error) {
	api, err := r.client.api()
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = time.Hour
	}
	u, err := api.PresignedGetObject(ctx, r.client.bucket, ObjectKey(regionCode, documentID), expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "failed to presign report object")
	}
	return u.String(), nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
}

//Personal.AI order the ending
