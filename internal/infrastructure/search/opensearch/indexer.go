package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/pkg/errors"
)

const DefaultReportIndex = "urbandds-reports"

// ReportIndexMapping is the mapping used when the report index is created.
func ReportIndexMapping() map[string]interface{} {
	text := map[string]interface{}{"type": "text"}
	keyword := map[string]interface{}{"type": "keyword"}
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 1,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":                  keyword,
				"regionCode":          keyword,
				"regionName":          map[string]interface{}{"type": "text", "fields": map[string]interface{}{"raw": keyword}},
				"recommendedScenario": keyword,
				"summary":             text,
				"executiveSummary":    text,
				"priorityScore":       map[string]interface{}{"type": "float"},
				"confidence":          map[string]interface{}{"type": "integer"},
				"model":               keyword,
				"reportVersion":       map[string]interface{}{"type": "integer"},
				"createdAt":           map[string]interface{}{"type": "date"},
			},
		},
	}
}

// ReportIndex implements analysis.ReportIndex on an OpenSearch index.
type ReportIndex struct {
	client *Client
	index  string
	logger logging.Logger
}

var _ analysis.ReportIndex = (*ReportIndex)(nil)

// NewReportIndex binds the report index name, defaulting to DefaultReportIndex.
func NewReportIndex(client *Client, index string, logger logging.Logger) *ReportIndex {
	if index == "" {
		index = DefaultReportIndex
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReportIndex{client: client, index: index, logger: logger}
}

// Index returns the index name.
func (r *ReportIndex) Index() string {
	return r.index
}

// EnsureIndex creates the index with ReportIndexMapping when it is missing.
func (r *ReportIndex) EnsureIndex(ctx context.Context) error {
	exists, err := r.indexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body, err := json.Marshal(ReportIndexMapping())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal index mapping")
	}

	req := opensearchapi.IndicesCreateRequest{
		Index: r.index,
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, r.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "create index request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		readErr := handleErrorResponse(resp)
		if strings.Contains(readErr.Error(), "resource_already_exists_exception") {
			return nil
		}
		return readErr
	}

	r.logger.Info("Report index created", logging.String("index", r.index))
	return nil
}

func (r *ReportIndex) indexExists(ctx context.Context) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{Index: []string{r.index}}
	resp, err := req.Do(ctx, r.client.GetClient())
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeExternalService, "index exists request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, handleErrorResponse(resp)
	}
}

// IndexReport upserts one report under its document id.
func (r *ReportIndex) IndexReport(ctx context.Context, item analysis.ReportListItem) error {
	if strings.TrimSpace(item.ID) == "" {
		return errors.New(errors.ErrCodeValidation, "report id is required")
	}

	body, err := json.Marshal(item)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal report document")
	}

	req := opensearchapi.IndexRequest{
		Index:      r.index,
		DocumentID: item.ID,
		Body:       bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, r.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "index request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return handleErrorResponse(resp)
	}

	r.logger.Debug("Report indexed",
		logging.String("index", r.index),
		logging.String("id", item.ID),
		logging.String("region_code", item.RegionCode))
	return nil
}

// DeleteReport removes a report document. A missing document is not an error.
func (r *ReportIndex) DeleteReport(ctx context.Context, id string) error {
	req := opensearchapi.DeleteRequest{Index: r.index, DocumentID: id}
	resp, err := req.Do(ctx, r.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "delete request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.IsError() {
		return handleErrorResponse(resp)
	}
	return nil
}

func handleErrorResponse(resp *opensearchapi.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	var errResp struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(bodyBytes, &errResp); err == nil && errResp.Error.Type != "" {
		return errors.Newf(errors.ErrCodeExternalService, "opensearch error: %s - %s", errResp.Error.Type, errResp.Error.Reason)
	}
	return errors.Newf(errors.ErrCodeExternalService, "opensearch error status: %d", resp.StatusCode)
}

//Personal.AI order the ending
