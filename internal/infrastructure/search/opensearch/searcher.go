package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/pkg/errors"
)

var searchFields = []string{"regionName^3", "regionCode^3", "executiveSummary^2", "summary"}

// SearchReports runs a multi_match over region and summary fields. An
// empty query lists the most recent reports.
func (r *ReportIndex) SearchReports(ctx context.Context, query string, limit int) ([]analysis.ReportListItem, error) {
	body, err := json.Marshal(buildReportQuery(query, analysis.NormalizeLimit(limit)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal query DSL")
	}

	req := opensearchapi.SearchRequest{
		Index: []string{r.index},
		Body:  bytes.NewReader(body),
	}

	start := time.Now()
	resp, err := req.Do(ctx, r.client.GetClient())
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New(errors.ErrCodeTimeout, "search request timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "search request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, handleErrorResponse(resp)
	}

	items, total, err := parseSearchResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Report search executed",
		logging.String("index", r.index),
		logging.String("query", query),
		logging.Int64("took_ms", time.Since(start).Milliseconds()),
		logging.Int64("hits", total))

	return items, nil
}

func buildReportQuery(query string, size int) map[string]interface{} {
	dsl := map[string]interface{}{
		"size": size,
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc", "unmapped_type": "date"}},
		},
	}

	query = strings.TrimSpace(query)
	if query == "" {
		dsl["query"] = map[string]interface{}{"match_all": map[string]interface{}{}}
		return dsl
	}

	dsl["query"] = map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []interface{}{
				map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": searchFields,
						"type":   "best_fields",
					},
				},
				map[string]interface{}{
					"term": map[string]interface{}{
						"regionCode": map[string]interface{}{"value": query, "boost": 5},
					},
				},
			},
			"minimum_should_match": 1,
		},
	}
	return dsl
}

func parseSearchResponse(body io.Reader) ([]analysis.ReportListItem, int64, error) {
	var resp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string          `json:"_id"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode search response")
	}

	items := make([]analysis.ReportListItem, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		var item analysis.ReportListItem
		if err := json.Unmarshal(h.Source, &item); err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode report hit")
		}
		if item.ID == "" {
			item.ID = h.ID
		}
		items = append(items, item)
	}
	return items, resp.Hits.Total.Value, nil
}

//Personal.AI order the ending
