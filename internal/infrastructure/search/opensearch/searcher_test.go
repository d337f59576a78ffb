package opensearch

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	pkgerrors "github.com/turtacn/urban-dds/pkg/errors"
)

func TestBuildReportQuery(t *testing.T) {
	dsl := buildReportQuery("  마포  ", 20)
	assert.Equal(t, 20, dsl["size"])

	raw, err := json.Marshal(dsl)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"multi_match"`)
	assert.Contains(t, string(raw), `"query":"마포"`)
	assert.Contains(t, string(raw), `"regionCode"`)

	all := buildReportQuery("", 5)
	raw, err = json.Marshal(all)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"match_all"`)
}

func TestSearchReports(t *testing.T) {
	item := sampleItem()
	src, _ := json.Marshal(item)

	idx, cluster := newTestReportIndex(t, func(w http.ResponseWriter, r *http.Request, body string) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"took":3,"hits":{"total":{"value":2},"hits":[` +
			`{"_id":"doc-1","_score":2.1,"_source":` + string(src) + `},` +
			`{"_id":"doc-2","_score":1.0,"_source":{"regionCode":"jongno-gu","summary":"s"}}]}}`))
	})

	items, err := idx.SearchReports(context.Background(), "마포", 500)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, item, items[0])
	assert.Equal(t, "doc-2", items[1].ID)
	assert.Equal(t, "jongno-gu", items[1].RegionCode)

	req := cluster.last()
	assert.Equal(t, "/reports-test/_search", req.Path)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.Body), &sent))
	assert.EqualValues(t, analysis.MaxListLimit, sent["size"])
}

func TestSearchReports_ErrorResponse(t *testing.T) {
	idx, _ := newTestReportIndex(t, func(w http.ResponseWriter, r *http.Request, body string) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception","reason":"no such index"}}`))
	})

	_, err := idx.SearchReports(context.Background(), "x", 10)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeExternalService))
	assert.Contains(t, err.Error(), "index_not_found_exception")
}

func TestSearchReports_BadBody(t *testing.T) {
	idx, _ := newTestReportIndex(t, func(w http.ResponseWriter, r *http.Request, body string) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"hits":`))
	})

	_, err := idx.SearchReports(context.Background(), "x", 10)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

//Personal.AI order the ending
