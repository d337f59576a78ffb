package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/urban-dds/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 5*time.Millisecond)}, opts...)
	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

type testLogger struct {
	lastMsg string
	count   int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.log(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) log(format string, args ...interface{}) {
	atomic.AddInt32(&l.count, 1)
	l.lastMsg = fmt.Sprintf(format, args...)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://api.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "urbandds-go-sdk/")

	_, err = NewClient("")
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	_, err = NewClient("ftp://invalid")
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	_, err = NewClient("invalid-url")
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestClient_SubClientsAreShared(t *testing.T) {
	c, err := NewClient("http://localhost:8080")
	require.NoError(t, err)
	assert.Same(t, c.Regions(), c.Regions())
	assert.Same(t, c.Analysis(), c.Analysis())
}

func TestClient_Do_RequestHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("User-Agent"), "urbandds-go-sdk/")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, `{}`)
	}, WithAPIKey("k"))

	require.NoError(t, c.do(context.Background(), http.MethodPost, "x", map[string]string{"a": "b"}, nil))
}

func TestClient_Do_NoAuthorizationWithoutKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))
	})
	require.NoError(t, c.get(context.Background(), "/x", nil))
}

func TestClient_Do_4xxError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"No region found for address: x","code":"REGION_001"}`)
	})

	err := c.get(context.Background(), "/x", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "REGION_001", apiErr.Code)
	assert.Equal(t, "No region found for address: x", apiErr.Message)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Do_NonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "bad things")
	})
	err := c.get(context.Background(), "/x", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsBadRequest())
	assert.Equal(t, "bad things", apiErr.Message)
}

func TestClient_Do_5xxRetry(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})

	var out map[string]string
	require.NoError(t, c.get(context.Background(), "/x", &out))
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Do_5xxRetryExhausted(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithRetryMax(2))

	err := c.get(context.Background(), "/x", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Do_429RetryAfter(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	})

	require.NoError(t, c.get(context.Background(), "/x", nil))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Do_429WithoutRetryAfter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":"rate limit exceeded, please retry later","code":"RATE_LIMITED"}`)
	})
	err := c.get(context.Background(), "/x", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsRateLimited())
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, WithRetryWait(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.get(ctx, "/x", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Do_NetworkError(t *testing.T) {
	logger := &testLogger{}
	c, err := NewClient("http://127.0.0.1:1", WithRetryMax(1), WithRetryWait(time.Millisecond, time.Millisecond), WithLogger(logger))
	require.NoError(t, err)

	assert.Error(t, c.get(context.Background(), "/x", nil))
	assert.Contains(t, logger.lastMsg, "Request failed")
}

func TestCalculateBackoff(t *testing.T) {
	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: 300 * time.Millisecond}
	b1 := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b1, 100*time.Millisecond)
	assert.Less(t, b1, 125*time.Millisecond)
	b5 := c.calculateBackoff(5)
	assert.GreaterOrEqual(t, b5, 300*time.Millisecond)
	assert.Less(t, b5, 375*time.Millisecond)
}

func TestAPIError_Error(t *testing.T) {
	e := &APIError{StatusCode: 400, Code: "COMMON_010", Message: "regionCode is required", RequestID: "r1"}
	assert.Equal(t, "urbandds: COMMON_010 (HTTP 400): regionCode is required [request_id=r1]", e.Error())
}

func TestRegions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/region/summary":
			assert.Equal(t, "서울 마포구", r.URL.Query().Get("address"))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"regionCode": "mapo-gu", "priorityScore": 64.2, "metrics": map[string]float64{"agingScore": 70},
			})
		case "/api/v1/region/metrics":
			assert.Equal(t, "mapo-gu", r.URL.Query().Get("regionCode"))
			_, _ = io.WriteString(w, `{"regionCode":"mapo-gu","metrics":{"policyFit":65}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	s, err := c.Regions().Summary(ctx, "서울 마포구")
	require.NoError(t, err)
	assert.Equal(t, "mapo-gu", s.RegionCode)
	assert.Equal(t, 70.0, s.Metrics.AgingScore)

	m, err := c.Regions().Metrics(ctx, "mapo-gu")
	require.NoError(t, err)
	assert.Equal(t, 65.0, m.Metrics.PolicyFit)

	_, err = c.Regions().Summary(ctx, " ")
	assert.Error(t, err)
	_, err = c.Regions().Metrics(ctx, "")
	assert.Error(t, err)
}

func TestAnalysis_CreateReport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/analysis/report", r.URL.Path)
		var req ReportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mapo-gu", req.RegionCode)
		assert.Equal(t, 70.0, req.Metrics.AgingScore)

		w.Header().Set("x-analysis-report-saved", "false")
		w.Header().Set("x-analysis-report-save-reason", "persistence-disabled")
		_, _ = io.WriteString(w, `{"regionCode":"mapo-gu","reportVersion":2,"aiSource":"fallback","actionPlan":[{"phase":"1","task":"t","owner":"o","timeline":"3m"}]}`)
	})

	res, err := c.Analysis().CreateReport(context.Background(), &ReportRequest{
		RegionCode: "mapo-gu",
		Metrics:    &Metrics{AgingScore: 70, InfraRisk: 60, MarketScore: 55, PolicyFit: 65},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Report.ReportVersion)
	assert.Equal(t, "fallback", res.Report.AISource)
	require.Len(t, res.Report.ActionPlan, 1)
	assert.False(t, res.Persistence.Saved)
	assert.Equal(t, "persistence-disabled", res.Persistence.Reason)
}

func TestAnalysis_MarkdownListSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/analysis/document":
			assert.Equal(t, "markdown", r.URL.Query().Get("format"))
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			_, _ = io.WriteString(w, "# Urban-DDS 분석 리포트\n")
		case "/api/v1/analysis/reports":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_, _ = io.WriteString(w, `{"items":[{"id":"doc-1","regionCode":"mapo-gu"}]}`)
		case "/api/v1/analysis/reports/search":
			assert.Equal(t, "마포", r.URL.Query().Get("q"))
			assert.Empty(t, r.URL.Query().Get("limit"))
			_, _ = io.WriteString(w, `{"items":[]}`)
		}
	})
	ctx := context.Background()

	md, err := c.Analysis().Markdown(ctx, &ReportRequest{RegionCode: "mapo-gu"})
	require.NoError(t, err)
	assert.Contains(t, md, "# Urban-DDS 분석 리포트")

	items, err := c.Analysis().ListReports(ctx, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "doc-1", items[0].ID)

	items, err = c.Analysis().SearchReports(ctx, "마포", 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		_, _ = io.WriteString(w, `{"service":"urban-dds","status":"ok","version":"1.0.0"}`)
	})
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "urban-dds", h.Service)
}

//Personal.AI order the ending
