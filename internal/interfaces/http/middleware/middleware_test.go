package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS_AllowAll(t *testing.T) {
	r := gin.New()
	r.Use(CORS(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/x", http.Header{"Origin": {"https://planner.example.org"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Expose-Headers")), "x-analysis-report-id")
}

func TestCORS_ExplicitOrigins(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000/", "*.urban-dds.kr"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/x", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = serve(r, http.MethodGet, "/x", http.Header{"Origin": {"https://app.urban-dds.kr"}})
	assert.Equal(t, "https://app.urban-dds.kr", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/x", http.Header{"Origin": {"https://evil.example.com"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodOptions, "/x", http.Header{
		"Origin":                        {"http://localhost:3000"},
		"Access-Control-Request-Method": {"POST"},
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORSConfig_Wildcard(t *testing.T) {
	cfg := CORSConfig([]string{"https://a.kr", "*"})
	assert.True(t, cfg.AllowAllOrigins)
	assert.Nil(t, cfg.AllowOriginFunc)
}

func newObservedLogger() (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return logging.NewLoggerFromCore(core), logs
}

func TestRequestLogging_Levels(t *testing.T) {
	log, logs := newObservedLogger()

	r := gin.New()
	r.Use(RequestID(log), RequestLogging(log, LoggingConfig{SkipPaths: []string{"/skip"}}))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "fine") })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/skip", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/ok?x=1", http.Header{HeaderRequestID: {"req-1"}})
	serve(r, http.MethodGet, "/bad", nil)
	serve(r, http.MethodGet, "/boom", nil)
	serve(r, http.MethodGet, "/skip", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok?x=1", fields["path"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.EqualValues(t, 4, fields["bytes"])

	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
}

func TestRequestLogging_Slow(t *testing.T) {
	log, logs := newObservedLogger()

	r := gin.New()
	r.Use(RequestLogging(log, LoggingConfig{SlowThreshold: time.Millisecond}))
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(3 * time.Millisecond)
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodGet, "/slow", nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
}

func TestRequestID_AssignsAndPropagates(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(RequestID(logging.NewNopLogger()))
	r.GET("/x", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/x", nil)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(HeaderRequestID))

	w = serve(r, http.MethodGet, "/x", http.Header{HeaderRequestID: {"given"}})
	assert.Equal(t, "given", w.Header().Get(HeaderRequestID))
}

func TestTokenBucketLimiter(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	l := NewTokenBucketLimiter(1, 2, time.Minute)
	l.now = func() time.Time { return now }

	ok, info := l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, info.Remaining)
	ok, _ = l.Allow("a")
	assert.True(t, ok)
	ok, info = l.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 0, info.Remaining)

	ok, _ = l.Allow("b")
	assert.True(t, ok)

	now = now.Add(1500 * time.Millisecond)
	ok, _ = l.Allow("a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.BucketCount())
}

func TestRateLimit_Middleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(NewTokenBucketLimiter(0.001, 1, 0)))
	r.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/probe", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = serve(r, http.MethodGet, "/probe", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"code":"RATE_LIMITED"`)
}

type recordedHTTP struct {
	method, path string
	status       int
}

type fakeHTTPRecorder struct{ calls []recordedHTTP }

func (f *fakeHTTPRecorder) RecordHTTPRequest(method, path string, status int, _ time.Duration) {
	f.calls = append(f.calls, recordedHTTP{method, path, status})
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	rec := &fakeHTTPRecorder{}
	r := gin.New()
	r.Use(Metrics(rec))
	r.GET("/region/summary", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/region/summary?address=mapo", nil)
	serve(r, http.MethodGet, "/nope", nil)

	require.Len(t, rec.calls, 2)
	assert.Equal(t, recordedHTTP{"GET", "/region/summary", 200}, rec.calls[0])
	assert.Equal(t, recordedHTTP{"GET", "unmatched", 404}, rec.calls[1])
}

//Personal.AI order the ending
