package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/urban-dds/internal/config"
	pkgerrors "github.com/turtacn/urban-dds/pkg/errors"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, nil)
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestCollectorConfigFrom(t *testing.T) {
	cfg := CollectorConfigFrom(config.MetricsConfig{})
	assert.Equal(t, DefaultNamespace, cfg.Namespace)
	assert.True(t, cfg.EnableGoMetrics)

	cfg = CollectorConfigFrom(config.MetricsConfig{Namespace: "custom"})
	assert.Equal(t, "custom", cfg.Namespace)
}

func TestRuntimeCollectors(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "rt", EnableGoMetrics: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "go_goroutines")
}

func TestRegisterCounter(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("jobs_total", "jobs", "kind")
	vec.WithLabelValues("a").Inc()
	vec.WithLabelValues("a").Add(2)

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_jobs_total{kind="a"} 3`)
}

func TestRegisterCounter_DuplicateReturnsSame(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("dup_total", "dup").WithLabelValues().Inc()
	c.RegisterCounter("dup_total", "dup").WithLabelValues().Inc()

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_dup_total 2`)
}

func TestRegister_TypeMismatchIsNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("mixed", "counter first")

	g := c.RegisterGauge("mixed", "then gauge")
	assert.IsType(t, noopGaugeVec{}, g)
	assert.NotPanics(t, func() { g.WithLabelValues().Set(5) })
}

func TestRegisterGaugeAndHistogram(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("inflight", "in flight", "method")
	g.WithLabelValues("GET").Inc()
	g.WithLabelValues("GET").Inc()
	g.WithLabelValues("GET").Dec()

	h := c.RegisterHistogram("latency_seconds", "latency", nil, "op")
	h.WithLabelValues("x").Observe(0.2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_inflight{method="GET"} 1`)
	assert.Contains(t, out, `test_unit_latency_seconds_count{op="x"} 1`)
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("race_total", "race").WithLabelValues().Inc()
		}()
	}
	wg.Wait()
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_race_total 20`)
}

func TestTimer(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("timed_seconds", "timed", nil)
	timer := NewTimer(h.WithLabelValues())
	time.Sleep(2 * time.Millisecond)
	assert.GreaterOrEqual(t, timer.ObserveDuration(), 2*time.Millisecond)
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_timed_seconds_count 1`)

	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

//Personal.AI order the ending
