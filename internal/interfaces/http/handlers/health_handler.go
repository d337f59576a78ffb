package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker is a dependency probed by the readiness endpoint.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

type checkerFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (c checkerFunc) Name() string                    { return c.name }
func (c checkerFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// NewChecker adapts a ping function into a HealthChecker.
func NewChecker(name string, fn func(ctx context.Context) error) HealthChecker {
	return checkerFunc{name: name, fn: fn}
}

// HealthInfo describes the running process on GET /health.
type HealthInfo struct {
	Service            string `json:"service"`
	Version            string `json:"version"`
	RealDataEnabled    bool   `json:"realDataEnabled"`
	PersistenceEnabled bool   `json:"persistenceEnabled"`
	NarrativeMode      string `json:"narrativeMode,omitempty"`
}

// HealthHandler serves liveness and readiness.
type HealthHandler struct {
	info     HealthInfo
	checkers []HealthChecker
	timeout  time.Duration
	startAt  time.Time
	now      func() time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(info HealthInfo, checkers ...HealthChecker) *HealthHandler {
	if info.Service == "" {
		info.Service = "urban-dds"
	}
	return &HealthHandler{info: info, checkers: checkers, timeout: 5 * time.Second, startAt: time.Now(), now: time.Now}
}

// LivenessResponse is the body of GET /health.
type LivenessResponse struct {
	HealthInfo
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
}

// ReadinessResponse is the body of GET /health/ready.
type ReadinessResponse struct {
	Status     string                    `json:"status"`
	Components map[string]ComponentCheck `json:"components,omitempty"`
}

// ComponentCheck is the result of one HealthChecker.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness handles GET /health.  It never touches dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		HealthInfo: h.info,
		Status:     "ok",
		Timestamp:  h.now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /health/ready: 503 when any checker fails.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if len(h.checkers) == 0 {
		c.JSON(http.StatusOK, ReadinessResponse{Status: "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	components := h.checkAll(ctx)
	resp := ReadinessResponse{Status: "ready", Components: components}
	for _, cc := range components {
		if cc.Status != "healthy" {
			resp.Status = "not_ready"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) checkAll(ctx context.Context) map[string]ComponentCheck {
	results := make(map[string]ComponentCheck, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range h.checkers {
		wg.Add(1)
		go func(hc HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := hc.Check(ctx)
			cc := ComponentCheck{Status: "healthy", Latency: time.Since(start).Truncate(time.Microsecond).String()}
			if err != nil {
				cc.Status = "unhealthy"
				cc.Error = err.Error()
			}

			mu.Lock()
			results[hc.Name()] = cc
			mu.Unlock()
		}(checker)
	}

	wg.Wait()
	return results
}

//Personal.AI order the ending
