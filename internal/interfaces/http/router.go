package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/urban-dds/internal/interfaces/http/handlers"
	"github.com/turtacn/urban-dds/internal/interfaces/http/middleware"
	"github.com/turtacn/urban-dds/pkg/errors"
)

// APIPrefix is the mount point of every API route.
const APIPrefix = "/api/v1"

// RouterConfig aggregates the handlers and middleware dependencies of the
// route tree.  Nil handlers leave their routes unmounted.
type RouterConfig struct {
	RegionHandler   *handlers.RegionHandler
	AnalysisHandler *handlers.AnalysisHandler
	DebugHandler    *handlers.DebugHandler
	HealthHandler   *handlers.HealthHandler

	// ProbeLimiter throttles the debug probe, which spends upstream quota.
	ProbeLimiter middleware.RateLimiter

	AllowedOrigins []string
	Logging        middleware.LoggingConfig

	Logger           logging.Logger
	Metrics          middleware.HTTPRecorder
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter builds the gin engine serving the API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Logging.SlowThreshold == 0 && len(cfg.Logging.SkipPaths) == 0 {
		cfg.Logging = middleware.DefaultLoggingConfig()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{Error: "route not found", Code: string(errors.ErrCodeNotFound)})
	})

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group(APIPrefix)
	registerHealthRoutes(api, cfg.HealthHandler)
	registerRegionRoutes(api, cfg.RegionHandler)
	registerAnalysisRoutes(api, cfg.AnalysisHandler)
	registerDebugRoutes(api, cfg.DebugHandler, cfg.ProbeLimiter)

	return r
}

func registerHealthRoutes(r *gin.RouterGroup, h *handlers.HealthHandler) {
	if h == nil {
		return
	}
	r.GET("/health", h.Liveness)
	r.GET("/health/ready", h.Readiness)
}

func registerRegionRoutes(r *gin.RouterGroup, h *handlers.RegionHandler) {
	if h == nil {
		return
	}
	rg := r.Group("/region")
	rg.GET("/summary", h.Summary)
	rg.GET("/metrics", h.Metrics)
}

func registerAnalysisRoutes(r *gin.RouterGroup, h *handlers.AnalysisHandler) {
	if h == nil {
		return
	}
	ag := r.Group("/analysis")
	ag.POST("/report", h.CreateReport)
	ag.POST("/document", h.Document)
	ag.GET("/reports", h.ListReports)
	ag.GET("/reports/search", h.SearchReports)
}

func registerDebugRoutes(r *gin.RouterGroup, h *handlers.DebugHandler, limiter middleware.RateLimiter) {
	if h == nil {
		return
	}
	dg := r.Group("/debug")
	if limiter != nil {
		dg.Use(middleware.RateLimit(limiter))
	}
	dg.GET("/public-data", h.PublicData)
}

//Personal.AI order the ending
