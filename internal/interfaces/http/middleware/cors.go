package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ExposedHeaders are readable by browser clients.
var ExposedHeaders = []string{
	HeaderRequestID,
	"x-analysis-report-saved",
	"x-analysis-report-version",
	"x-analysis-report-model",
	"x-analysis-report-trace-id",
	"x-analysis-ai-source",
	"x-analysis-fallback-reason",
	"x-analysis-report-id",
	"x-analysis-report-save-reason",
}

// CORSConfig builds the gin-contrib/cors configuration.  An empty origin
// list or "*" allows any origin without credentials; "*.example.com"
// entries match subdomains.
func CORSConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Accept", "Content-Type", HeaderRequestID},
		ExposeHeaders: ExposedHeaders,
		MaxAge:        12 * time.Hour,
	}

	var exact []string
	var suffixes []string
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		switch {
		case o == "":
		case o == "*":
			cfg.AllowAllOrigins = true
			return cfg
		case strings.HasPrefix(o, "*."):
			suffixes = append(suffixes, o[1:])
		default:
			exact = append(exact, strings.TrimRight(o, "/"))
		}
	}
	if len(exact) == 0 && len(suffixes) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowCredentials = true
	cfg.AllowOriginFunc = func(origin string) bool {
		for _, e := range exact {
			if origin == e {
				return true
			}
		}
		for _, s := range suffixes {
			if strings.HasSuffix(origin, s) {
				return true
			}
		}
		return false
	}
	return cfg
}

// CORS returns the CORS middleware for allowedOrigins.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(CORSConfig(allowedOrigins))
}

//Personal.AI order the ending
