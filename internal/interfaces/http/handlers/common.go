// Package handlers holds the gin handlers of the /api/v1 surface.
package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/pkg/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps err onto its HTTP status.  Errors without a code are
// masked as internal errors.
func writeError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) || appErr.Code == errors.ErrCodeUnknown {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  string(errors.ErrCodeInternal),
		})
		return
	}

	status := errors.HTTPStatusForCode(appErr.Code)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, ErrorResponse{Error: appErr.Message, Code: string(appErr.Code)})
}

// parseLimit reads ?limit=.  Missing, non-numeric or non-positive values
// give the default; fractions round; the result is capped.
func parseLimit(c *gin.Context) int {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return analysis.DefaultListLimit
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return analysis.DefaultListLimit
	}
	return analysis.NormalizeLimit(int(math.Round(v)))
}

//Personal.AI order the ending
