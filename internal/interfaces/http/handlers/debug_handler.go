package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/urban-dds/internal/infrastructure/publicdata"
	"github.com/turtacn/urban-dds/pkg/errors"
)

// Prober runs raw public-data probes.  *publicdata.Client implements it.
type Prober interface {
	Enabled() bool
	HasServiceKey() bool
	NewProbeInputs(sigunguCd, bjdongCd, bun, ji, lawdCd, dealYmd, numOfRows, pageNo string) publicdata.ProbeInputs
	Probe(ctx context.Context, mode string, in publicdata.ProbeInputs) []publicdata.ProbeResult
}

// ProbeResponse is the body of GET /debug/public-data.
type ProbeResponse struct {
	GeneratedAt     string                   `json:"generatedAt"`
	Mode            string                   `json:"mode"`
	RealDataEnabled bool                     `json:"realDataEnabled"`
	Inputs          publicdata.ProbeInputs   `json:"inputs"`
	Probes          []publicdata.ProbeResult `json:"probes"`
}

// DebugHandler exposes upstream diagnostics.
type DebugHandler struct {
	prober Prober
	now    func() time.Time
}

func NewDebugHandler(p Prober) *DebugHandler {
	return &DebugHandler{prober: p, now: time.Now}
}

// PublicData handles GET /debug/public-data.
func (h *DebugHandler) PublicData(c *gin.Context) {
	if !h.prober.HasServiceKey() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "DATA_GO_KR_SERVICE_KEY is missing",
			Code:  string(errors.ErrCodePublicDataKeyMissing),
		})
		return
	}

	mode := strings.ToLower(strings.TrimSpace(c.Query("mode")))
	if mode == "" {
		mode = publicdata.ProbeModeAll
	}
	if !publicdata.IsProbeMode(mode) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "invalid mode",
			"code":          string(errors.ErrCodeValidation),
			"acceptedModes": publicdata.ProbeModes,
		})
		return
	}

	in := h.prober.NewProbeInputs(
		c.Query("sigunguCd"), c.Query("bjdongCd"), c.Query("bun"), c.Query("ji"),
		c.Query("lawdCd"), c.Query("dealYmd"), c.Query("numOfRows"), c.Query("pageNo"),
	)

	c.JSON(http.StatusOK, ProbeResponse{
		GeneratedAt:     h.now().UTC().Format(time.RFC3339),
		Mode:            mode,
		RealDataEnabled: h.prober.Enabled(),
		Inputs:          in,
		Probes:          h.prober.Probe(c.Request.Context(), mode, in),
	})
}

//Personal.AI order the ending
