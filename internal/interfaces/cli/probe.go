package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/urban-dds/internal/infrastructure/publicdata"
	"github.com/turtacn/urban-dds/pkg/errors"
)

type probeOptions struct {
	mode    string
	sigungu string
	bjdong  string
	bun     string
	ji      string
	lawd    string
	dealYmd string
	rows    string
	page    string
}

// NewProbeCmd calls the public-data endpoints directly and prints what came
// back.  It needs a service key but not the enabled flag.
func NewProbeCmd() *cobra.Command {
	opts := &probeOptions{}
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe the public-data endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.mode, "mode", publicdata.ProbeModeAll, "probe mode: "+strings.Join(publicdata.ProbeModes, ", "))
	f.StringVar(&opts.sigungu, "sigungu", "", "building register sigunguCd")
	f.StringVar(&opts.bjdong, "bjdong", "", "building register bjdongCd")
	f.StringVar(&opts.bun, "bun", "", "lot main number")
	f.StringVar(&opts.ji, "ji", "", "lot sub number")
	f.StringVar(&opts.lawd, "lawd", "", "trade LAWD_CD")
	f.StringVar(&opts.dealYmd, "deal-ymd", "", "trade DEAL_YMD (YYYYMM)")
	f.StringVar(&opts.rows, "rows", "", "numOfRows")
	f.StringVar(&opts.page, "page", "", "pageNo")
	return cmd
}

func runProbe(cmd *cobra.Command, opts *probeOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	mode := strings.ToLower(strings.TrimSpace(opts.mode))
	if !publicdata.IsProbeMode(mode) {
		return errors.InvalidParam(fmt.Sprintf("invalid mode %q (accepted: %s)", opts.mode, strings.Join(publicdata.ProbeModes, ", ")))
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	app, err := cliCtx.App(ctx, true)
	if err != nil {
		return err
	}
	if !app.PublicData.HasServiceKey() {
		return errors.New(errors.ErrCodePublicDataKeyMissing, "DATA_GO_KR_SERVICE_KEY is missing")
	}

	in := app.PublicData.NewProbeInputs(opts.sigungu, opts.bjdong, opts.bun, opts.ji, opts.lawd, opts.dealYmd, opts.rows, opts.page)
	return PrintResult(cmd, probeView(app.PublicData.Probe(ctx, mode, in)))
}

type probeView []publicdata.ProbeResult

func (v probeView) String() string {
	var sb strings.Builder
	for i, p := range v {
		if i > 0 {
			sb.WriteString("\n")
		}
		status := "FAIL"
		if p.OK {
			status = "OK"
		}
		fmt.Fprintf(&sb, "%-4s %s  http=%d result=%s %s", status, p.Name, p.HTTPStatus, orDash(p.ResultCode), p.ResultMsg)
		if p.Error != "" {
			fmt.Fprintf(&sb, "  error=%s", p.Error)
		}
	}
	return sb.String()
}

func (v probeView) TableHeaders() []string {
	return []string{"NAME", "OK", "HTTP", "RESULT", "MESSAGE"}
}

func (v probeView) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, p := range v {
		rows = append(rows, []string{p.Name, fmt.Sprintf("%t", p.OK), fmt.Sprintf("%d", p.HTTPStatus), orDash(p.ResultCode), p.ResultMsg})
	}
	return rows
}

//Personal.AI order the ending
