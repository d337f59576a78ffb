package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/internal/domain/region"
)

type analyzeOptions struct {
	region   string
	aging    float64
	infra    float64
	market   float64
	policy   float64
	markdown bool
	save     bool
	owner    string
}

// NewAnalyzeCmd generates a scenario report for a region.  Metric flags
// that are not given are taken from the region baseline.
func NewAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Generate a redevelopment report for a region",
		Example: "  urbandds analyze --region mapo-gu\n" +
			"  urbandds analyze --region mapo-gu --aging 82 --infra 70 --markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.region, "region", "", "region code or id (required)")
	f.Float64Var(&opts.aging, "aging", 0, "aging score 0-100")
	f.Float64Var(&opts.infra, "infra", 0, "infrastructure risk 0-100")
	f.Float64Var(&opts.market, "market", 0, "market score 0-100")
	f.Float64Var(&opts.policy, "policy", 0, "policy fit 0-100")
	f.BoolVar(&opts.markdown, "markdown", false, "print the report as markdown")
	f.BoolVar(&opts.save, "save", false, "persist the report when storage is configured")
	f.StringVar(&opts.owner, "owner", "", "owner recorded on the saved report")
	_ = cmd.MarkFlagRequired("region")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	app, err := cliCtx.App(ctx, !opts.save)
	if err != nil {
		return err
	}

	code := strings.TrimSpace(opts.region)
	metrics := region.Metrics{}
	if base, err := app.Service.RegionMetrics(ctx, code); err == nil {
		metrics = base.Metrics
	} else if !allMetricFlagsSet(cmd) {
		return err
	}
	f := cmd.Flags()
	if f.Changed("aging") {
		metrics.AgingScore = opts.aging
	}
	if f.Changed("infra") {
		metrics.InfraRisk = opts.infra
	}
	if f.Changed("market") {
		metrics.MarketScore = opts.market
	}
	if f.Changed("policy") {
		metrics.PolicyFit = opts.policy
	}

	report, err := app.Service.CreateReport(ctx, &analysis.ReportRequest{RegionCode: code, Metrics: &metrics})
	if err != nil {
		return err
	}

	if opts.save {
		owner := opts.owner
		if owner == "" {
			owner = cliCtx.Config.Persistence.Owner
		}
		res := app.Service.SaveReport(ctx, owner, report)
		if res.Saved {
			fmt.Fprintf(cmd.ErrOrStderr(), "saved report %s\n", res.DocumentID)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "report not saved: %s\n", res.Reason)
		}
	}

	if opts.markdown {
		fmt.Fprint(cmd.OutOrStdout(), analysis.RenderMarkdown(report))
		return nil
	}
	return PrintResult(cmd, reportView{report})
}

func allMetricFlagsSet(cmd *cobra.Command) bool {
	for _, name := range []string{"aging", "infra", "market", "policy"} {
		if !cmd.Flags().Changed(name) {
			return false
		}
	}
	return true
}

type reportView struct{ *analysis.Report }

func (v reportView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", v.RegionName, v.RegionCode)
	fmt.Fprintf(&sb, "  scenario        %s\n", v.RecommendedScenario)
	fmt.Fprintf(&sb, "  priority score  %s\n", formatScore(v.PriorityScore))
	fmt.Fprintf(&sb, "  confidence      %d\n", v.Confidence)
	fmt.Fprintf(&sb, "  narrative       %s\n", v.AISource)
	fmt.Fprintf(&sb, "  trace id        %s\n", v.TraceID)
	sb.WriteString("\n")
	sb.WriteString(v.Summary)
	if len(v.ActionPlan) > 0 {
		sb.WriteString("\n")
		for _, a := range v.ActionPlan {
			fmt.Fprintf(&sb, "\n  [%s] %s (%s, %s)", a.Phase, a.Task, a.Owner, a.Timeline)
		}
	}
	return sb.String()
}

func (v reportView) TableHeaders() []string {
	return []string{"CODE", "NAME", "SCENARIO", "PRIORITY", "CONFIDENCE", "SOURCE"}
}

func (v reportView) TableRows() [][]string {
	return [][]string{{
		v.RegionCode, v.RegionName, string(v.RecommendedScenario),
		formatScore(v.PriorityScore), fmt.Sprintf("%d", v.Confidence), v.AISource,
	}}
}

//Personal.AI order the ending
