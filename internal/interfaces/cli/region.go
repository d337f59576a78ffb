package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/internal/domain/region"
)

// NewResolveCmd maps an address to a registry record without touching any
// external service.
func NewResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <address>",
		Short: "Resolve an address to a region",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			app, err := cliCtx.App(cmd.Context(), true)
			if err != nil {
				return err
			}
			r, err := app.Registry.ResolveByAddress(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return PrintResult(cmd, regionView{r})
		},
	}
}

// NewSummaryCmd prints the fused region summary, collecting public-data
// facts when they are enabled.
func NewSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <address>",
		Short: "Show fused metrics and facts for an address",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			app, err := cliCtx.App(ctx, false)
			if err != nil {
				return err
			}
			summary, err := app.Service.RegionSummary(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return PrintResult(cmd, summaryView{summary})
		},
	}
}

// NewMetricsCmd prints baseline metrics for a region code.
func NewMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <region-code>",
		Short: "Show baseline metrics for a region code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			app, err := cliCtx.App(ctx, true)
			if err != nil {
				return err
			}
			m, err := app.Service.RegionMetrics(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, metricsView{m})
		},
	}
}

type regionView struct{ *region.Region }

func (v regionView) String() string {
	return fmt.Sprintf("%s (%s)  code=%s level=%s center=%.4f,%.4f",
		v.Name, v.ID, v.Code, v.Level, v.Center.Lat, v.Center.Lng)
}

func (v regionView) TableHeaders() []string {
	return []string{"ID", "CODE", "NAME", "LEVEL", "LAWD"}
}

func (v regionView) TableRows() [][]string {
	return [][]string{{v.ID, v.Code, v.Name, string(v.Level), v.LawdCode}}
}

type summaryView struct{ *analysis.RegionSummary }

func (v summaryView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", v.Name, v.RegionCode)
	fmt.Fprintf(&sb, "  priority score  %.2f\n", v.PriorityScore)
	writeMetrics(&sb, v.Metrics)
	fmt.Fprintf(&sb, "  building facts  %s (attempts %d)\n", orDash(string(v.BuildingFactsStatus)), v.BuildingFactsAttempts)
	fmt.Fprintf(&sb, "  data source     %s\n", strings.Join(v.DataSource, ", "))
	fmt.Fprintf(&sb, "  updated at      %s\n", v.UpdatedAt)
	sb.WriteString(v.Summary)
	return sb.String()
}

func (v summaryView) TableHeaders() []string {
	return []string{"CODE", "NAME", "PRIORITY", "AGING", "INFRA", "MARKET", "POLICY", "SOURCE"}
}

func (v summaryView) TableRows() [][]string {
	row := []string{v.RegionCode, v.Name, formatScore(v.PriorityScore)}
	row = append(row, metricCells(v.Metrics)...)
	return [][]string{append(row, v.Source)}
}

type metricsView struct{ *analysis.RegionMetrics }

func (v metricsView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s) level=%s\n", v.Name, v.RegionCode, v.Level)
	writeMetrics(&sb, v.Metrics)
	fmt.Fprintf(&sb, "  source          %s", v.Source)
	return sb.String()
}

func (v metricsView) TableHeaders() []string {
	return []string{"CODE", "NAME", "AGING", "INFRA", "MARKET", "POLICY"}
}

func (v metricsView) TableRows() [][]string {
	return [][]string{append([]string{v.RegionCode, v.Name}, metricCells(v.Metrics)...)}
}

func writeMetrics(sb *strings.Builder, m region.Metrics) {
	fmt.Fprintf(sb, "  aging score     %s\n", formatScore(m.AgingScore))
	fmt.Fprintf(sb, "  infra risk      %s\n", formatScore(m.InfraRisk))
	fmt.Fprintf(sb, "  market score    %s\n", formatScore(m.MarketScore))
	fmt.Fprintf(sb, "  policy fit      %s\n", formatScore(m.PolicyFit))
}

func metricCells(m region.Metrics) []string {
	return []string{formatScore(m.AgingScore), formatScore(m.InfraRisk), formatScore(m.MarketScore), formatScore(m.PolicyFit)}
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

//Personal.AI order the ending
