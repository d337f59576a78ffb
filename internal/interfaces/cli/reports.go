package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/urban-dds/internal/application/analysis"
)

// NewReportsCmd groups saved-report queries.
func NewReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List and search saved reports",
	}
	cmd.AddCommand(newReportsListCmd(), newReportsSearchCmd())
	return cmd
}

func newReportsListCmd() *cobra.Command {
	var (
		limit int
		owner string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent reports of an owner",
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
			if owner == "" {
				owner = cliCtx.Config.Persistence.Owner
			}
			res, err := app.Service.ListReports(ctx, owner, limit)
			if err != nil {
				return err
			}
			return PrintResult(cmd, listView{res})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", analysis.DefaultListLimit, "maximum reports to return (1-100)")
	cmd.Flags().StringVar(&owner, "owner", "", "report owner (default: configured owner)")
	return cmd
}

func newReportsSearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over saved reports",
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
			res, err := app.Service.SearchReports(ctx, strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return PrintResult(cmd, listView{res})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", analysis.DefaultListLimit, "maximum reports to return (1-100)")
	return cmd
}

type listView struct{ *analysis.ListResult }

func (v listView) String() string {
	if len(v.Items) == 0 {
		return "no reports"
	}
	var sb strings.Builder
	for i, it := range v.Items {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s  %s (%s)  %s  %s  %s",
			it.ID, it.RegionName, it.RegionCode, it.RecommendedScenario, formatScore(it.PriorityScore), orDash(it.CreatedAt))
	}
	return sb.String()
}

func (v listView) TableHeaders() []string {
	return []string{"ID", "CODE", "NAME", "SCENARIO", "PRIORITY", "CREATED"}
}

func (v listView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Items))
	for _, it := range v.Items {
		rows = append(rows, []string{
			it.ID, it.RegionCode, it.RegionName, string(it.RecommendedScenario),
			formatScore(it.PriorityScore), orDash(it.CreatedAt),
		})
	}
	return rows
}

//Personal.AI order the ending
