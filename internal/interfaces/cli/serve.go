package cli

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/urban-dds/internal/infrastructure/database/postgres"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/pkg/errors"
)

// NewServeCmd runs the HTTP API in the foreground until interrupted.
func NewServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if port > 0 {
				cliCtx.Config.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := cliCtx.App(ctx, false)
			if err != nil {
				return err
			}
			return app.Serve(ctx, Version, nil)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

// NewMigrateCmd manages the report schema.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the report database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				return m.Up()
			})
		},
	}

	down := &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1 step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return errors.InvalidParam(fmt.Sprintf("steps must be a positive integer, got %q", args[0]))
				}
				steps = n
			}
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				return m.Down(steps)
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				version, dirty, err := m.Status()
				if err != nil {
					return err
				}
				return PrintResult(cmd, migrationStatus{Version: version, Dirty: dirty})
			})
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

type migrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s migrationStatus) String() string {
	return fmt.Sprintf("schema version %d (dirty: %t)", s.Version, s.Dirty)
}

func withMigrator(cmd *cobra.Command, fn func(m *postgres.Migrator) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if !cliCtx.Config.Database.Enabled {
		return errors.FeatureDisabled("database is not enabled (set database.enabled)")
	}

	conn, err := postgres.NewConnection(cliCtx.Config.Database, cliCtx.Logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	m, err := postgres.NewMigrator(conn.DB(), cliCtx.Logger)
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	cliCtx.Logger.Debug("Migration command finished", logging.String("command", cmd.Name()))
	return nil
}


//Personal.AI order the ending
