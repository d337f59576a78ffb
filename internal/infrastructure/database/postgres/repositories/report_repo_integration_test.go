//go:build integration

// Integration tests for the report repository.  They require Docker and are
// gated behind the "integration" build tag.
package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/internal/config"
	"github.com/turtacn/urban-dds/internal/domain/scoring"
	"github.com/turtacn/urban-dds/internal/infrastructure/database/postgres"
	"github.com/turtacn/urban-dds/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
)

// startPostgres launches a PostgreSQL 16 container and returns a migrated
// connection.
func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "urbandds_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	conn, err := postgres.NewConnection(config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "test",
		Password: "test",
		DBName:   "urbandds_test",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.RunMigrations())
	return conn
}

func TestReportRepository_SaveAndListRecent(t *testing.T) {
	conn := startPostgres(t)
	ctx := context.Background()

	clock := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := repositories.NewPostgresReportRepo(conn, nil, repositories.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))

	for _, code := range []string{"jongno-gu", "mapo-gu", "gangnam-daechi"} {
		_, err := repo.Save(ctx, analysis.PersistInput{
			OwnerUserID: "planner-1",
			RegionCode:  code,
			RegionName:  code,
			Report: &analysis.Report{
				RegionCode:          code,
				PriorityScore:       70,
				RecommendedScenario: scoring.ScenarioSelective,
				Summary:             "summary " + code,
				Confidence:          70,
				ReportVersion:       analysis.ReportVersion,
			},
		})
		require.NoError(t, err)
	}
	_, err := repo.Save(ctx, analysis.PersistInput{
		OwnerUserID: "planner-2",
		RegionCode:  "mapo-gu",
		RegionName:  "mapo-gu",
		Report:      &analysis.Report{RegionCode: "mapo-gu", Summary: "other owner"},
	})
	require.NoError(t, err)

	items, err := repo.ListRecent(ctx, "planner-1", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "gangnam-daechi", items[0].RegionCode)
	assert.Equal(t, "mapo-gu", items[1].RegionCode)
	require.NotNil(t, items[0].Confidence)
	assert.Equal(t, 70, *items[0].Confidence)

	none, err := repo.ListRecent(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

//Personal.AI order the ending
