//go:build integration

package repositories_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/google/uuid"

	"github.com/turtacn/MarketScope-Intelligence/internal/config"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/business"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/market"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/scoring"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// startPostgres launches a PostgreSQL 16 container and returns a migrated
// connection.
func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "marketscope_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	p, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	conn, err := postgres.NewConnection(config.DatabaseConfig{
		Host: host, Port: p, User: "test", Password: "test", DBName: "marketscope_test",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.RunMigrations())
	require.NoError(t, conn.RunMigrations())
	version, dirty, err := conn.MigrationStatus()
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(2), version)
	return conn
}

func TestReportRepository_RoundTrip(t *testing.T) {
	conn := startPostgres(t)
	repo := repositories.NewPostgresReportRepo(conn, nil, nil)
	ctx := context.Background()

	rec := business.BusinessRecord{
		ID:         uuid.NewString(),
		Identity:   business.Identity{Name: "Acme HVAC", Fingerprint: "acme hvac|"},
		Provenance: []string{"gmaps"},
	}
	rep := &report.MarketReport{
		ID:         uuid.New(),
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
		Location:   "Austin, TX",
		Industry:   "hvac",
		Region:     "TX",
		Metrics:    market.Metrics{BusinessCount: 1, TAM: 850000, FragmentationLevel: market.Unknown},
		Businesses: []scoring.ScoredBusiness{{BusinessRecord: rec}},
		Skipped:    []business.Skip{{Index: 1, Reason: business.SkipReasonMissingName}},
	}
	require.NoError(t, repo.Save(ctx, rep))
	assert.True(t, errors.IsCode(repo.Save(ctx, rep), errors.ErrCodeConflict))

	got, err := repo.FindByID(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.CreatedAt, got.CreatedAt.UTC())
	assert.Equal(t, rep.Skipped, got.Skipped)
	require.Len(t, got.Businesses, 1)
	assert.Equal(t, rec.ID, got.Businesses[0].ID)

	list, err := repo.List(ctx, report.WithIndustry("hvac"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, market.Unknown, list[0].FragmentationLevel)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, conn.RollbackMigrations(2))
}

//Personal.AI order the ending
