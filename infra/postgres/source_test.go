package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/bikedash/core/dataset"
	"github.com/kilianp07/bikedash/core/model"
)

func TestNewSourceValidatesTable(t *testing.T) {
	s, err := NewSource(nil, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable, s.Table)

	_, err = NewSource(nil, "public.rentals")
	assert.NoError(t, err)
	_, err = NewSource(nil, "rentals; DROP TABLE x")
	assert.Error(t, err)
}

func TestSelectList(t *testing.T) {
	assert.Equal(t, "dteday::text, season::text, yr::text, mnth::text, weekday::text, weathersit::text, cnt::text", selectList())
}

func startPostgres(t *testing.T) string {
	t.Helper()
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "bike",
			"POSTGRES_PASSWORD": "bike",
			"POSTGRES_DB":       "bikedash",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://bike:bike@%s:%s/bikedash?sslmode=disable", host, port.Port())
}

func TestIntegrationImportAndLoad(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	src, err := NewSource(db, "")
	require.NoError(t, err)
	require.NoError(t, src.CreateTable(ctx))

	records := []model.Record{
		{Date: time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), Season: model.SeasonWinter, Weather: model.WeatherClear, Weekday: 6, Month: 1, Year: 0, Count: 985},
		{Date: time.Date(2011, 1, 2, 0, 0, 0, 0, time.UTC), Season: model.SeasonWinter, Weather: model.WeatherCloudy, Weekday: 0, Month: 1, Year: 0, Count: 801},
	}
	require.NoError(t, src.Import(ctx, records))

	ds, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, ds.Records())

	_, err = db.ExecContext(ctx, "INSERT INTO "+src.Table+" VALUES ('2011-01-03', 9, 0, 1, 1, 1, 10)")
	require.NoError(t, err)
	_, err = src.Load(ctx)
	var pe *dataset.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, dataset.ColSeason, pe.Column)
	assert.Equal(t, 3, pe.Line)
}
