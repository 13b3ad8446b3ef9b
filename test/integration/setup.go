package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vncsmyrnk/nightout/internal/adapters/directory/rest"
	handler "github.com/vncsmyrnk/nightout/internal/adapters/handler/http"
	"github.com/vncsmyrnk/nightout/internal/adapters/repository/postgres"
	memstorage "github.com/vncsmyrnk/nightout/internal/adapters/storage/memory"
	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
	"github.com/vncsmyrnk/nightout/internal/core/services"
)

// TestApp runs the reference backend on postgres and points a client at it.
type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Directory   ports.DirectoryClient
	Venues      ports.VenueRepository
	DBContainer testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername(user),
		tcpostgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupTestApp(t *testing.T) *TestApp {
	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := postgres.Open(ctx, dbURL)
	require.NoError(t, err)

	err = postgres.ApplyMigrations(ctx, db)
	require.NoError(t, err)

	venueRepo := postgres.NewVenueRepository(db)
	photoRepo := postgres.NewPhotoRepository(db)
	storage := memstorage.NewStorage("http://media.test")
	svc := services.NewVenueService(venueRepo, photoRepo, storage, nil, zerolog.Nop())

	server := httptest.NewServer(handler.NewHandler(handler.NewVenueHandler(svc, zerolog.Nop()), storage))

	return &TestApp{
		DB:          db,
		Server:      server,
		Directory:   rest.NewClient(server.URL, server.Client(), zerolog.Nop()),
		Venues:      venueRepo,
		DBContainer: dbContainer,
	}
}

// NewDevice returns an interaction service backed by store. Two devices
// sharing a store behave like one phone across an app restart.
func (app *TestApp) NewDevice(store ports.LedgerStore) ports.InteractionService {
	ledger := services.NewActionLedger(store, zerolog.Nop())
	return services.NewInteractionService(app.Directory, ledger, zerolog.Nop())
}

func (app *TestApp) createVenue(t *testing.T, v domain.Venue) domain.VenueID {
	t.Helper()
	require.NoError(t, app.Venues.Create(context.Background(), &v))
	return v.ID
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}
