package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver for goose
	"github.com/pressly/goose/v3"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// Postgres defaults. The image ships PostGIS so spatial test suites run unchanged.
const (
	PostgresImage    = "postgis/postgis:16-3.4"
	PostgresPort     = 5432
	PostgresDatabase = "postgres"
)

// Variables exported by the postgres driver.
const (
	VarDBConn      = "DBCONN"
	VarDatabaseURL = "DATABASE_URL"
)

// migrationTimeout bounds a single goose run.
const migrationTimeout = time.Minute

// Postgres runs a PostgreSQL server for the test suite. Readiness is a
// connection ping; the first successful ping applies the configured goose
// migrations.
type Postgres struct {
	spec      domain.ServiceSpec
	dsn       string
	container *managedContainer
	logger    ports.Logger

	mu       sync.Mutex
	migrated bool
}

var _ ports.ServiceDriver = (*Postgres)(nil)

// NewPostgres creates the driver. External services are only probed.
func NewPostgres(spec domain.ServiceSpec, runtime ContainerRuntime, logger ports.Logger) *Postgres {
	port := spec.Port
	if port == 0 {
		port = PostgresPort
	}
	database := spec.Database
	if database == "" {
		database = PostgresDatabase
	}
	dsn := spec.DSN
	if dsn == "" {
		dsn = fmt.Sprintf("postgresql://postgres@127.0.0.1:%d/%s?sslmode=disable", port, database)
	}
	img := spec.Image
	if img == "" {
		img = PostgresImage
	}

	p := &Postgres{spec: spec, dsn: dsn, logger: logger}
	if !spec.External {
		p.container = newContainer(runtime, spec.ID, ContainerSpec{
			Image: img,
			Env: []string{
				"POSTGRES_HOST_AUTH_METHOD=trust",
				"POSTGRES_DB=" + database,
			},
			ContainerPort: PostgresPort,
			HostPort:      port,
		})
	}
	return p
}

// ID returns the service identifier.
func (p *Postgres) ID() string {
	return p.spec.ID
}

// Start launches the container.
func (p *Postgres) Start(ctx context.Context) error {
	if p.container == nil {
		return nil
	}
	return p.container.start(ctx)
}

// Ready pings the database and applies pending migrations once.
func (p *Postgres) Ready(ctx context.Context) error {
	if p.container != nil && !p.container.started() {
		return domain.Classify(domain.ErrServiceNotStarted,
			zerr.With(zerr.New("service was not started"), "service", p.spec.ID))
	}

	conn, err := pgx.Connect(ctx, p.dsn)
	if err != nil {
		return zerr.Wrap(err, "postgres not accepting connections")
	}
	defer func() { _ = conn.Close(context.WithoutCancel(ctx)) }()

	if err := conn.Ping(ctx); err != nil {
		return zerr.Wrap(err, "postgres ping failed")
	}
	return p.migrate(ctx)
}

func (p *Postgres) migrate(ctx context.Context) error {
	if p.spec.Migrations == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.migrated {
		return nil
	}

	db, err := sql.Open("pgx", p.dsn)
	if err != nil {
		return zerr.Wrap(err, "failed to open database for migrations")
	}
	defer func() { _ = db.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return zerr.Wrap(err, "failed to configure goose")
	}

	runCtx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()

	p.logger.Info("applying migrations", "service", p.spec.ID, "dir", p.spec.Migrations)
	if err := goose.UpContext(runCtx, db, p.spec.Migrations); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to apply migrations"), "dir", p.spec.Migrations)
	}
	p.migrated = true
	return nil
}

// Stop removes the container.
func (p *Postgres) Stop(ctx context.Context) error {
	if p.container == nil {
		return nil
	}
	return p.container.stop(ctx)
}

// Vars exports the connection string.
func (p *Postgres) Vars() map[string]string {
	return map[string]string{
		VarDBConn:      p.dsn,
		VarDatabaseURL: p.dsn,
	}
}
