package itf

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/jacksonlee411/orgtree/pkg/application"
	"github.com/jacksonlee411/orgtree/pkg/composables"
	"github.com/jacksonlee411/orgtree/pkg/eventbus"
)

const DatabaseURLEnv = "ORGTREE_TEST_DATABASE_URL"

// DatabaseURL returns the integration database DSN or skips the test.
func DatabaseURL(tb testing.TB) string {
	tb.Helper()
	dsn := os.Getenv(DatabaseURLEnv)
	if dsn == "" {
		tb.Skipf("%s not set; skipping Postgres integration test", DatabaseURLEnv)
	}
	return dsn
}

func NewPool(tb testing.TB, dsn string) *pgxpool.Pool {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		tb.Fatal(err)
	}
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Minute * 5
	config.MaxConnIdleTime = time.Second * 30

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		tb.Fatalf("failed to create database pool: %v", err)
	}
	tb.Cleanup(pool.Close)
	return pool
}

func DefaultParams() *composables.Params {
	return &composables.Params{
		IP:        "127.0.0.1",
		UserAgent: "itf",
		RequestID: "itf-request",
	}
}

func SetupApplication(pool *pgxpool.Pool, logger *logrus.Logger, mods ...application.Module) (application.Application, error) {
	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		Bundle:   application.LoadBundle(),
		EventBus: eventbus.New(logger),
		Logger:   logger,
	})
	if err := app.RegisterModules(mods...); err != nil {
		return nil, err
	}
	return app, nil
}
