package persistence

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed schema/*.sql
var schemaFiles embed.FS

const schemaDir = "schema"

// Migrate applies the embedded schema migrations. down rolls back the last
// applied migration instead.
func Migrate(ctx context.Context, pool *pgxpool.Pool, down bool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(schemaFiles)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "goose dialect")
	}

	if down {
		return errors.Wrap(goose.DownContext(ctx, db, schemaDir), "migrate down")
	}
	return errors.Wrap(goose.UpContext(ctx, db, schemaDir), "migrate up")
}
