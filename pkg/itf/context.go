package itf

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/jacksonlee411/orgtree/pkg/application"
	"github.com/jacksonlee411/orgtree/pkg/composables"
	"github.com/jacksonlee411/orgtree/pkg/middleware"
)

// MigrateFunc prepares the schema of a freshly connected database.
type MigrateFunc func(ctx context.Context, pool *pgxpool.Pool) error

// TestContext provides a fluent API for building test environments.
type TestContext struct {
	ctx      context.Context
	modules  []application.Module
	logger   *logrus.Logger
	database bool
	migrate  MigrateFunc
}

func NewTestContext() *TestContext {
	return &TestContext{
		ctx:     context.Background(),
		modules: []application.Module{},
	}
}

func (tc *TestContext) WithModules(modules ...application.Module) *TestContext {
	tc.modules = append(tc.modules, modules...)
	return tc
}

func (tc *TestContext) WithLogger(logger *logrus.Logger) *TestContext {
	tc.logger = logger
	return tc
}

// WithDatabase connects to DatabaseURLEnv and runs migrate before modules are
// registered. Tests are skipped when the variable is unset.
func (tc *TestContext) WithDatabase(migrate MigrateFunc) *TestContext {
	tc.database = true
	tc.migrate = migrate
	return tc
}

// Build creates the environment. With a database, every query made through
// Ctx runs in a transaction that is rolled back on cleanup.
func (tc *TestContext) Build(tb testing.TB) *TestEnvironment {
	tb.Helper()

	logger := tc.logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	var pool *pgxpool.Pool
	var tx pgx.Tx
	ctx := tc.ctx
	if tc.database {
		pool = NewPool(tb, DatabaseURL(tb))
		if tc.migrate != nil {
			if err := tc.migrate(ctx, pool); err != nil {
				tb.Fatal(err)
			}
		}
		var err error
		tx, err = pool.Begin(ctx)
		if err != nil {
			tb.Fatal(err)
		}
		tb.Cleanup(func() {
			if err := tx.Rollback(context.Background()); err != nil && err != pgx.ErrTxClosed {
				tb.Logf("Warning: failed to rollback transaction: %v", err)
			}
		})
		ctx = composables.WithPool(ctx, pool)
		ctx = composables.WithTx(ctx, tx)
	}
	ctx = composables.WithParams(ctx, DefaultParams())
	ctx = composables.WithLogger(ctx, logrus.NewEntry(logger))

	app, err := SetupApplication(pool, logger, tc.modules...)
	if err != nil {
		tb.Fatal(err)
	}

	return &TestEnvironment{
		Ctx:  ctx,
		Pool: pool,
		Tx:   tx,
		App:  app,
	}
}

// TestEnvironment contains all test dependencies
type TestEnvironment struct {
	Ctx  context.Context
	Pool *pgxpool.Pool
	Tx   pgx.Tx
	App  application.Application

	router *mux.Router
}

// Service retrieves a service from the application
func (te *TestEnvironment) Service(service any) any {
	return te.App.Service(service)
}

// GetService is a generic helper that retrieves and casts a service
func GetService[T any](te *TestEnvironment) *T {
	var zero T
	return te.App.Service(zero).(*T)
}

// Router mounts the registered controllers behind the request logger and
// the app middleware.
func (te *TestEnvironment) Router() *mux.Router {
	if te.router != nil {
		return te.router
	}
	r := mux.NewRouter().UseEncodedPath()
	r.Use(middleware.WithLogger(te.App.Logger(), middleware.DefaultLoggerOptions()))
	r.Use(te.App.Middleware()...)
	for _, c := range te.App.Controllers() {
		c.Register(r)
	}
	te.router = r
	return r
}

// Do serves one request through Router. A non-empty body is sent as JSON.
func (te *TestEnvironment) Do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader).WithContext(te.Ctx)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	te.Router().ServeHTTP(rec, req)
	return rec
}

// Get is Do for GET requests with extra headers.
func (te *TestEnvironment) Get(target string, headers http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(te.Ctx)
	for k, v := range headers {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	te.Router().ServeHTTP(rec, req)
	return rec
}
