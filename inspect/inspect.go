// Package inspect builds sqlschema models from live databases.
//
// It supports PostgreSQL, MySQL and SQLite through database/sql, and can
// also adapt schemas inspected by Atlas. Per-table metadata is fetched
// concurrently.
//
//	client, err := inspect.Open("postgres", dsn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//	s, err := client.Inspect(ctx)
package inspect

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/apigen-dev/sqlschema"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	_ "github.com/lib/pq"              // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver
)

// config holds inspection configuration shared by all dialects.
type config struct {
	schema  string
	workers int
	include []string
	exclude []string
	opts    []sqlschema.Option
}

// Option configures an inspection.
type Option func(*config) error

// WithSchemaName sets the database schema to inspect. Defaults to "public"
// for PostgreSQL and the connection's current database for MySQL. SQLite
// ignores it.
func WithSchemaName(name string) Option {
	return func(c *config) error {
		c.schema = name
		return nil
	}
}

// WithWorkers sets the number of tables inspected in parallel.
func WithWorkers(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return sqlschema.NewConfigError("Workers", n, "worker count must be positive")
		}
		c.workers = n
		return nil
	}
}

// WithInclude restricts inspection to the given table names
// (case-insensitive). An empty list includes everything.
func WithInclude(tables ...string) Option {
	return func(c *config) error {
		c.include = append(c.include, tables...)
		return nil
	}
}

// WithExclude skips the given table names (case-insensitive).
func WithExclude(tables ...string) Option {
	return func(c *config) error {
		c.exclude = append(c.exclude, tables...)
		return nil
	}
}

// WithSchemaOptions passes construction options through to the resulting
// sqlschema.Schema (e.g. sqlschema.WithAuditSuffixes).
func WithSchemaOptions(opts ...sqlschema.Option) Option {
	return func(c *config) error {
		c.opts = append(c.opts, opts...)
		return nil
	}
}

// Inspector builds a schema model from a database connection.
type Inspector interface {
	Inspect(ctx context.Context) (*sqlschema.Schema, error)
}

// New returns an Inspector for the given driver name over an existing
// connection. Supported drivers: "postgres", "mysql", "sqlite"
// (also accepted as "sqlite3").
func New(driver string, db *sql.DB, opts ...Option) (Inspector, error) {
	cfg := &config{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	switch driver {
	case "postgres":
		return &postgresInspector{db: db, cfg: cfg}, nil
	case "mysql":
		return &mysqlInspector{db: db, cfg: cfg}, nil
	case "sqlite", "sqlite3":
		return &sqliteInspector{db: db, cfg: cfg}, nil
	default:
		return nil, sqlschema.NewConfigError("Driver", driver, "unsupported driver; use postgres, mysql or sqlite")
	}
}

// Client couples a database connection with its inspector.
type Client struct {
	Inspector
	db *sql.DB
}

// Open opens a connection with the given driver and DSN and returns a
// client ready to inspect it. The caller owns the connection and must
// call Close.
func Open(driver, dsn string, opts ...Option) (*Client, error) {
	name := driver
	if name == "sqlite3" {
		name = "sqlite"
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("inspect: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("inspect: ping %s: %w", driver, err)
	}
	ins, err := New(driver, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Client{Inspector: ins, db: db}, nil
}

// DB exposes the underlying connection.
func (c *Client) DB() *sql.DB { return c.db }

// Close closes the underlying connection.
func (c *Client) Close() error { return c.db.Close() }

// keep reports if the table passes the include/exclude filters.
func (c *config) keep(table string) bool {
	if len(c.include) > 0 && !containsFold(c.include, table) {
		return false
	}
	return !containsFold(c.exclude, table)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// inspectTables fetches per-table metadata concurrently, preserving the
// order of the name list.
func inspectTables(ctx context.Context, cfg *config, names []string, fetch func(ctx context.Context, name string) (*sqlschema.Table, error)) ([]*sqlschema.Table, error) {
	tables := make([]*sqlschema.Table, len(names))
	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(cfg.workers)
	for i, name := range names {
		errg.Go(func() error {
			t, err := fetch(ctx, name)
			if err != nil {
				return fmt.Errorf("inspect: table %q: %w", name, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// schemaOptions assembles the construction options for the resulting model.
func (c *config) schemaOptions(dialect, name string) []sqlschema.Option {
	opts := []sqlschema.Option{sqlschema.WithDialect(dialect)}
	if name != "" {
		opts = append(opts, sqlschema.WithName(name))
	}
	return append(opts, c.opts...)
}
