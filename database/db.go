package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/abefas/todoapp/config"
)

type dialect struct {
	driverName string
	schema     string
	positional bool
}

var dialects = map[string]dialect{
	config.DriverPostgres: {
		driverName: "postgres",
		schema: `
	CREATE TABLE IF NOT EXISTS tasks (
		id SERIAL PRIMARY KEY,
		description TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		priority TEXT,
		due_date TIMESTAMP
	);`,
	},
	config.DriverSQLite: {
		driverName: "sqlite",
		positional: true,
		schema: `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		priority TEXT,
		due_date TIMESTAMP
	);`,
	},
}

var placeholder = regexp.MustCompile(`\$\d+`)

// DB is a connection pool bound to the SQL dialect of its driver.
type DB struct {
	*sql.DB
	dialect dialect
}

// InitDB opens and pings the database described by cfg.
func InitDB(ctx context.Context, cfg config.Database) (*DB, error) {
	d, ok := dialects[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := sql.Open(d.driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: conn, dialect: d}, nil
}

// EnsureSchema creates the tasks table if it does not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, db.dialect.schema); err != nil {
		return fmt.Errorf("failed to create 'tasks' table: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// rebind rewrites $N placeholders for drivers that only take "?".
func (db *DB) rebind(query string) string {
	if !db.dialect.positional {
		return query
	}
	return placeholder.ReplaceAllString(query, "?")
}
