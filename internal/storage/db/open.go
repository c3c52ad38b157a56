// Package db contains the SQL statements, models and connection utilities used
// by the storage package.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres sql.DB driver initialization
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite" // sqlite sql.DB driver initialization
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Driver selects the database backend.
type Driver string

// Supported drivers.
const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Valid reports whether d is a supported driver.
func (d Driver) Valid() bool {
	return d == DriverSQLite || d == DriverPostgres
}

// Open connects to the database for driver and dsn, then migrates it to match
// the current state expected of the system. For SQLite, dsn is a file path and
// the file is created if it does not exist.
func Open(ctx context.Context, logger *slog.Logger, driver Driver, dsn string) (*sql.DB, error) {
	var (
		handle  *sql.DB
		dialect goose.Dialect
		err     error
	)
	switch driver {
	case DriverSQLite:
		dialect = goose.DialectSQLite3
		handle, err = openSQLite(ctx, dsn)
	case DriverPostgres:
		dialect = goose.DialectPostgres
		handle, err = openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err = migrate(ctx, logger.With(slog.String("db", string(driver))), handle, dialect, driver); err != nil {
		_ = handle.Close()
		return nil, err
	}
	return handle, nil
}

func migrate(ctx context.Context, logger *slog.Logger, handle *sql.DB, dialect goose.Dialect, driver Driver) error {
	fsys, err := fs.Sub(migrations, "migrations/"+string(driver))
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect, handle, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	for _, res := range results {
		logger.DebugContext(ctx, "applied migration",
			slog.Int64("version", res.Source.Version),
			slog.Duration("duration", res.Duration),
		)
	}
	return nil
}

var registerSQLiteHook sync.Once

func openSQLite(ctx context.Context, dbPath string) (*sql.DB, error) {
	if dbPath == ":memory:" { //nolint:revive // for documentation
		// noop
	} else if _, err := os.Stat(dbPath); err != nil {
		const userOnlyDirPerms = 0o700
		if err = os.MkdirAll(filepath.Dir(dbPath), userOnlyDirPerms); err != nil {
			return nil, fmt.Errorf("failed to create db parent directory: %w", err)
		}
	}

	if strings.ContainsRune(dbPath, '?') {
		dbPath += "&"
	} else {
		dbPath += "?"
	}
	dbPath += "_time_format=sqlite"

	registerSQLiteHook.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, _ string) error {
			const initSQL = `
			pragma journal_mode = WAL; -- allow concurrent writes
			pragma synchronous = normal; -- don't wait for fsync except on checkpointing
			pragma temp_store = memory; -- temporary indices
			pragma foreign_keys = on; -- cascade user deletes to messages
			`
			_, err := conn.ExecContext(context.Background(), initSQL, nil)
			return err
		})
	})

	handle, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create DB handler: %w", err)
	} else if err = handle.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	handle.SetMaxOpenConns(1)
	return handle, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	handle, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create DB handler: %w", err)
	} else if err = handle.PingContext(ctx); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	const maxConns = 5
	handle.SetMaxOpenConns(maxConns)
	return handle, nil
}
