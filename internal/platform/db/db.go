package db

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its dialect, base FS and logger in package globals.
var migrateMu sync.Mutex

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Open connects to the configured store. driver is "sqlite" or "postgres"; for sqlite the dsn
// is a file path and its directory is created when missing.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		conn, err := sqlx.ConnectContext(ctx, "sqlite", dsn+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite allows a single writer
		conn.SetMaxOpenConns(1)
		return conn, nil
	case DriverPostgres:
		conn, err := sqlx.ConnectContext(ctx, "pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}

// Migrate applies the embedded migrations up to the latest version.
func Migrate(ctx context.Context, conn *sqlx.DB, driver string, logger *slog.Logger) error {
	dialect := "sqlite3"
	if driver == DriverPostgres {
		dialect = "postgres"
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(&slogGooseLogger{logger: logger})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, conn.DB, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "migrate")
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Error(fmt.Sprintf(format, v...), "component", "migrate")
}
