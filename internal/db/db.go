package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel/attribute"
)

// Supported drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

//go:embed schema/*.sql
var schemaFS embed.FS

var (
	driversMu sync.Mutex
	drivers   = map[string]string{}
)

// Options configures a database connection
type Options struct {
	Driver      string
	DSN         string
	ServiceName string
}

// DB wraps the database connection with its dialect
type DB struct {
	*sql.DB
	driver string
}

// Querier is satisfied by both *sql.DB and *sql.Tx
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open creates a new database connection with OpenTelemetry instrumentation
func Open(ctx context.Context, opts Options) (*DB, error) {
	if opts.Driver != DriverMySQL && opts.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver: %q", opts.Driver)
	}

	driverName, err := registerDriver(opts.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if opts.ServiceName != "" {
		if err := otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(
			attribute.String("db.system", opts.Driver),
			attribute.String("service.name", opts.ServiceName),
		)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to register otelsql stats metrics: %w", err)
		}
	}

	return &DB{DB: db, driver: opts.Driver}, nil
}

// registerDriver wraps the named driver with otelsql once per process
func registerDriver(driver string) (string, error) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if name, ok := drivers[driver]; ok {
		return name, nil
	}
	name, err := otelsql.Register(driver, otelsql.WithAttributes(
		attribute.String("db.system", driver),
	))
	if err != nil {
		return "", fmt.Errorf("failed to register otelsql: %w", err)
	}
	drivers[driver] = name
	return name, nil
}

// Dialect returns the underlying driver name
func (db *DB) Dialect() string {
	return db.driver
}

// ForUpdate returns the row locking clause for SELECTs inside a transaction.
// sqlite transactions are opened with BEGIN IMMEDIATE and already hold the write lock.
func (db *DB) ForUpdate() string {
	if db.driver == DriverMySQL {
		return " FOR UPDATE"
	}
	return ""
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back on error or panic.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsDuplicateKey reports whether err is a unique constraint violation
func IsDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// InitSchema creates the tables for the current dialect.
// It splits the SQL into individual statements and executes them one by one
func (db *DB) InitSchema(ctx context.Context) error {
	schemaSQL, err := schemaFS.ReadFile("schema/" + db.driver + ".sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	statements := splitSQLStatements(string(schemaSQL))
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement %d: %w\nStatement: %s", i+1, err, stmt)
		}
	}
	return nil
}

// splitSQLStatements splits a SQL string into individual statements
func splitSQLStatements(sql string) []string {
	// Remove comments (lines starting with --)
	lines := strings.Split(sql, "\n")
	var cleanedLines []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
			cleanedLines = append(cleanedLines, line)
		}
	}

	// Join and split by semicolon
	cleanedSQL := strings.Join(cleanedLines, "\n")
	statements := strings.Split(cleanedSQL, ";")

	// Filter out empty statements
	var result []string
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			result = append(result, stmt)
		}
	}

	return result
}
