// Package database provides the SQLite member roster used by gateways that
// cannot enumerate group members themselves.
//
// The roster is written from the update handler while the scheduler may be
// running maintenance, so the pool is limited to a single connection and
// every connection waits on a busy database instead of failing immediately.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/complimentbot/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// busyTimeout is applied to DSNs that do not set their own pragmas.
const busyTimeout = "_pragma=busy_timeout(5000)"

// NewDB opens the roster database and brings its schema up to date.
// dbPath is either a plain file path or a "file:" DSN; a DSN that already
// carries query parameters is passed through untouched. If the migrations
// fail the connection is closed before the error is returned.
func NewDB(dbPath string, logger *slog.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "database")

	db, err := sqlx.Connect("sqlite", withBusyTimeout(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := ApplyMigrations(db.DB, ExtractDBNameFromPath(dbPath), log); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Error closing database after migration failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info("Roster database ready", "path", dbPath)
	return db, nil
}

// CloseDB closes the database connection pool. A nil db is ignored so that
// callers can defer it unconditionally.
func CloseDB(db *sqlx.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.Close(); err != nil {
		logger.Error("Error closing database connection", "component", "database", "error", err)
		return
	}
	logger.Info("Roster database closed", "component", "database")
}

// ApplyMigrations runs every pending embedded migration against db.
// dbName only labels the migrate driver instance; an up-to-date schema is not
// an error.
func ApplyMigrations(db *sql.DB, dbName string, log *slog.Logger) error {
	if db == nil {
		return errors.New("database connection is nil, cannot apply migrations")
	}
	if dbName == "" {
		return errors.New("database name for migration driver is empty")
	}
	if log == nil {
		log = slog.Default()
	}

	log.Debug("Applying database migrations", "database_name", dbName)

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create embed source driver: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(db, &sqlite.Config{DatabaseName: dbName})
	if err != nil {
		return fmt.Errorf("failed to create sqlite database driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("Roster schema is up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Info("Roster schema migrated", "version", version, "dirty", dirty)
	return nil
}

// ExtractDBNameFromPath strips the "file:" scheme and query parameters from a
// DSN and unescapes what is left, giving the on-disk file name.
func ExtractDBNameFromPath(path string) string {
	path = strings.TrimPrefix(path, "file:")
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}
	return path
}

func withBusyTimeout(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?" + busyTimeout
}
