package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3" // SQLite driver

	"tradejournal/internal/ports"
)

// DefaultUserID scopes user-level rows when no user is configured.
const DefaultUserID = "local"

// Repository implements the journal ports (trades, capital, custom fields, strategies) using SQLite.
type Repository struct {
	db     *sql.DB
	userID string
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	UserID string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/journal.db" // Default path
	}
	userID := cfg.UserID
	if userID == "" {
		userID = DefaultUserID
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection keeps the foreign_keys pragma and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, userID: userID, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		symbol_name TEXT NOT NULL,
		position_type TEXT NOT NULL,
		open_date TEXT NOT NULL,
		open_time TEXT NOT NULL DEFAULT '',
		close_date TEXT NOT NULL DEFAULT '',
		close_time TEXT NOT NULL DEFAULT '',
		entry_price REAL NOT NULL,
		sell_price REAL NOT NULL DEFAULT 0,
		quantity REAL NOT NULL,
		quantity_sold REAL NOT NULL DEFAULT 0,
		result TEXT NOT NULL DEFAULT '',
		rating INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		strategy_id TEXT NULL,
		applied_open_rules TEXT NOT NULL DEFAULT '[]',
		applied_close_rules TEXT NOT NULL DEFAULT '[]',
		open_custom_fields TEXT NOT NULL DEFAULT '{}',
		close_custom_fields TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS close_events (
		trade_id TEXT NOT NULL REFERENCES trades(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL DEFAULT '',
		quantity_sold REAL NOT NULL,
		sell_price REAL NOT NULL,
		result REAL NOT NULL,
		PRIMARY KEY (trade_id, id)
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		capital TEXT NULL,
		open_custom_field_names TEXT NOT NULL DEFAULT '[]',
		close_custom_field_names TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS strategies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		open_position_rules TEXT NOT NULL DEFAULT '[]',
		close_position_rules TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_trades_close_date ON trades (close_date);
	CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades (strategy_id);
	CREATE INDEX IF NOT EXISTS idx_close_events_trade ON close_events (trade_id, seq);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- Helpers ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// dbError picks the port error reported for a failed statement.
func dbError(err, fallback error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ports.ErrTimeout
	case errors.Is(err, context.Canceled):
		return ports.ErrContextCanceled
	default:
		return fallback
	}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func encodeJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(s string, v interface{}) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}
