package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/petal-labs/anther/tool"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS invocations (
	id TEXT PRIMARY KEY,
	tool TEXT NOT NULL,
	ok INTEGER NOT NULL,
	error_kind TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS invocations_created_at ON invocations(created_at);`

// SQLiteHistory persists invocation records in SQLite.
type SQLiteHistory struct {
	db     *sql.DB
	logger *slog.Logger
}

// SQLiteHistoryConfig configures the SQLite-backed history.
type SQLiteHistoryConfig struct {
	DSN    string
	Logger *slog.Logger
}

// NewSQLiteHistory opens (or creates) a SQLite-backed invocation history.
func NewSQLiteHistory(cfg SQLiteHistoryConfig) (*SQLiteHistory, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("server: sqlite history dsn is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("server: sqlite history open: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("server: sqlite history set WAL mode: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("server: sqlite history create schema: %w", err)
	}

	return &SQLiteHistory{db: db, logger: logger}, nil
}

// Record stores one invocation. Failures are logged and dropped so they
// never block dispatch.
func (h *SQLiteHistory) Record(ctx context.Context, rec tool.InvocationRecord) {
	_, err := h.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO invocations (id, tool, ok, error_kind, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Tool, boolToInt(rec.OK), rec.ErrorKind, rec.DurationMS,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		h.logger.Warn("record invocation failed", "id", rec.ID, "error", err)
	}
}

// List returns up to limit records, newest first.
func (h *SQLiteHistory) List(ctx context.Context, limit int) ([]tool.InvocationRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, tool, ok, error_kind, duration_ms, created_at
		 FROM invocations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("server: sqlite history list: %w", err)
	}
	defer rows.Close()

	records := make([]tool.InvocationRecord, 0, limit)
	for rows.Next() {
		var rec tool.InvocationRecord
		var ok int
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Tool, &ok, &rec.ErrorKind, &rec.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("server: sqlite history scan: %w", err)
		}
		rec.OK = ok != 0
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("server: sqlite history parse created_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the underlying database handle.
func (h *SQLiteHistory) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ History = (*SQLiteHistory)(nil)
var _ History = (*MemoryHistory)(nil)
