package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/me/sheetsync/pkg/model"

	_ "modernc.org/sqlite"
)

// ErrInvalidSQLiteName rejects a database name that would leave the data
// directory.
var ErrInvalidSQLiteName = errors.New("sqlite database must be a relative path inside the data directory")

// CleanSQLiteName validates a client-supplied SQLite database name and
// returns it cleaned. Absolute paths and names escaping the data directory
// through ".." are rejected.
func CleanSQLiteName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || filepath.IsAbs(name) || filepath.VolumeName(name) != "" || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSQLiteName, name)
	}
	clean := filepath.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSQLiteName, name)
	}
	return clean, nil
}

// SQLiteWriter writes into SQLite files under a data directory.
// DBConfig.Database names the file relative to that directory; host, port
// and credentials are ignored. Handles are cached per path.
type SQLiteWriter struct {
	dir    string
	mu     sync.Mutex
	dbs    map[string]*sql.DB
	logger *slog.Logger
}

// NewSQLiteWriter creates a SQLiteWriter confined to dir.
func NewSQLiteWriter(dir string, logger *slog.Logger) *SQLiteWriter {
	return &SQLiteWriter{
		dir:    dir,
		dbs:    make(map[string]*sql.DB),
		logger: logger.With("component", "sink-sqlite", "dir", dir),
	}
}

// path resolves a database name inside the data directory.
func (w *SQLiteWriter) path(name string) (string, error) {
	clean, err := CleanSQLiteName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(w.dir, clean), nil
}

func (w *SQLiteWriter) open(name string) (*sql.DB, error) {
	path, err := w.path(name)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if db, ok := w.dbs[path]; ok {
		return db, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	w.dbs[path] = db
	w.logger.Debug("sqlite opened", "path", path)
	return db, nil
}

// Write drops, recreates and fills cfg.TableName in one transaction.
func (w *SQLiteWriter) Write(ctx context.Context, table *model.Table, cfg model.DBConfig) (int, error) {
	db, err := w.open(cfg.Database)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	name := quoteIdent(cfg.TableName)
	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = quoteIdent(c)
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return 0, fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(name, cols)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		name, strings.Join(cols, ", "), placeholders))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for i, row := range table.Rows {
		for j := range args {
			args[j] = row[j]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return table.Len(), nil
}

// Close closes every cached handle.
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for path, db := range w.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", path, err))
		}
		delete(w.dbs, path)
	}
	return errors.Join(errs...)
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
