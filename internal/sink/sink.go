// Package sink writes tables into relational databases with replace
// semantics: the destination table is dropped, recreated with one TEXT
// column per sheet column, and filled inside a single transaction.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/me/sheetsync/pkg/model"
)

// ErrUnsupportedDB is returned for a db_type with no registered writer.
var ErrUnsupportedDB = errors.New("unsupported database type")

// TableWriter replaces one destination table with the contents of a Table.
type TableWriter interface {
	Write(ctx context.Context, table *model.Table, cfg model.DBConfig) (int, error)
	Close() error
}

// Router dispatches writes on DBConfig.DBType.
// Registration happens at startup before concurrent access, so no mutex is needed.
type Router struct {
	writers map[string]TableWriter
	logger  *slog.Logger
}

// NewRouter creates an empty Router.
func NewRouter(logger *slog.Logger) *Router {
	return &Router{
		writers: make(map[string]TableWriter),
		logger:  logger.With("component", "sink"),
	}
}

// NewDefaultRouter registers the PostgreSQL writer and a SQLite writer
// confined to sqliteDir.
func NewDefaultRouter(sqliteDir string, logger *slog.Logger) *Router {
	r := NewRouter(logger)
	r.Register(NewPostgresWriter(logger), "postgresql", "postgres")
	r.Register(NewSQLiteWriter(sqliteDir, logger), "sqlite", "sqlite3")
	return r
}

// Register adds w under each of dbTypes (case-insensitive).
func (r *Router) Register(w TableWriter, dbTypes ...string) {
	for _, t := range dbTypes {
		r.writers[strings.ToLower(t)] = w
	}
	r.logger.Info("sink registered", "db_types", dbTypes)
}

// Supports reports whether dbType has a writer.
func (r *Router) Supports(dbType string) bool {
	_, ok := r.writers[strings.ToLower(strings.TrimSpace(dbType))]
	return ok
}

// Write replaces cfg's table with table and returns the rows written.
// All failures are returned as *model.WriteError.
func (r *Router) Write(ctx context.Context, table *model.Table, cfg model.DBConfig) (int, error) {
	fail := func(err error) (int, error) {
		return 0, &model.WriteError{Database: cfg.Database, Table: cfg.TableName, Err: err}
	}

	w, ok := r.writers[strings.ToLower(strings.TrimSpace(cfg.DBType))]
	if !ok {
		return fail(fmt.Errorf("%w: %q", ErrUnsupportedDB, cfg.DBType))
	}
	if err := validate(table, cfg); err != nil {
		return fail(err)
	}

	r.logger.Info("writing table", "db_type", cfg.DBType, "target", cfg.Target(), "rows", table.Len())
	n, err := w.Write(ctx, table, cfg)
	if err != nil {
		r.logger.Error("write failed", "target", cfg.Target(), "error", err)
		return fail(err)
	}
	r.logger.Info("table written", "target", cfg.Target(), "rows", n)
	return n, nil
}

// Close releases every registered writer once.
func (r *Router) Close() error {
	seen := make(map[TableWriter]bool)
	var errs []error
	for _, w := range r.writers {
		if seen[w] {
			continue
		}
		seen[w] = true
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func validate(table *model.Table, cfg model.DBConfig) error {
	if strings.TrimSpace(cfg.TableName) == "" {
		return errors.New("table_name is required")
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return errors.New("database is required")
	}
	if table == nil || len(table.Columns) == 0 {
		return errors.New("table has no columns")
	}
	return nil
}

// createTableSQL builds a CREATE TABLE with one TEXT column per name.
// name and cols must already be quoted.
func createTableSQL(name string, cols []string) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = c + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))
}
