package sink

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/me/sheetsync/pkg/model"
)

const (
	pgMaxConns        = 5
	pgMaxConnLifetime = 30 * time.Minute
	pgConnectTimeout  = 30 * time.Second
)

// pool abstracts the subset of pgxpool.Pool used by the writer for easier testing.
type pool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Close()
}

// connector opens a pool for a DSN.
type connector func(ctx context.Context, dsn string) (pool, error)

// PostgresWriter writes into PostgreSQL. Pools are cached per DSN.
type PostgresWriter struct {
	mu      sync.Mutex
	pools   map[string]pool
	connect connector
	logger  *slog.Logger
}

// NewPostgresWriter creates a PostgresWriter backed by pgxpool.
func NewPostgresWriter(logger *slog.Logger) *PostgresWriter {
	return newPostgresWriter(connectPool, logger)
}

func newPostgresWriter(connect connector, logger *slog.Logger) *PostgresWriter {
	return &PostgresWriter{
		pools:   make(map[string]pool),
		connect: connect,
		logger:  logger.With("component", "sink-postgres"),
	}
}

func connectPool(ctx context.Context, dsn string) (pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = pgMaxConns
	cfg.MaxConnLifetime = pgMaxConnLifetime
	cfg.ConnConfig.ConnectTimeout = pgConnectTimeout

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return p, nil
}

// DSN builds a postgres:// URL from cfg.
func DSN(cfg model.DBConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:   "/" + cfg.Database,
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return u.String()
}

func (w *PostgresWriter) poolFor(ctx context.Context, dsn string) (pool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pools[dsn]; ok {
		return p, nil
	}
	p, err := w.connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	w.pools[dsn] = p
	return p, nil
}

// Write drops, recreates and fills cfg.TableName in one transaction,
// loading rows with COPY.
func (w *PostgresWriter) Write(ctx context.Context, table *model.Table, cfg model.DBConfig) (int, error) {
	p, err := w.poolFor(ctx, DSN(cfg))
	if err != nil {
		return 0, err
	}

	tx, err := p.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // no-op if committed

	ident := pgx.Identifier{cfg.TableName}
	name := ident.Sanitize()
	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = pgx.Identifier{c}.Sanitize()
	}

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return 0, fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(name, cols)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	rows := make([][]any, len(table.Rows))
	for i, row := range table.Rows {
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = v
		}
		rows[i] = vals
	}
	n, err := tx.CopyFrom(ctx, ident, table.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	w.logger.Debug("copy complete", "table", cfg.TableName, "rows", n)
	return int(n), nil
}

// Close closes every cached pool.
func (w *PostgresWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for dsn, p := range w.pools {
		p.Close()
		delete(w.pools, dsn)
	}
	return nil
}

var _ TableWriter = (*PostgresWriter)(nil)
var _ TableWriter = (*SQLiteWriter)(nil)
