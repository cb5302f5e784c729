// Package database provides database connectivity and management for the procurement service.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/helixir/procurement-service/internal/config"
	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/observability"
)

// Database operational constants.
const (
	// HealthCheckTimeout is the maximum time to wait for a health check ping.
	HealthCheckTimeout = 5 * time.Second
)

// ErrNotConnected is returned by every operation issued while the pool is closed.
var ErrNotConnected = errors.New("database is not connected")

// HealthStatus contains database health information.
type HealthStatus struct {
	Status            string `json:"status"`
	Error             string `json:"error,omitempty"`
	TotalConns        int32  `json:"total_conns"`
	AcquiredConns     int32  `json:"acquired_conns"`
	IdleConns         int32  `json:"idle_conns"`
	ConstructingConns int32  `json:"constructing_conns"`
	MaxConns          int32  `json:"max_conns"`
}

// DBTX is an interface that both *DB and pgx.Tx satisfy.
// This allows repositories to work with both pooled connections and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Compile-time check that *DB implements DBTX.
var _ DBTX = (*DB)(nil)

// DB is the process-wide connection pool gateway. It is constructed once by
// the process lifecycle code and passed to repositories.
//
// Every statement issued through DB acquires a connection for its own
// duration and releases it afterwards. Acquisition waits at most
// DatabaseConfig.AcquireTimeout; running out of that budget while the
// caller's context is still live yields domain.ErrPoolExhausted.
type DB struct {
	mu      sync.RWMutex
	pool    *pgxpool.Pool
	config  *config.DatabaseConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// Option configures a DB.
type Option func(*DB)

// WithMetrics records pool metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(db *DB) {
		db.metrics = m
	}
}

// New creates the gateway and establishes the pool.
func New(ctx context.Context, cfg *config.DatabaseConfig, logger zerolog.Logger, opts ...Option) (*DB, error) {
	db := &DB{
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(db)
	}
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Connect establishes the pool. It is a no-op when already connected.
func (db *DB) Connect(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.pool != nil {
		return nil
	}

	cfg := db.config
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	// Configure pool settings
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod

	// Configure connection settings
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	if cfg.Schema != "" {
		poolConfig.ConnConfig.RuntimeParams["search_path"] = cfg.Schema
	}

	// Add logging hooks
	logger := db.logger
	poolConfig.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		logger.Trace().Msg("acquiring connection from pool")
		return true
	}
	poolConfig.AfterRelease = func(conn *pgx.Conn) bool {
		logger.Trace().Msg("releasing connection to pool")
		return true
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db.pool = pool
	db.logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Str("schema", cfg.Schema).
		Int32("max_conns", cfg.MaxConns).
		Int32("min_conns", cfg.MinConns).
		Dur("acquire_timeout", cfg.AcquireTimeout).
		Msg("database connection pool established")

	return nil
}

// Disconnect closes the pool and clears it so a later Connect starts fresh.
// It is safe to call more than once.
func (db *DB) Disconnect() {
	db.mu.Lock()
	pool := db.pool
	db.pool = nil
	db.mu.Unlock()

	if pool != nil {
		pool.Close()
		db.logger.Info().Msg("database connection pool closed")
	}
}

// Close is an alias for Disconnect.
func (db *DB) Close() {
	db.Disconnect()
}

// IsConnected reports whether the pool is established.
func (db *DB) IsConnected() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.pool != nil
}

// Pool returns the underlying connection pool, or nil when disconnected.
func (db *DB) Pool() *pgxpool.Pool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.pool
}

func (db *DB) currentPool() (*pgxpool.Pool, error) {
	pool := db.Pool()
	if pool == nil {
		return nil, ErrNotConnected
	}
	return pool, nil
}

// acquire takes a connection from the pool, waiting at most AcquireTimeout.
func (db *DB) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	pool, err := db.currentPool()
	if err != nil {
		return nil, err
	}

	acquireCtx := ctx
	timeout := db.config.AcquireTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := pool.Acquire(acquireCtx)
	if err != nil {
		if ctx.Err() == nil && errors.Is(acquireCtx.Err(), context.DeadlineExceeded) {
			db.metrics.RecordPoolExhausted()
			stat := pool.Stat()
			db.logger.Warn().
				Dur("acquire_timeout", timeout).
				Int32("acquired_conns", stat.AcquiredConns()).
				Int32("max_conns", stat.MaxConns()).
				Msg("connection pool exhausted")
			return nil, fmt.Errorf("%w: no connection available within %s", domain.ErrPoolExhausted, timeout)
		}
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return conn, nil
}

// WithConn runs fn with a dedicated pooled connection. The connection is
// released on every exit path, including panics.
func (db *DB) WithConn(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	conn, err := db.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(conn)
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	pool, err := db.currentPool()
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// HealthCheck runs a trivial round trip. It never returns an error.
func (db *DB) HealthCheck(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	var one int
	if err := db.QueryRow(checkCtx, "SELECT 1").Scan(&one); err != nil {
		db.logger.Debug().Err(err).Msg("database health check failed")
		return false
	}
	return one == 1
}

// Health returns database health information as a typed struct.
func (db *DB) Health(ctx context.Context) HealthStatus {
	pool := db.Pool()
	if pool == nil {
		return HealthStatus{Status: "unhealthy", Error: ErrNotConnected.Error()}
	}

	stat := pool.Stat()
	health := HealthStatus{
		TotalConns:        stat.TotalConns(),
		AcquiredConns:     stat.AcquiredConns(),
		IdleConns:         stat.IdleConns(),
		ConstructingConns: stat.ConstructingConns(),
		MaxConns:          stat.MaxConns(),
	}
	db.metrics.ObservePool(health.TotalConns, health.AcquiredConns, health.IdleConns)

	// Check if we can ping
	pingCtx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		health.Status = "unhealthy"
		health.Error = err.Error()
	} else {
		health.Status = "healthy"
	}

	return health
}

// Begin starts a transaction on a dedicated connection. The connection is
// returned to the pool when the transaction commits or rolls back.
func (db *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	return db.BeginTx(ctx, pgx.TxOptions{})
}

// BeginTx starts a transaction with custom options.
func (db *DB) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &connTx{Tx: tx, conn: conn}, nil
}

// WithTransaction executes a function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function completes successfully, the transaction is committed.
func (db *DB) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return db.WithTransactionOptions(ctx, pgx.TxOptions{}, fn)
}

// WithSerializableTransaction executes a function within a serializable transaction.
func (db *DB) WithSerializableTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return db.WithTransactionOptions(ctx, pgx.TxOptions{
		IsoLevel: pgx.Serializable,
	}, fn)
}

// WithReadOnlyTransaction executes a function within a read-only transaction.
func (db *DB) WithReadOnlyTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return db.WithTransactionOptions(ctx, pgx.TxOptions{
		AccessMode: pgx.ReadOnly,
	}, fn)
}

// WithTransactionOptions executes a function within a transaction with custom options.
func (db *DB) WithTransactionOptions(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	return runInTx(ctx, tx, db.logger, fn)
}

// runInTx commits tx when fn succeeds and rolls it back on error or panic.
func runInTx(ctx context.Context, tx pgx.Tx, logger zerolog.Logger, fn func(tx pgx.Tx) error) error {
	defer func() {
		if p := recover(); p != nil {
			// Attempt rollback on panic
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error().
					Err(rbErr).
					Interface("panic", p).
					Msg("failed to rollback transaction after panic")
			}
			panic(p) // Re-throw panic after rollback
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.Error().
				Err(rbErr).
				AnErr("original_error", err).
				Msg("failed to rollback transaction")
			return fmt.Errorf("transaction error: %w (rollback error: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Exec executes a query without returning any rows.
// This method implements the DBTX interface.
func (db *DB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	defer conn.Release()
	return conn.Exec(ctx, sql, args...)
}

// QueryRow executes a query that is expected to return at most one row.
// The connection is released once the row is scanned.
// This method implements the DBTX interface.
func (db *DB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	conn, err := db.acquire(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return &connRow{row: conn.QueryRow(ctx, sql, args...), conn: conn}
}

// Query executes a query that returns rows. The connection is released when
// the rows are closed.
// This method implements the DBTX interface.
func (db *DB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		conn.Release()
		return nil, err
	}
	return &connRows{Rows: rows, conn: conn}, nil
}

// SendBatch sends a batch of queries to the database.
// This method implements the DBTX interface.
func (db *DB) SendBatch(ctx context.Context, batch *pgx.Batch) pgx.BatchResults {
	conn, err := db.acquire(ctx)
	if err != nil {
		return errBatchResults{err: err}
	}
	return &connBatchResults{BatchResults: conn.SendBatch(ctx, batch), conn: conn}
}

// Execute runs a statement and returns the number of affected rows.
func (db *DB) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FetchOne runs a query and returns its first row as a column map.
// found is false when the query produced no rows.
func (db *DB) FetchOne(ctx context.Context, sql string, args ...any) (row map[string]any, found bool, err error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, false, err
	}
	row, err = pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return row, true, nil
}

// FetchMany runs a query and returns every row as a column map.
func (db *DB) FetchMany(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToMap)
}
