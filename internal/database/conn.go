package database

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// connRow releases its connection after Scan.
type connRow struct {
	row  pgx.Row
	conn *pgxpool.Conn
}

func (r *connRow) Scan(dest ...any) error {
	defer r.conn.Release()
	return r.row.Scan(dest...)
}

// connRows releases its connection on Close. pgx.CollectRows and friends
// always close the rows they consume.
type connRows struct {
	pgx.Rows
	conn *pgxpool.Conn
	once sync.Once
}

func (r *connRows) Close() {
	r.Rows.Close()
	r.once.Do(r.conn.Release)
}

// connTx returns its connection to the pool once the transaction ends.
type connTx struct {
	pgx.Tx
	conn *pgxpool.Conn
	once sync.Once
}

func (t *connTx) Commit(ctx context.Context) error {
	err := t.Tx.Commit(ctx)
	t.once.Do(t.conn.Release)
	return err
}

func (t *connTx) Rollback(ctx context.Context) error {
	err := t.Tx.Rollback(ctx)
	t.once.Do(t.conn.Release)
	return err
}

type connBatchResults struct {
	pgx.BatchResults
	conn *pgxpool.Conn
	once sync.Once
}

func (b *connBatchResults) Close() error {
	err := b.BatchResults.Close()
	b.once.Do(b.conn.Release)
	return err
}

// errRow is a pgx.Row whose Scan always fails.
type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}

// errBatchResults is a pgx.BatchResults whose every call fails.
type errBatchResults struct {
	err error
}

func (b errBatchResults) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, b.err }
func (b errBatchResults) Query() (pgx.Rows, error)         { return nil, b.err }
func (b errBatchResults) QueryRow() pgx.Row                { return errRow{err: b.err} }
func (b errBatchResults) Close() error                     { return b.err }
