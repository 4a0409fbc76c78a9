// Package memory holds in-process test doubles of the core repositories and
// of the pgx pool. Only tests import it.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errNoSQL = errors.New("memory: sql is not supported")

// Tx is a pgx.Tx that records commits and rollbacks and rejects SQL.
// Nested Begin calls return child transactions sharing the same journal.
type Tx struct {
	mu        sync.Mutex
	commits   int
	rollbacks int
	parent    *Tx
}

func NewTx() *Tx {
	return &Tx{}
}

func (t *Tx) root() *Tx {
	if t.parent != nil {
		return t.parent.root()
	}
	return t
}

func (t *Tx) Commits() int {
	r := t.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}

func (t *Tx) Rollbacks() int {
	r := t.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rollbacks
}

func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) {
	return &Tx{parent: t}, nil
}

func (t *Tx) Commit(ctx context.Context) error {
	r := t.root()
	r.mu.Lock()
	r.commits++
	r.mu.Unlock()
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	r := t.root()
	r.mu.Lock()
	r.rollbacks++
	r.mu.Unlock()
	return nil
}

func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errNoSQL
}

func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return errBatch{}
}

func (t *Tx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errNoSQL
}

func (t *Tx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errNoSQL
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errNoSQL
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{}
}

func (t *Tx) Conn() *pgx.Conn {
	return nil
}

type errRow struct{}

func (errRow) Scan(dest ...any) error { return errNoSQL }

// errBatch fails every queued statement instead of panicking on a nil result.
type errBatch struct{}

func (errBatch) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, errNoSQL }
func (errBatch) Query() (pgx.Rows, error) { return nil, errNoSQL }
func (errBatch) QueryRow() pgx.Row { return errRow{} }
func (errBatch) Close() error { return nil }
