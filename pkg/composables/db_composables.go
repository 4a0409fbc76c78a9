package composables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/tenantgate/pkg/constants"
	"github.com/iota-uz/tenantgate/pkg/repo"
)

var (
	ErrNoTx   = errors.New("no transaction found in context")
	ErrNoPool = errors.New("no database pool found in context")
)

// Conn is a connection checked out of a Pool for the lifetime of one request.
type Conn interface {
	repo.Tx
	Begin(ctx context.Context) (pgx.Tx, error)
	// Release returns the connection to the pool.
	Release()
	// Discard closes the connection instead of returning it to the pool.
	Discard(ctx context.Context) error
}

type Pool interface {
	repo.Tx
	Begin(ctx context.Context) (pgx.Tx, error)
	Acquire(ctx context.Context) (Conn, error)
	Ping(ctx context.Context) error
}

func NewPool(p *pgxpool.Pool) Pool {
	return &pgxPool{Pool: p}
}

type pgxPool struct {
	*pgxpool.Pool
}

func (p *pgxPool) Acquire(ctx context.Context) (Conn, error) {
	c, err := p.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxConn{Conn: c}, nil
}

type pgxConn struct {
	*pgxpool.Conn
}

func (c *pgxConn) Discard(ctx context.Context) error {
	return c.Hijack().Close(ctx)
}

func WithTx(ctx context.Context, tx repo.Tx) context.Context {
	return context.WithValue(ctx, constants.TxKey, tx)
}

// UseTx returns the handle bound to ctx, falling back to the shared pool.
// Queries issued through the pool fallback must schema-qualify their tables.
func UseTx(ctx context.Context) (repo.Tx, error) {
	if tx, ok := ctx.Value(constants.TxKey).(repo.Tx); ok && tx != nil {
		return tx, nil
	}
	return UsePool(ctx)
}

func WithPool(ctx context.Context, pool Pool) context.Context {
	return context.WithValue(ctx, constants.PoolKey, pool)
}

func UsePool(ctx context.Context) (Pool, error) {
	pool, ok := ctx.Value(constants.PoolKey).(Pool)
	if !ok || pool == nil {
		return nil, ErrNoPool
	}
	return pool, nil
}

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// BeginTx starts a transaction on the handle bound to ctx (a savepoint when
// that handle is already a transaction), or on the pool when nothing is bound.
func BeginTx(ctx context.Context) (pgx.Tx, error) {
	if b, ok := ctx.Value(constants.TxKey).(beginner); ok && b != nil {
		return b.Begin(ctx)
	}
	pool, err := UsePool(ctx)
	if err != nil {
		return nil, err
	}
	return pool.Begin(ctx)
}

// InTx runs fn in a new transaction and commits it when fn succeeds.
func InTx(ctx context.Context, fn func(context.Context) error) error {
	tx, err := BeginTx(ctx)
	if err != nil {
		return err
	}

	if err := fn(WithTx(ctx, tx)); err != nil {
		if rErr := tx.Rollback(ctx); rErr != nil {
			return errors.Join(err, rErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

func InTxResult[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := InTx(ctx, func(txCtx context.Context) error {
		var innerErr error
		out, innerErr = fn(txCtx)
		return innerErr
	})
	return out, err
}
