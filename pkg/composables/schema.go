package composables

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/tenantgate/pkg/constants"
	"github.com/iota-uz/tenantgate/pkg/metrics"
	"github.com/iota-uz/tenantgate/pkg/repo"
)

var (
	ErrNoTenantScope      = errors.New("no tenant schema bound to context")
	ErrSchemaAlreadyBound = errors.New("a tenant schema is already bound to this request")
	ErrEmptySchema        = errors.New("tenant schema name is empty")
)

const (
	setSearchPathQuery   = `SELECT set_config('search_path', $1, false)`
	resetSearchPathQuery = `RESET search_path`

	releaseTimeout = 5 * time.Second
)

// SchemaBinding records which isolation schema the request's connection is scoped to.
type SchemaBinding struct {
	Schema string
	conn   Conn
}

// WithTenantSchema checks one connection out of pool, scopes it to schema and
// runs fn with that connection as the only database handle in ctx. Setting
// search_path is the first statement issued on the connection. When fn
// returns, search_path is reset before the connection goes back to the pool;
// a connection whose reset fails is closed instead.
func WithTenantSchema(ctx context.Context, pool Pool, schema string, fn func(context.Context) error) error {
	if schema == "" {
		return ErrEmptySchema
	}
	if _, ok := UseSchemaBinding(ctx); ok {
		return ErrSchemaAlreadyBound
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, setSearchPathQuery, pgx.Identifier{schema}.Sanitize()); err != nil {
		releaseConn(ctx, conn, false)
		return fmt.Errorf("bind search_path to %s: %w", schema, err)
	}

	defer releaseConn(ctx, conn, true)

	binding := &SchemaBinding{Schema: schema, conn: conn}
	bound := context.WithValue(WithTx(ctx, conn), constants.SchemaKey, binding)
	return fn(bound)
}

func releaseConn(ctx context.Context, conn Conn, reset bool) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if reset {
		_, err := conn.Exec(cleanupCtx, resetSearchPathQuery)
		if err == nil {
			conn.Release()
			return
		}
		loggerOrDefault(ctx).WithError(err).Warn("failed to reset search_path; discarding connection")
	}
	metrics.RecordDiscardedConnection()
	if err := conn.Discard(cleanupCtx); err != nil {
		loggerOrDefault(ctx).WithError(err).Warn("failed to close discarded connection")
	}
}

func UseSchemaBinding(ctx context.Context) (*SchemaBinding, bool) {
	b, ok := ctx.Value(constants.SchemaKey).(*SchemaBinding)
	return b, ok && b != nil
}

// UseTenantTx returns the handle scoped to the request's tenant schema. It
// never falls back to the shared pool.
func UseTenantTx(ctx context.Context) (repo.Tx, error) {
	if _, ok := UseSchemaBinding(ctx); !ok {
		return nil, ErrNoTenantScope
	}
	tx, ok := ctx.Value(constants.TxKey).(repo.Tx)
	if !ok || tx == nil {
		return nil, ErrNoTenantScope
	}
	return tx, nil
}
