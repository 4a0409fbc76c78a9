package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/tenantgate/pkg/composables"
)

// stubConn is a pooled connection whose statements are answered by the
// configured funcs. Exec defaults to a one-row command tag.
type stubConn struct {
	execFunc     func(sql string, args ...any) (pgconn.CommandTag, error)
	queryFunc    func(sql string, args ...any) (pgx.Rows, error)
	queryRowFunc func(sql string, args ...any) pgx.Row
	executed     []string
}

func (c *stubConn) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}

func (c *stubConn) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (c *stubConn) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	c.executed = append(c.executed, sql)
	if c.execFunc == nil || sql == `RESET search_path` || len(c.executed) == 1 {
		return pgconn.NewCommandTag("SELECT 1"), nil
	}
	return c.execFunc(sql, arguments...)
}

func (c *stubConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.executed = append(c.executed, sql)
	if c.queryFunc == nil {
		return nil, errors.New("query not implemented")
	}
	return c.queryFunc(sql, args...)
}

func (c *stubConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	c.executed = append(c.executed, sql)
	if c.queryRowFunc == nil {
		return stubRow{scan: func(dest ...any) error { return errors.New("query row not implemented") }}
	}
	return c.queryRowFunc(sql, args...)
}

func (c *stubConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("begin not implemented")
}

func (c *stubConn) Release() {}

func (c *stubConn) Discard(ctx context.Context) error { return nil }

type stubPool struct {
	*stubConn
}

func (p stubPool) Acquire(ctx context.Context) (composables.Conn, error) {
	return p.stubConn, nil
}

func (p stubPool) Ping(ctx context.Context) error { return nil }

// inTenant runs fn with conn bound as the tenant handle of "tenant_test".
func inTenant(t *testing.T, conn *stubConn, fn func(ctx context.Context)) {
	t.Helper()
	err := composables.WithTenantSchema(context.Background(), stubPool{conn}, "tenant_test", func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
	require.NoError(t, err)
}

type stubRows struct {
	data [][]any
	idx  int
	err  error
}

func (r *stubRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("destination length %d does not match row length %d", len(dest), len(row))
	}
	for i, target := range dest {
		switch v := target.(type) {
		case *uint:
			*v = row[i].(uint)
		case *int64:
			*v = row[i].(int64)
		case *string:
			*v = row[i].(string)
		case *time.Time:
			*v = row[i].(time.Time)
		default:
			return fmt.Errorf("unsupported scan target %T", target)
		}
	}
	return nil
}

func (r *stubRows) Values() ([]any, error)                       { return r.data[r.idx-1], nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Err() error                                   { return r.err }
func (r *stubRows) Close()                                       {}
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	return r.scan(dest...)
}
