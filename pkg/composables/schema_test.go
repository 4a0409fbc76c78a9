package composables

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTenantSchema_SetsSearchPathFirstAndResetsOnRelease(t *testing.T) {
	conn := &stubConn{}
	pool := &stubPool{conns: []*stubConn{conn}}

	err := WithTenantSchema(context.Background(), pool, "tenant_abc", func(ctx context.Context) error {
		tx, err := UseTenantTx(ctx)
		require.NoError(t, err)
		require.Same(t, conn, tx)

		binding, ok := UseSchemaBinding(ctx)
		require.True(t, ok)
		require.Equal(t, "tenant_abc", binding.Schema)

		_, err = tx.Exec(ctx, "SELECT COUNT(*) FROM products")
		return err
	})
	require.NoError(t, err)

	require.Equal(t, []string{setSearchPathQuery, "SELECT COUNT(*) FROM products", resetSearchPathQuery}, conn.statements)
	require.Equal(t, []any{`"tenant_abc"`}, conn.firstArgs)
	require.True(t, conn.released)
	require.False(t, conn.discarded)
}

func TestWithTenantSchema_ResetsEvenWhenHandlerFails(t *testing.T) {
	conn := &stubConn{}
	pool := &stubPool{conns: []*stubConn{conn}}
	boom := errors.New("boom")

	err := WithTenantSchema(context.Background(), pool, "tenant_abc", func(ctx context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, resetSearchPathQuery, conn.statements[len(conn.statements)-1])
	require.True(t, conn.released)
}

func TestWithTenantSchema_DiscardsConnectionWhenResetFails(t *testing.T) {
	conn := &stubConn{failOn: resetSearchPathQuery}
	pool := &stubPool{conns: []*stubConn{conn}}

	err := WithTenantSchema(context.Background(), pool, "tenant_abc", func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	require.False(t, conn.released)
	require.True(t, conn.discarded)
}

func TestWithTenantSchema_DiscardsConnectionWhenBindFails(t *testing.T) {
	conn := &stubConn{failOn: setSearchPathQuery}
	pool := &stubPool{conns: []*stubConn{conn}}
	called := false

	err := WithTenantSchema(context.Background(), pool, "tenant_abc", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
	require.True(t, conn.discarded)
	require.False(t, conn.released)
}

func TestWithTenantSchema_RejectsNestedBinding(t *testing.T) {
	pool := &stubPool{conns: []*stubConn{{}, {}}}

	err := WithTenantSchema(context.Background(), pool, "tenant_a", func(ctx context.Context) error {
		return WithTenantSchema(ctx, pool, "tenant_b", func(context.Context) error { return nil })
	})
	require.ErrorIs(t, err, ErrSchemaAlreadyBound)
	require.Equal(t, 1, pool.acquired)
}

func TestWithTenantSchema_ConcurrentRequestsNeverShareBinding(t *testing.T) {
	pool := &stubPool{}
	schemas := []string{"tenant_a", "tenant_b", "tenant_c", "tenant_d"}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		schema := schemas[i%len(schemas)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithTenantSchema(context.Background(), pool, schema, func(ctx context.Context) error {
				binding, ok := UseSchemaBinding(ctx)
				if !ok || binding.Schema != schema {
					return errors.New("binding leaked across requests")
				}
				tx, err := UseTenantTx(ctx)
				if err != nil {
					return err
				}
				if got := tx.(*stubConn).schema(); got != `"`+schema+`"` {
					return errors.New("connection bound to " + got)
				}
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestUseTenantTx_FailsClosedWithoutBinding(t *testing.T) {
	ctx := WithPool(context.Background(), &stubPool{})
	_, err := UseTenantTx(ctx)
	require.ErrorIs(t, err, ErrNoTenantScope)

	ctx = WithTx(ctx, &stubConn{})
	_, err = UseTenantTx(ctx)
	require.ErrorIs(t, err, ErrNoTenantScope)
}

func TestUseTx_FallsBackToPool(t *testing.T) {
	pool := &stubPool{}
	tx, err := UseTx(WithPool(context.Background(), pool))
	require.NoError(t, err)
	require.Same(t, pool, tx)

	_, err = UseTx(context.Background())
	require.ErrorIs(t, err, ErrNoPool)
}

type stubPool struct {
	mu       sync.Mutex
	conns    []*stubConn
	acquired int
}

func (p *stubPool) Acquire(ctx context.Context) (Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquired++
	if len(p.conns) == 0 {
		return &stubConn{}, nil
	}
	c := p.conns[0]
	p.conns = p.conns[1:]
	return c, nil
}

func (p *stubPool) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("begin not implemented")
}

func (p *stubPool) Ping(ctx context.Context) error { return nil }

func (p *stubPool) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}

func (p *stubPool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	var results pgx.BatchResults
	return results
}

func (p *stubPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (p *stubPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not implemented")
}

func (p *stubPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

type stubConn struct {
	mu         sync.Mutex
	statements []string
	firstArgs  []any
	failOn     string
	released   bool
	discarded  bool
}

func (c *stubConn) schema() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.firstArgs) == 0 {
		return ""
	}
	return c.firstArgs[0].(string)
}

func (c *stubConn) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.statements) == 0 {
		c.firstArgs = arguments
	}
	c.statements = append(c.statements, sql)
	if sql == c.failOn {
		return pgconn.CommandTag{}, errors.New("exec failed")
	}
	return pgconn.CommandTag{}, nil
}

func (c *stubConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("begin not implemented")
}

func (c *stubConn) Release() { c.released = true }

func (c *stubConn) Discard(ctx context.Context) error {
	c.discarded = true
	return nil
}

func (c *stubConn) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}

func (c *stubConn) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	var results pgx.BatchResults
	return results
}

func (c *stubConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not implemented")
}

func (c *stubConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
