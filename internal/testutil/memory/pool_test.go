package memory

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/tenantgate/pkg/constants"
)

func TestPool_SendBatchFailsInsteadOfPanicking(t *testing.T) {
	ctx := context.Background()
	p := NewPool()

	results := p.SendBatch(ctx, &pgx.Batch{})
	require.NotNil(t, results)
	_, err := results.Exec()
	require.ErrorIs(t, err, errNoSQL)
	require.NoError(t, results.Close())

	conn, err := p.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()
	results = conn.SendBatch(ctx, &pgx.Batch{})
	require.NotNil(t, results)
	_, err = results.Query()
	require.ErrorIs(t, err, errNoSQL)
	require.ErrorIs(t, results.QueryRow().Scan(), errNoSQL)

	results = NewTx().SendBatch(ctx, &pgx.Batch{})
	require.NotNil(t, results)
	_, err = results.Exec()
	require.ErrorIs(t, err, errNoSQL)
}

func TestConn_CountsFollowSearchPath(t *testing.T) {
	ctx := context.Background()
	p := NewPool()
	p.SetCount("tenant_a", "products", 3)

	c, err := p.Acquire(ctx)
	require.NoError(t, err)
	conn := c.(*Conn)
	assert.Equal(t, constants.SharedSchema, conn.SearchPath())

	var n int64
	require.NoError(t, conn.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&n))
	assert.Zero(t, n)

	_, err = conn.Exec(ctx, "SELECT set_config('search_path', $1, false)", `"tenant_a"`)
	require.NoError(t, err)
	require.NoError(t, conn.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&n))
	assert.Equal(t, int64(3), n)

	_, err = conn.Exec(ctx, "RESET search_path")
	require.NoError(t, err)
	assert.Equal(t, constants.SharedSchema, conn.SearchPath())

	conn.Release()
	assert.Equal(t, 0, p.Outstanding())
}
