package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/tenantgate/modules/workspace/domain/entities/product"
	"github.com/iota-uz/tenantgate/pkg/composables"
)

func TestProductRepository_RequiresTenantScope(t *testing.T) {
	repo := NewProductRepository()
	ctx := composables.WithTx(context.Background(), &stubConn{})

	_, err := repo.List(ctx)
	require.ErrorIs(t, err, composables.ErrNoTenantScope)
	_, err = repo.Create(ctx, product.Product{Name: "Widget", SKU: "W-1"})
	require.ErrorIs(t, err, composables.ErrNoTenantScope)
	require.ErrorIs(t, repo.Delete(ctx, 1), composables.ErrNoTenantScope)
}

func TestProductRepository_ListUsesUnqualifiedTable(t *testing.T) {
	now := time.Now()
	conn := &stubConn{
		queryFunc: func(sql string, args ...any) (pgx.Rows, error) {
			return &stubRows{data: [][]any{
				{uint(1), "Widget", "W-1", int64(1500), now, now},
				{uint(2), "Gadget", "G-1", int64(0), now, now},
			}}, nil
		},
	}

	inTenant(t, conn, func(ctx context.Context) {
		products, err := NewProductRepository().List(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "W-1", products[0].SKU)
		assert.Equal(t, int64(1500), products[0].PriceCents)
	})

	assert.Equal(t, productListQuery, conn.executed[1])
	assert.NotContains(t, productListQuery, ".products")
}

func TestProductRepository_CreateMapsDuplicateSKU(t *testing.T) {
	conn := &stubConn{
		queryRowFunc: func(sql string, args ...any) pgx.Row {
			return stubRow{scan: func(dest ...any) error {
				return &pgconn.PgError{Code: "23505", ConstraintName: "products_sku_key"}
			}}
		},
	}
	inTenant(t, conn, func(ctx context.Context) {
		_, err := NewProductRepository().Create(ctx, product.Product{Name: "Widget", SKU: "W-1"})
		require.ErrorIs(t, err, ErrDuplicateSKU)
	})
}

func TestProductRepository_CreateReturnsStoredRow(t *testing.T) {
	now := time.Now()
	conn := &stubConn{
		queryRowFunc: func(sql string, args ...any) pgx.Row {
			return stubRow{scan: func(dest ...any) error {
				*dest[0].(*uint) = 42
				*dest[1].(*time.Time) = now
				*dest[2].(*time.Time) = now
				return nil
			}}
		},
	}
	inTenant(t, conn, func(ctx context.Context) {
		p, err := NewProductRepository().Create(ctx, product.Product{Name: "Widget", SKU: "W-1", PriceCents: 10})
		require.NoError(t, err)
		assert.Equal(t, uint(42), p.ID)
		assert.Equal(t, now, p.CreatedAt)
	})
}

func TestProductRepository_DeleteMissing(t *testing.T) {
	conn := &stubConn{
		execFunc: func(sql string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}
	inTenant(t, conn, func(ctx context.Context) {
		require.ErrorIs(t, NewProductRepository().Delete(ctx, 7), ErrProductNotFound)
	})
}

func TestProductRepository_DeleteAllReportsCount(t *testing.T) {
	conn := &stubConn{
		execFunc: func(sql string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 12"), nil
		},
	}
	inTenant(t, conn, func(ctx context.Context) {
		n, err := NewProductRepository().DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(12), n)
	})
}
