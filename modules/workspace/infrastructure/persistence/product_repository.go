package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/iota-uz/tenantgate/modules/workspace/domain/entities/product"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/repo"
)

var (
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrDuplicateSKU    = fmt.Errorf("product sku already exists")
)

// Table names are left unqualified; they resolve against the tenant schema
// the connection is bound to.
const (
	productListQuery   = `SELECT id, name, sku, price_cents, created_at, updated_at FROM products ORDER BY id`
	productInsertQuery = `INSERT INTO products (name, sku, price_cents) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	productDeleteQuery = `DELETE FROM products WHERE id = $1`
	productPurgeQuery  = `DELETE FROM products`
)

type ProductRepository struct{}

func NewProductRepository() product.Repository {
	return &ProductRepository{}
}

func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	tx, err := composables.UseTenantTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, productListQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query products")
	}
	defer rows.Close()

	products := make([]product.Product, 0)
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.PriceCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan product row")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate product rows")
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, p product.Product) (product.Product, error) {
	tx, err := composables.UseTenantTx(ctx)
	if err != nil {
		return product.Product{}, err
	}
	if err := tx.QueryRow(ctx, productInsertQuery, p.Name, p.SKU, p.PriceCents).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if repo.IsUniqueViolation(err, "products_sku_key") {
			return product.Product{}, ErrDuplicateSKU
		}
		return product.Product{}, errors.Wrap(err, "failed to insert product")
	}
	return p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTenantTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, productDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete product")
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) DeleteAll(ctx context.Context) (int64, error) {
	tx, err := composables.UseTenantTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, productPurgeQuery)
	if err != nil {
		return 0, errors.Wrap(err, "failed to purge products")
	}
	return tag.RowsAffected(), nil
}
