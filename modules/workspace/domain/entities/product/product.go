package product

import (
	"context"
	"strings"
	"time"

	"github.com/iota-uz/tenantgate/pkg/constants"
)

// Product is a row of the tenant-scoped products table.
type Product struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku"`
	PriceCents int64     `json:"priceCents"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Repository reads and writes the products of the tenant bound to ctx.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
}

type CreateDTO struct {
	Name       string `json:"name" validate:"required,max=255"`
	SKU        string `json:"sku" validate:"required,max=64"`
	PriceCents int64  `json:"priceCents" validate:"gte=0"`
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Name = strings.TrimSpace(d.Name)
	d.SKU = strings.ToUpper(strings.TrimSpace(d.SKU))
	return constants.ValidationErrors(constants.Validate.Struct(d))
}

func (d *CreateDTO) ToEntity() Product {
	return Product{Name: d.Name, SKU: d.SKU, PriceCents: d.PriceCents}
}
