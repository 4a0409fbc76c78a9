package services

import (
	"context"
	"errors"

	"github.com/iota-uz/tenantgate/modules/workspace/domain/entities/product"
	"github.com/iota-uz/tenantgate/modules/workspace/infrastructure/persistence"
	"github.com/iota-uz/tenantgate/pkg/composables"
)

type ProductService struct {
	repo product.Repository
}

func NewProductService(repo product.Repository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) List(ctx context.Context) ([]product.Product, error) {
	return s.repo.List(ctx)
}

func (s *ProductService) Create(ctx context.Context, dto *product.CreateDTO) (product.Product, error) {
	if errs, ok := dto.Ok(); !ok {
		return product.Product{}, invalidInput(errs)
	}
	created, err := s.repo.Create(ctx, dto.ToEntity())
	if errors.Is(err, persistence.ErrDuplicateSKU) {
		return product.Product{}, ErrDuplicateSKU.WithCause(err)
	}
	if err != nil {
		return product.Product{}, err
	}
	composables.UseLoggerOrDefault(ctx).WithField("product_id", created.ID).Info("product created")
	return created, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, persistence.ErrProductNotFound) {
		return ErrProductNotFound.WithCause(err)
	}
	return err
}

// Purge removes every product of the tenant.
func (s *ProductService) Purge(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	composables.UseLoggerOrDefault(ctx).WithField("deleted", n).Warn("products purged")
	return n, nil
}
