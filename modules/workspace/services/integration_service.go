package services

import (
	"context"
	"errors"

	"github.com/iota-uz/tenantgate/modules/workspace/domain/entities/integration"
	"github.com/iota-uz/tenantgate/modules/workspace/infrastructure/persistence"
)

type IntegrationService struct {
	repo integration.Repository
}

func NewIntegrationService(repo integration.Repository) *IntegrationService {
	return &IntegrationService{repo: repo}
}

func (s *IntegrationService) List(ctx context.Context) ([]integration.Integration, error) {
	return s.repo.List(ctx)
}

func (s *IntegrationService) Create(ctx context.Context, dto *integration.CreateDTO) (integration.Integration, error) {
	if errs, ok := dto.Ok(); !ok {
		return integration.Integration{}, invalidInput(errs)
	}
	created, err := s.repo.Create(ctx, dto.ToEntity())
	if errors.Is(err, persistence.ErrIntegrationExists) {
		return integration.Integration{}, ErrIntegrationExists.WithCause(err)
	}
	return created, err
}

func (s *IntegrationService) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, persistence.ErrIntegrationNotFound) {
		return ErrIntegrationNotFound.WithCause(err)
	}
	return err
}
