package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/core/infrastructure/persistence"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/eventbus"
	"github.com/iota-uz/tenantgate/pkg/identity"
	"github.com/iota-uz/tenantgate/pkg/serrors"
)

type TenantService struct {
	repo        tenant.Repository
	users       user.Repository
	provisioner tenant.SchemaProvisioner
	catalog     *tenant.Catalog
	// orgs is nil when onboarding should not confirm the organization.
	orgs      identity.Provider
	publisher eventbus.EventBus
}

func NewTenantService(
	repo tenant.Repository,
	users user.Repository,
	provisioner tenant.SchemaProvisioner,
	catalog *tenant.Catalog,
	orgs identity.Provider,
	publisher eventbus.EventBus,
) *TenantService {
	if catalog == nil {
		catalog = tenant.DefaultCatalog()
	}
	return &TenantService{
		repo:        repo,
		users:       users,
		provisioner: provisioner,
		catalog:     catalog,
		orgs:        orgs,
		publisher:   publisher,
	}
}

func (s *TenantService) Catalog() *tenant.Catalog {
	return s.catalog
}

// GetByOrganizationID resolves the live tenant of an organization. It reads
// the shared schema and never touches tenant data.
func (s *TenantService) GetByOrganizationID(ctx context.Context, organizationID string) (*tenant.Tenant, error) {
	t, err := s.repo.GetByOrganizationID(ctx, organizationID)
	if errors.Is(err, persistence.ErrTenantNotFound) {
		return nil, ErrTenantNotFound.WithCause(err)
	}
	return t, err
}

func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, persistence.ErrTenantNotFound) {
		return nil, ErrTenantNotFound.WithCause(err)
	}
	return t, err
}

func (s *TenantService) List(ctx context.Context, includeDeleted bool) ([]*tenant.Tenant, error) {
	return s.repo.List(ctx, includeDeleted)
}

// Onboard creates the tenant row and its isolation schema in one transaction.
func (s *TenantService) Onboard(ctx context.Context, dto *tenant.CreateDTO) (*tenant.Tenant, error) {
	if errs, ok := dto.Ok(); !ok {
		return nil, ErrInvalidTenantInput.WithMessage("Invalid tenant input: " + serrors.FormatFields(errs))
	}

	if s.orgs != nil {
		if _, err := s.orgs.GetOrganization(ctx, dto.OrganizationID); err != nil {
			switch {
			case errors.Is(err, identity.ErrOrganizationNotFound):
				return nil, ErrOrganizationNotFound.WithCause(err)
			case errors.Is(err, identity.ErrProviderUnavailable):
				return nil, ErrIdentityUnavailable.WithCause(err)
			}
			return nil, err
		}
	}

	entity, err := dto.ToEntity(s.catalog)
	if err != nil {
		return nil, ErrInvalidTenantInput.WithCause(err)
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*tenant.Tenant, error) {
		if _, err := s.repo.GetByOrganizationID(txCtx, entity.OrganizationID()); err == nil {
			return nil, ErrTenantExists
		} else if !errors.Is(err, persistence.ErrTenantNotFound) {
			return nil, err
		}
		created, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return nil, err
		}
		if err := s.provisioner.Provision(txCtx, created.SchemaName()); err != nil {
			return nil, err
		}
		return created, nil
	})
	if errors.Is(err, persistence.ErrTenantExists) {
		return nil, ErrTenantExists.WithCause(err)
	}
	if err != nil {
		return nil, err
	}

	s.publish(&tenant.CreatedEvent{Result: created, Timestamp: time.Now()})
	return created, nil
}

func (s *TenantService) ChangePlan(ctx context.Context, id uuid.UUID, dto *tenant.PlanDTO) (*tenant.Tenant, error) {
	if errs, ok := dto.Ok(); !ok {
		return nil, ErrInvalidTenantInput.WithMessage("Invalid tenant input: " + serrors.FormatFields(errs))
	}
	tier, err := tenant.NewTier(dto.Tier)
	if err != nil {
		return nil, ErrInvalidTenantInput.WithCause(err)
	}
	var features tenant.FeatureSet
	if dto.FeatureOverrides != nil {
		if features, err = tenant.ParseFeatureSet(dto.FeatureOverrides); err != nil {
			return nil, ErrInvalidTenantInput.WithCause(err)
		}
	}
	var quotas tenant.Quotas
	if dto.QuotaOverrides != nil {
		if quotas, err = tenant.ParseQuotas(dto.QuotaOverrides); err != nil {
			return nil, ErrInvalidTenantInput.WithCause(err)
		}
	}

	var previous tenant.Tier
	updated, err := s.mutate(ctx, id, func(t *tenant.Tenant) error {
		previous = t.Tier()
		t.ChangePlan(s.catalog.Plan(tier), features, quotas)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(&tenant.PlanChangedEvent{Tenant: updated, PreviousTier: previous, Timestamp: time.Now()})
	return updated, nil
}

func (s *TenantService) Suspend(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.changeStatus(ctx, id, (*tenant.Tenant).Suspend)
}

func (s *TenantService) Reactivate(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.changeStatus(ctx, id, (*tenant.Tenant).Reactivate)
}

func (s *TenantService) Cancel(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.changeStatus(ctx, id, (*tenant.Tenant).Cancel)
}

// Offboard soft-deletes the tenant, or with hard removes its users, its row
// and its schema in one transaction.
func (s *TenantService) Offboard(ctx context.Context, id uuid.UUID, hard bool) error {
	var removed *tenant.Tenant
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		t, err := s.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		removed = t
		if !hard {
			if t.DeletedAt() != nil {
				return nil
			}
			t.MarkDeleted(time.Now())
			_, err := s.repo.Update(txCtx, t)
			return err
		}
		if err := s.users.DeleteByTenant(txCtx, t.ID()); err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, t.ID()); err != nil {
			return err
		}
		return s.provisioner.Drop(txCtx, t.SchemaName())
	})
	if err != nil {
		return err
	}
	s.publish(&tenant.DeletedEvent{Tenant: removed, Hard: hard, Timestamp: time.Now()})
	return nil
}

func (s *TenantService) changeStatus(ctx context.Context, id uuid.UUID, transition func(*tenant.Tenant) error) (*tenant.Tenant, error) {
	var previous tenant.Status
	updated, err := s.mutate(ctx, id, func(t *tenant.Tenant) error {
		previous = t.Status()
		if err := transition(t); err != nil {
			return ErrInvalidStatusTransition.WithMessage(err.Error()).WithCause(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(&tenant.StatusChangedEvent{Tenant: updated, PreviousStatus: previous, Timestamp: time.Now()})
	return updated, nil
}

func (s *TenantService) mutate(ctx context.Context, id uuid.UUID, fn func(*tenant.Tenant) error) (*tenant.Tenant, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*tenant.Tenant, error) {
		t, err := s.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if t.DeletedAt() != nil {
			return nil, ErrTenantNotFound
		}
		if err := fn(t); err != nil {
			return nil, err
		}
		return s.repo.Update(txCtx, t)
	})
}

func (s *TenantService) publish(event any) {
	if s.publisher != nil {
		s.publisher.Publish(event)
	}
}
