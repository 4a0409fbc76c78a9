package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/serrors"
)

type EntityCounter interface {
	Count(ctx context.Context, tenantID uuid.UUID, entity tenant.EntityType) (int64, error)
}

// EntityLimitService compares live entity counts against the tenant's
// effective quota. The check and the subsequent insert are not atomic, so
// concurrent creates can overshoot a quota by the number of racing requests.
type EntityLimitService struct {
	counter    EntityCounter
	upgradeURL string
}

func NewEntityLimitService(counter EntityCounter, upgradeURL string) *EntityLimitService {
	return &EntityLimitService{counter: counter, upgradeURL: upgradeURL}
}

// Check evaluates entity against the tenant resolved for the request.
func (s *EntityLimitService) Check(ctx context.Context, entity tenant.EntityType) error {
	t, err := composables.UseTenant(ctx)
	if err != nil {
		return err
	}
	return s.CheckTenant(ctx, t, entity)
}

func (s *EntityLimitService) CheckTenant(ctx context.Context, t *tenant.Tenant, entity tenant.EntityType) error {
	if !entity.IsValid() {
		return fmt.Errorf("%w: %q", tenant.ErrUnknownEntityType, entity)
	}
	// a quota missing from the plan allows nothing
	limit, ok := t.Quota(entity)
	if !ok {
		limit = 0
	}
	if limit == tenant.Unlimited {
		return nil
	}

	count, err := s.counter.Count(ctx, t.ID(), entity)
	if err != nil {
		return err
	}
	if count < int64(limit) {
		return nil
	}
	return ErrEntityLimitReached.
		WithMessage(fmt.Sprintf("Your %s plan allows %d %s", t.Tier(), limit, entity)).
		WithRemedy(serrors.Remedy{
			UpgradeURL:   s.upgradeURL,
			CurrentTier:  string(t.Tier()),
			EntityType:   string(entity),
			Limit:        serrors.IntPtr(limit),
			CurrentCount: serrors.IntPtr(int(count)),
		})
}
