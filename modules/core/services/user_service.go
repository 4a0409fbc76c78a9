package services

import (
	"context"
	"errors"
	"time"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/core/infrastructure/persistence"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/eventbus"
	"github.com/iota-uz/tenantgate/pkg/identity"
	"github.com/iota-uz/tenantgate/pkg/metrics"
)

type UserService struct {
	repo      user.Repository
	limits    *EntityLimitService
	publisher eventbus.EventBus
}

func NewUserService(repo user.Repository, limits *EntityLimitService, publisher eventbus.EventBus) *UserService {
	return &UserService{
		repo:      repo,
		limits:    limits,
		publisher: publisher,
	}
}

func (s *UserService) GetByExternalID(ctx context.Context, t *tenant.Tenant, externalID string) (user.User, error) {
	return s.repo.GetByExternalID(ctx, t.ID(), externalID)
}

// Provision returns the local user for membership inside t, creating it on
// first sight. The row is keyed by (tenant, external id) and an existing row
// keeps its stored role. When two requests race on the first login, the loser
// re-reads the winner's row.
func (s *UserService) Provision(ctx context.Context, t *tenant.Tenant, m *identity.Membership) (user.User, error) {
	role, err := user.RoleFromExternal(m.Role)
	if err != nil {
		metrics.RecordProvisioning("rejected")
		return nil, ErrUnknownOrganizationRole.WithCause(err)
	}

	existing, err := s.repo.GetByExternalID(ctx, t.ID(), m.UserID)
	if err == nil {
		// Roles are managed inside the application after the first login, so
		// the membership role is not synced in either direction. Removing the
		// caller from the organization is what revokes access.
		if existing.Role() != role {
			composables.UseLoggerOrDefault(ctx).
				WithField("user_id", existing.ID()).
				WithField("stored_role", existing.Role()).
				WithField("membership_role", role).
				Debug("stored role differs from membership role")
		}
		metrics.RecordProvisioning("existing")
		return existing, nil
	}
	if !errors.Is(err, persistence.ErrUserNotFound) {
		return nil, err
	}

	if s.limits != nil {
		if err := s.limits.CheckTenant(ctx, t, tenant.EntityUsers); err != nil {
			metrics.RecordProvisioning("rejected")
			return nil, err
		}
	}

	now := time.Now()
	created, err := s.repo.Create(ctx, user.New(t.ID(), m.UserID, role,
		user.WithEmail(m.Email),
		user.WithDisplayName(m.DisplayName),
		user.WithCreatedAt(now),
		user.WithUpdatedAt(now),
	))
	if errors.Is(err, persistence.ErrUserExists) {
		metrics.RecordProvisioning("conflict")
		return s.repo.GetByExternalID(ctx, t.ID(), m.UserID)
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordProvisioning("created")
	composables.UseLoggerOrDefault(ctx).
		WithField("tenant_id", t.ID()).
		WithField("user_id", created.ID()).
		Info("provisioned user")
	if s.publisher != nil {
		s.publisher.Publish(&user.ProvisionedEvent{Result: created, Timestamp: now})
	}
	return created, nil
}

func (s *UserService) Count(ctx context.Context, t *tenant.Tenant) (int64, error) {
	return s.repo.Count(ctx, t.ID())
}
