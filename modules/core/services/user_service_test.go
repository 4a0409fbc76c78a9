package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/core/services"
	"github.com/iota-uz/tenantgate/pkg/identity"
)

func membership(userID, role string) *identity.Membership {
	return &identity.Membership{OrganizationID: "org_1", UserID: userID, Role: role, Email: userID + "@acme.test"}
}

func TestUserService_Provision_CreatesOnce(t *testing.T) {
	f := setup(t)
	acme := newTenant(tenant.TierProfessional)

	var events []*user.ProvisionedEvent
	f.bus.Subscribe(func(e *user.ProvisionedEvent) { events = append(events, e) })

	first, err := f.userSvc.Provision(f.ctx, acme, membership("user_1", "org:admin"))
	require.NoError(t, err)
	require.Equal(t, user.RoleAdmin, first.Role())
	require.Equal(t, acme.ID(), first.TenantID())

	second, err := f.userSvc.Provision(f.ctx, acme, membership("user_1", "org:admin"))
	require.NoError(t, err)
	require.Equal(t, first.ID(), second.ID())
	require.Len(t, f.users.All(), 1)
	require.Len(t, events, 1)
}

func TestUserService_Provision_KeepsStoredRole(t *testing.T) {
	f := setup(t)
	acme := newTenant(tenant.TierProfessional)

	_, err := f.userSvc.Provision(f.ctx, acme, membership("user_1", "org:member"))
	require.NoError(t, err)

	again, err := f.userSvc.Provision(f.ctx, acme, membership("user_1", "org:owner"))
	require.NoError(t, err)
	require.Equal(t, user.RoleMember, again.Role())
}

func TestUserService_Provision_MembershipDemotionDoesNotRewriteRole(t *testing.T) {
	f := setup(t)
	acme := newTenant(tenant.TierProfessional)

	owner, err := f.userSvc.Provision(f.ctx, acme, membership("user_1", "org:owner"))
	require.NoError(t, err)

	again, err := f.userSvc.Provision(f.ctx, acme, membership("user_1", "org:member"))
	require.NoError(t, err)
	require.Equal(t, owner.ID(), again.ID())
	require.Equal(t, user.RoleOwner, again.Role())
}

func TestUserService_Provision_SameExternalIDInTwoTenants(t *testing.T) {
	f := setup(t)
	a := newTenant(tenant.TierProfessional)
	b := tenant.New("org_b", "Beta", tenant.WithTier(tenant.TierProfessional), tenant.WithPlan(tenant.DefaultCatalog().Plan(tenant.TierProfessional)))

	ua, err := f.userSvc.Provision(f.ctx, a, membership("user_1", "member"))
	require.NoError(t, err)
	ub, err := f.userSvc.Provision(f.ctx, b, membership("user_1", "member"))
	require.NoError(t, err)

	require.NotEqual(t, ua.ID(), ub.ID())
	require.Equal(t, a.ID(), ua.TenantID())
	require.Equal(t, b.ID(), ub.TenantID())
}

func TestUserService_Provision_UnknownRole(t *testing.T) {
	f := setup(t)
	_, err := f.userSvc.Provision(f.ctx, newTenant(tenant.TierStarter), membership("user_1", "org:superuser"))
	require.ErrorIs(t, err, services.ErrUnknownOrganizationRole)
	require.Empty(t, f.users.All())
}

func TestUserService_Provision_UsersQuota(t *testing.T) {
	f := setup(t)
	starter := newTenant(tenant.TierStarter)
	for _, id := range []string{"u1", "u2", "u3"} {
		_, err := f.userSvc.Provision(f.ctx, starter, membership(id, "member"))
		require.NoError(t, err)
	}

	_, err := f.userSvc.Provision(f.ctx, starter, membership("u4", "member"))
	require.ErrorIs(t, err, services.ErrEntityLimitReached)

	// existing users are not affected by a full quota
	_, err = f.userSvc.Provision(f.ctx, starter, membership("u2", "member"))
	require.NoError(t, err)
}

func TestUserService_Provision_ConcurrentFirstLogin(t *testing.T) {
	f := setup(t)
	acme := newTenant(tenant.TierEnterprise)

	const n = 25
	ids := make([]uint, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := f.userSvc.Provision(context.Background(), acme, membership("user_1", "org:member"))
			if assert.NoError(t, err) {
				ids[i] = u.ID()
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, f.users.All(), 1)
	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
}
