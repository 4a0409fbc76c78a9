package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/core/services"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/serrors"
)

func TestEntityLimitService_Check(t *testing.T) {
	starter := newTenant(tenant.TierStarter)

	cases := []struct {
		name    string
		tenant  *tenant.Tenant
		entity  tenant.EntityType
		count   int64
		allowed bool
	}{
		{"below limit", starter, tenant.EntityProducts, 99, true},
		{"at limit", starter, tenant.EntityProducts, 100, false},
		{"above limit", starter, tenant.EntityIntegrations, 3, false},
		{"unlimited", newTenant(tenant.TierEnterprise), tenant.EntityProducts, 1_000_000, true},
		{"override raises limit", newTenant(tenant.TierStarter, tenant.WithQuotaOverrides(tenant.Quotas{tenant.EntityProducts: 500})), tenant.EntityProducts, 100, true},
		{"override to unlimited", newTenant(tenant.TierStarter, tenant.WithQuotaOverrides(tenant.Quotas{tenant.EntityIntegrations: tenant.Unlimited})), tenant.EntityIntegrations, 50, true},
		{"zero quota", newTenant(tenant.TierStarter, tenant.WithQuotaOverrides(tenant.Quotas{tenant.EntityProducts: 0})), tenant.EntityProducts, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t)
			f.counter.Set(tc.tenant.ID(), tc.entity, tc.count)
			ctx := composables.WithTenant(f.ctx, tc.tenant)

			err := f.limits.Check(ctx, tc.entity)
			if tc.allowed {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, services.ErrEntityLimitReached)
			be, ok := serrors.As(err)
			require.True(t, ok)
			require.Equal(t, 403, be.Status)
			require.Equal(t, string(tc.entity), be.Remedy.EntityType)
			require.Equal(t, int(tc.count), *be.Remedy.CurrentCount)
			require.NotNil(t, be.Remedy.Limit)
			require.Equal(t, "https://billing.test/upgrade", be.Remedy.UpgradeURL)
		})
	}
}

func TestEntityLimitService_MissingQuotaAllowsNothing(t *testing.T) {
	f := setup(t)
	bare := tenant.New("org_bare", "Bare")

	err := f.limits.CheckTenant(f.ctx, bare, tenant.EntityProducts)
	require.ErrorIs(t, err, services.ErrEntityLimitReached)
	be, _ := serrors.As(err)
	require.Equal(t, 0, *be.Remedy.Limit)
}

func TestEntityLimitService_RequiresResolvedTenant(t *testing.T) {
	f := setup(t)
	require.ErrorIs(t, f.limits.Check(f.ctx, tenant.EntityProducts), composables.ErrNoTenant)
}

func TestEntityLimitService_UnknownEntity(t *testing.T) {
	f := setup(t)
	err := f.limits.CheckTenant(f.ctx, newTenant(tenant.TierEnterprise), tenant.EntityType("widgets"))
	require.ErrorIs(t, err, tenant.ErrUnknownEntityType)
}
