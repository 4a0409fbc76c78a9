package services_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/internal/testutil/memory"
	"github.com/iota-uz/tenantgate/modules/core/services"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/eventbus"
	"github.com/iota-uz/tenantgate/pkg/identity/inmem"
	"github.com/iota-uz/tenantgate/pkg/logging"
)

type fixture struct {
	ctx         context.Context
	tx          *memory.Tx
	tenants     *memory.TenantRepository
	users       *memory.UserRepository
	counter     *memory.EntityCounter
	provisioner *memory.SchemaProvisioner
	idp         *inmem.Provider
	bus         eventbus.EventBus
	limits      *services.EntityLimitService
	tenantSvc   *services.TenantService
	userSvc     *services.UserService
}

func setup(t *testing.T, seed ...*tenant.Tenant) *fixture {
	t.Helper()
	f := &fixture{
		tx:          memory.NewTx(),
		tenants:     memory.NewTenantRepository(seed...),
		users:       memory.NewUserRepository(),
		provisioner: memory.NewSchemaProvisioner(),
		idp:         inmem.New(),
		bus:         eventbus.NewEventPublisher(logging.ConsoleLogger(logrus.ErrorLevel)),
	}
	f.counter = memory.NewEntityCounter(f.users)
	f.limits = services.NewEntityLimitService(f.counter, "https://billing.test/upgrade")
	f.tenantSvc = services.NewTenantService(f.tenants, f.users, f.provisioner, tenant.DefaultCatalog(), f.idp, f.bus)
	f.userSvc = services.NewUserService(f.users, f.limits, f.bus)
	f.ctx = composables.WithTx(context.Background(), f.tx)
	return f
}

func newTenant(tier tenant.Tier, opts ...tenant.Option) *tenant.Tenant {
	opts = append([]tenant.Option{
		tenant.WithTier(tier),
		tenant.WithPlan(tenant.DefaultCatalog().Plan(tier)),
	}, opts...)
	return tenant.New("org_"+string(tier), "Acme", opts...)
}
