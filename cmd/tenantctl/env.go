package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/core/handlers"
	"github.com/iota-uz/tenantgate/modules/core/infrastructure/persistence"
	"github.com/iota-uz/tenantgate/modules/core/services"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/configuration"
	"github.com/iota-uz/tenantgate/pkg/database"
	"github.com/iota-uz/tenantgate/pkg/eventbus"
	"github.com/iota-uz/tenantgate/pkg/identity"
	"github.com/iota-uz/tenantgate/pkg/identity/remote"
)

// env is what every lifecycle command runs against.
type env struct {
	ctx     context.Context
	pool    *pgxpool.Pool
	tenants *services.TenantService
}

type envOptions struct {
	// CheckOrganizations wires the identity provider so onboarding confirms
	// the organization exists. VERIFY_ORGANIZATIONS=false overrides it.
	CheckOrganizations bool
}

// organizationVerifier returns the provider onboarding confirms organizations
// with, or nil when the check is off.
func organizationVerifier(conf *configuration.Configuration, check bool) (identity.Provider, error) {
	if !check || !conf.Tenancy.VerifyOrganizations {
		return nil, nil
	}
	client, err := remote.FromConfig(conf.Identity)
	if err != nil {
		return nil, fmt.Errorf("identity client: %w", err)
	}
	return client, nil
}

func openEnv(ctx context.Context, opts envOptions) (*env, error) {
	conf := configuration.Use()
	orgs, err := organizationVerifier(conf, opts.CheckOrganizations)
	if err != nil {
		return nil, err
	}
	pool, err := database.NewPool(ctx, conf.Database)
	if err != nil {
		return nil, err
	}

	catalog := tenant.DefaultCatalog()
	if conf.Tenancy.PlanCatalogPath != "" {
		catalog, err = tenant.LoadCatalog(conf.Tenancy.PlanCatalogPath)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("load plan catalog: %w", err)
		}
	}

	bus := eventbus.NewEventPublisher(conf.Logger())
	handlers.RegisterAuditHandlers(bus, conf.Logger())
	tenants := services.NewTenantService(
		persistence.NewTenantRepository(catalog),
		persistence.NewUserRepository(),
		persistence.NewSchemaProvisioner(),
		catalog,
		orgs,
		bus,
	)
	return &env{
		ctx:     composables.WithPool(ctx, composables.NewPool(pool)),
		pool:    pool,
		tenants: tenants,
	}, nil
}

func (e *env) Close() {
	e.pool.Close()
}

// resolve accepts either a tenant UUID or an organization id.
func (e *env) resolve(ref string) (*tenant.Tenant, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return e.tenants.GetByID(e.ctx, id)
	}
	return e.tenants.GetByOrganizationID(e.ctx, ref)
}
