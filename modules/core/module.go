package core

import (
	"errors"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/core/handlers"
	"github.com/iota-uz/tenantgate/modules/core/infrastructure/persistence"
	"github.com/iota-uz/tenantgate/modules/core/presentation/controllers"
	"github.com/iota-uz/tenantgate/modules/core/services"
	"github.com/iota-uz/tenantgate/pkg/application"
	"github.com/iota-uz/tenantgate/pkg/configuration"
	"github.com/iota-uz/tenantgate/pkg/identity"
	"github.com/iota-uz/tenantgate/pkg/middleware"
)

type ModuleOptions struct {
	Identity identity.Provider
	// Catalog defaults to tenant.DefaultCatalog when nil.
	Catalog *tenant.Catalog
	Tenancy configuration.TenancyOptions
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{
		options: opts,
	}
}

type Module struct {
	options *ModuleOptions
}

// Register wires the tenant services and publishes a *middleware.TenantStack
// for modules that serve tenant-scoped routes.
func (m *Module) Register(app application.Application) error {
	if m.options.Identity == nil {
		return errors.New("core: identity provider is required")
	}
	catalog := m.options.Catalog
	if catalog == nil {
		catalog = tenant.DefaultCatalog()
	}
	tenancy := m.options.Tenancy

	tenantRepo := persistence.NewTenantRepository(catalog)
	userRepo := persistence.NewUserRepository()

	limitService := services.NewEntityLimitService(persistence.NewEntityCountRepository(), tenancy.BillingUpgradeURL)
	// The server only resolves tenants; onboarding and its organization
	// check live in tenantctl.
	tenantService := services.NewTenantService(
		tenantRepo,
		userRepo,
		persistence.NewSchemaProvisioner(),
		catalog,
		nil,
		app.EventPublisher(),
	)
	userService := services.NewUserService(userRepo, limitService, app.EventPublisher())
	handlers.RegisterAuditHandlers(app.EventPublisher(), app.Logger())

	pipeline, err := middleware.TenantPipeline(middleware.PipelineOptions{
		Identity:           m.options.Identity,
		Tenants:            tenantService,
		Users:              userService,
		Pool:               app.DB(),
		OrganizationHeader: tenancy.OrganizationHeader,
		BillingURL:         tenancy.BillingUpgradeURL,
		SupportURL:         tenancy.SupportURL,
	})
	if err != nil {
		return err
	}
	stack := &middleware.TenantStack{
		Pipeline: pipeline,
		Guards:   middleware.NewGuards(catalog, tenancy.BillingUpgradeURL, limitService),
	}

	app.RegisterServices(
		tenantService,
		userService,
		limitService,
		stack,
	)
	app.RegisterControllers(
		controllers.NewHealthController(app),
		controllers.NewMeController(pipeline),
	)
	return nil
}
