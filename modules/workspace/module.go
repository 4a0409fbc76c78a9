// Package workspace serves the tenant-scoped resources that live inside each
// tenant's isolation schema.
package workspace

import (
	"github.com/iota-uz/tenantgate/modules/workspace/infrastructure/persistence"
	"github.com/iota-uz/tenantgate/modules/workspace/presentation/controllers"
	"github.com/iota-uz/tenantgate/modules/workspace/services"
	"github.com/iota-uz/tenantgate/pkg/application"
	"github.com/iota-uz/tenantgate/pkg/middleware"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

// Register needs the core module's tenant stack and must run after it.
func (m *Module) Register(app application.Application) error {
	stack := app.Service(middleware.TenantStack{}).(*middleware.TenantStack)

	productService := services.NewProductService(persistence.NewProductRepository())
	integrationService := services.NewIntegrationService(persistence.NewIntegrationRepository())
	app.RegisterServices(productService, integrationService)

	app.RegisterControllers(
		controllers.NewProductsController(stack, productService),
		controllers.NewIntegrationsController(stack, integrationService),
	)
	return nil
}
