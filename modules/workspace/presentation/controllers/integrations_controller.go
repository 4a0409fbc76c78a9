package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/workspace/domain/entities/integration"
	"github.com/iota-uz/tenantgate/modules/workspace/services"
	"github.com/iota-uz/tenantgate/pkg/application"
	"github.com/iota-uz/tenantgate/pkg/middleware"
)

type IntegrationsController struct {
	basePath     string
	stack        *middleware.TenantStack
	integrations *services.IntegrationService
}

func NewIntegrationsController(stack *middleware.TenantStack, integrations *services.IntegrationService) application.Controller {
	return &IntegrationsController{basePath: "/api/integrations", stack: stack, integrations: integrations}
}

func (c *IntegrationsController) Key() string {
	return c.basePath
}

// Register mounts the routes. Connecting a new integration needs an admin,
// a plan with API access or custom integrations, and free integration quota.
func (c *IntegrationsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.stack.Pipeline...)

	router.Handle("", middleware.Chain(http.HandlerFunc(c.list),
		middleware.RequireRole(user.RoleViewer),
	)).Methods(http.MethodGet)
	router.Handle("", middleware.Chain(http.HandlerFunc(c.create),
		middleware.RequireRole(user.RoleAdmin),
		c.stack.Guards.RequireAnyFeature(tenant.FeatureAPIAccess, tenant.FeatureCustomIntegrations),
		c.stack.Guards.RequireEntityCapacity(tenant.EntityIntegrations),
	)).Methods(http.MethodPost)
	router.Handle("/{id:[0-9]+}", middleware.Chain(http.HandlerFunc(c.delete),
		middleware.RequireRole(user.RoleAdmin),
	)).Methods(http.MethodDelete)
}

func (c *IntegrationsController) list(w http.ResponseWriter, r *http.Request) {
	integrations, err := c.integrations.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, map[string]any{"items": integrations})
}

func (c *IntegrationsController) create(w http.ResponseWriter, r *http.Request) {
	dto := &integration.CreateDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	created, err := c.integrations.Create(r.Context(), dto)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, created)
}

func (c *IntegrationsController) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.integrations.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
