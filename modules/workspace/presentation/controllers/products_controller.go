package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/workspace/domain/entities/product"
	"github.com/iota-uz/tenantgate/modules/workspace/services"
	"github.com/iota-uz/tenantgate/pkg/application"
	"github.com/iota-uz/tenantgate/pkg/middleware"
)

type ProductsController struct {
	basePath string
	stack    *middleware.TenantStack
	products *services.ProductService
}

func NewProductsController(stack *middleware.TenantStack, products *services.ProductService) application.Controller {
	return &ProductsController{basePath: "/api/products", stack: stack, products: products}
}

func (c *ProductsController) Key() string {
	return c.basePath
}

func (c *ProductsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.stack.Pipeline...)

	router.Handle("", middleware.Chain(http.HandlerFunc(c.list),
		middleware.RequireRole(user.RoleViewer),
	)).Methods(http.MethodGet)
	router.Handle("", middleware.Chain(http.HandlerFunc(c.create),
		middleware.RequireRole(user.RoleMember),
		c.stack.Guards.RequireEntityCapacity(tenant.EntityProducts),
	)).Methods(http.MethodPost)
	router.Handle("", middleware.Chain(http.HandlerFunc(c.purge),
		middleware.RequireExactRole(user.RoleOwner),
	)).Methods(http.MethodDelete)
	router.Handle("/{id:[0-9]+}", middleware.Chain(http.HandlerFunc(c.delete),
		middleware.RequireRole(user.RoleAdmin),
	)).Methods(http.MethodDelete)
}

func (c *ProductsController) list(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, map[string]any{"items": products})
}

func (c *ProductsController) create(w http.ResponseWriter, r *http.Request) {
	dto := &product.CreateDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	created, err := c.products.Create(r.Context(), dto)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, created)
}

func (c *ProductsController) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.products.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ProductsController) purge(w http.ResponseWriter, r *http.Request) {
	n, err := c.products.Purge(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, map[string]int64{"deleted": n})
}
