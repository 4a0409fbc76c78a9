package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/tenantgate/modules/core/presentation/controllers/dtos"
	"github.com/iota-uz/tenantgate/pkg/application"
	"github.com/iota-uz/tenantgate/pkg/composables"
)

// MeController reports what the tenant pipeline resolved for the caller.
type MeController struct {
	basePath string
	pipeline []mux.MiddlewareFunc
}

func NewMeController(pipeline []mux.MiddlewareFunc) application.Controller {
	return &MeController{basePath: "/api/me", pipeline: pipeline}
}

func (c *MeController) Key() string {
	return c.basePath
}

func (c *MeController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.pipeline...)
	router.HandleFunc("", c.get).Methods(http.MethodGet)
}

func (c *MeController) get(w http.ResponseWriter, r *http.Request) {
	t, err := composables.UseTenant(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	u, err := composables.UseUser(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, &dtos.MeResponse{
		Tenant: dtos.TenantToDTO(t),
		User:   dtos.UserToDTO(u),
	})
}
