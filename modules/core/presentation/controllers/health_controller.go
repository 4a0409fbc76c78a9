package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/tenantgate/pkg/application"
	"github.com/iota-uz/tenantgate/pkg/httpapi"
)

const healthCheckTimeout = 2 * time.Second

type HealthController struct {
	app application.Application
}

func NewHealthController(app application.Application) application.Controller {
	return &HealthController{app: app}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.check).Methods(http.MethodGet)
}

func (c *HealthController) check(w http.ResponseWriter, r *http.Request) {
	pool := c.app.DB()
	if pool == nil {
		_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "database_unavailable", "database is not configured", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		c.app.Logger().WithError(err).Warn("health check failed")
		_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "database_unavailable", "database is unreachable", nil)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
