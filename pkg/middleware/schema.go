package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/tenantgate/pkg/composables"
)

// BindTenantSchema runs the rest of the request on one connection scoped to
// the tenant's isolation schema. When pool is nil the pool in the request
// context is used.
func BindTenantSchema(pool composables.Pool) mux.MiddlewareFunc {
	return pipelineStep("bind_tenant_schema", func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		t, err := composables.UseTenant(r.Context())
		if err != nil {
			deny(w, r, err)
			return
		}
		p := pool
		if p == nil {
			if p, err = composables.UsePool(r.Context()); err != nil {
				deny(w, r, err)
				return
			}
		}

		err = composables.WithTenantSchema(r.Context(), p, t.SchemaName(), func(ctx context.Context) error {
			next.ServeHTTP(w, r.WithContext(ctx))
			return nil
		})
		switch {
		case err == nil:
		case errors.Is(err, composables.ErrSchemaAlreadyBound), errors.Is(err, composables.ErrEmptySchema):
			deny(w, r, err)
		default:
			deny(w, r, ErrTenantScopeUnavailable.WithCause(err))
		}
	})
}
