package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/identity"
)

type UserProvisioner interface {
	Provision(ctx context.Context, t *tenant.Tenant, m *identity.Membership) (user.User, error)
}

// ProvisionUser resolves the caller's local user inside the tenant, creating
// it on first login.
func ProvisionUser(users UserProvisioner) mux.MiddlewareFunc {
	return pipelineStep("provision_user", func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		ctx := r.Context()
		t, err := composables.UseTenant(ctx)
		if err != nil {
			deny(w, r, err)
			return
		}
		membership, err := composables.UseMembership(ctx)
		if err != nil {
			deny(w, r, err)
			return
		}
		u, err := users.Provision(ctx, t, membership)
		if err != nil {
			deny(w, r, err)
			return
		}
		if u.TenantID() != t.ID() {
			deny(w, r, ErrInsufficientPermissions)
			return
		}
		ctx = composables.WithUser(ctx, u)
		logger := composables.UseLoggerOrDefault(ctx).
			WithField("user_id", u.ID()).
			WithField("role", u.Role())
		next.ServeHTTP(w, r.WithContext(composables.WithLogger(ctx, logger)))
	})
}
