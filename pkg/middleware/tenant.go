package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/core/services"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/serrors"
)

type TenantResolver interface {
	GetByOrganizationID(ctx context.Context, organizationID string) (*tenant.Tenant, error)
}

// ResolveTenant loads the tenant of the request's organization from the
// shared schema. Unknown and unprovisioned organizations get the same 404.
func ResolveTenant(tenants TenantResolver) mux.MiddlewareFunc {
	return pipelineStep("resolve_tenant", func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		membership, err := composables.UseMembership(r.Context())
		if err != nil {
			deny(w, r, err)
			return
		}
		t, err := tenants.GetByOrganizationID(r.Context(), membership.OrganizationID)
		if err != nil {
			deny(w, r, err)
			return
		}
		if t == nil || t.DeletedAt() != nil || t.OrganizationID() != membership.OrganizationID {
			deny(w, r, services.ErrTenantNotFound)
			return
		}
		ctx := composables.WithTenant(r.Context(), t)
		logger := composables.UseLoggerOrDefault(ctx).WithField("tenant_id", t.ID().String())
		next.ServeHTTP(w, r.WithContext(composables.WithLogger(ctx, logger)))
	})
}

// GuardTenantStatus rejects tenants whose subscription is not active. It runs
// before any connection is checked out for the tenant.
func GuardTenantStatus(billingURL, supportURL string) mux.MiddlewareFunc {
	suspended := ErrSubscriptionSuspended.WithRemedy(serrors.Remedy{
		Hint:       "Update your billing details to reactivate the subscription",
		UpgradeURL: billingURL,
	})
	cancelledHint := "Contact support to restore access"
	if supportURL != "" {
		cancelledHint = fmt.Sprintf("Contact support at %s to restore access", supportURL)
	}
	cancelled := ErrSubscriptionCancelled.WithRemedy(serrors.Remedy{Hint: cancelledHint})

	return pipelineStep("guard_tenant_status", func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		t, err := composables.UseTenant(r.Context())
		if err != nil {
			deny(w, r, err)
			return
		}
		switch t.Status() {
		case tenant.StatusActive:
			next.ServeHTTP(w, r)
		case tenant.StatusSuspended:
			deny(w, r, suspended)
		case tenant.StatusCancelled:
			deny(w, r, cancelled)
		default:
			deny(w, r, fmt.Errorf("%w: %q", tenant.ErrInvalidStatus, t.Status()))
		}
	})
}
