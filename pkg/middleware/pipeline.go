package middleware

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/identity"
)

type PipelineOptions struct {
	Identity identity.Provider
	Tenants  TenantResolver
	Users    UserProvisioner
	// Pool is used for schema binding; when nil the pool in the request context is used.
	Pool               composables.Pool
	OrganizationHeader string
	BillingURL         string
	SupportURL         string
}

func (o PipelineOptions) validate() error {
	var errs []error
	if o.Identity == nil {
		errs = append(errs, errors.New("identity provider is required"))
	}
	if o.Tenants == nil {
		errs = append(errs, errors.New("tenant resolver is required"))
	}
	if o.Users == nil {
		errs = append(errs, errors.New("user provisioner is required"))
	}
	return errors.Join(errs...)
}

// TenantPipeline returns the middlewares every tenant-scoped route runs
// through, in order: session, membership, tenant, status, schema, user.
// Route-level guards go after these.
func TenantPipeline(opts PipelineOptions) ([]mux.MiddlewareFunc, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return []mux.MiddlewareFunc{
		AuthenticateSession(opts.Identity),
		ResolveMembership(opts.Identity, opts.OrganizationHeader),
		ResolveTenant(opts.Tenants),
		GuardTenantStatus(opts.BillingURL, opts.SupportURL),
		BindTenantSchema(opts.Pool),
		ProvisionUser(opts.Users),
	}, nil
}

// TenantStack is the tenant pipeline together with the guards routes add on top of it.
type TenantStack struct {
	Pipeline []mux.MiddlewareFunc
	Guards   *Guards
}

// Chain wraps h so that mws run in the order given.
func Chain(h http.Handler, mws ...mux.MiddlewareFunc) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
