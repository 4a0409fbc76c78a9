package services

import (
	"net/http"

	"github.com/iota-uz/tenantgate/pkg/serrors"
)

const (
	CodeTenantNotFound          = "tenant_not_found"
	CodeTenantExists            = "tenant_already_exists"
	CodeOrganizationNotFound    = "organization_not_found"
	CodeInvalidTenantInput      = "invalid_tenant_input"
	CodeInvalidStatusTransition = "invalid_status_transition"
	CodeUnknownOrganizationRole = "unknown_organization_role"
	CodeEntityLimitReached      = "entity_limit_reached"
	CodeIdentityUnavailable     = "identity_provider_unavailable"
)

var (
	// ErrTenantNotFound is returned for unknown and unprovisioned organizations alike.
	ErrTenantNotFound          = serrors.NewError(CodeTenantNotFound, "No workspace is provisioned for this organization", http.StatusNotFound)
	ErrTenantExists            = serrors.NewError(CodeTenantExists, "A workspace already exists for this organization", http.StatusConflict)
	ErrOrganizationNotFound    = serrors.NewError(CodeOrganizationNotFound, "Organization does not exist at the identity provider", http.StatusUnprocessableEntity)
	ErrInvalidTenantInput      = serrors.NewError(CodeInvalidTenantInput, "Invalid tenant input", http.StatusBadRequest)
	ErrInvalidStatusTransition = serrors.NewError(CodeInvalidStatusTransition, "Subscription status cannot change this way", http.StatusConflict)
	ErrUnknownOrganizationRole = serrors.NewError(CodeUnknownOrganizationRole, "Your organization role is not recognized", http.StatusForbidden)
	ErrEntityLimitReached      = serrors.NewError(CodeEntityLimitReached, "Your plan limit has been reached", http.StatusForbidden)
)

var ErrIdentityUnavailable = serrors.NewError(CodeIdentityUnavailable, "Identity provider is temporarily unavailable", http.StatusServiceUnavailable).
	WithRemedy(serrors.Remedy{Retryable: true})
