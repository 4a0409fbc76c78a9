package middleware

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/tenantgate/modules/core/services"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/httpapi"
	"github.com/iota-uz/tenantgate/pkg/identity"
	"github.com/iota-uz/tenantgate/pkg/metrics"
	"github.com/iota-uz/tenantgate/pkg/serrors"
)

const (
	CodeMissingAuthorization    = "missing_authorization"
	CodeMissingOrganizationID   = "missing_organization_id"
	CodeSessionVerification     = "session_verification_failed"
	CodeNotOrganizationMember   = "not_organization_member"
	CodeSubscriptionSuspended   = "subscription_suspended"
	CodeSubscriptionCancelled   = "subscription_cancelled"
	CodeInsufficientPermissions = "insufficient_permissions"
	CodeFeatureNotAvailable     = "feature_not_available"
	CodeTenantScopeUnavailable  = "tenant_scope_unavailable"
	CodeIdentityUnavailable     = services.CodeIdentityUnavailable
)

var (
	ErrMissingAuthorization    = serrors.NewError(CodeMissingAuthorization, "A bearer token is required", http.StatusUnauthorized)
	ErrMissingOrganizationID   = serrors.NewError(CodeMissingOrganizationID, "An organization id is required", http.StatusUnauthorized)
	ErrSessionVerification     = serrors.NewError(CodeSessionVerification, "Session could not be verified", http.StatusUnauthorized)
	ErrNotOrganizationMember   = serrors.NewError(CodeNotOrganizationMember, "You are not a member of this organization", http.StatusForbidden)
	ErrSubscriptionSuspended   = serrors.NewError(CodeSubscriptionSuspended, "Your subscription is suspended", http.StatusForbidden)
	ErrSubscriptionCancelled   = serrors.NewError(CodeSubscriptionCancelled, "Your subscription has been cancelled", http.StatusForbidden)
	ErrInsufficientPermissions = serrors.NewError(CodeInsufficientPermissions, "Your role does not allow this action", http.StatusForbidden)
	ErrFeatureNotAvailable     = serrors.NewError(CodeFeatureNotAvailable, "This feature is not included in your plan", http.StatusForbidden)
	ErrTenantScopeUnavailable  = serrors.NewError(CodeTenantScopeUnavailable, "Workspace storage is temporarily unavailable", http.StatusServiceUnavailable)
)

// identityError maps provider failures. Unavailability is reported as
// retryable; everything else becomes denial so that no error path lets a
// request through.
func identityError(err error, denial *serrors.BaseError) error {
	if errors.Is(err, identity.ErrProviderUnavailable) {
		return services.ErrIdentityUnavailable.WithCause(err)
	}
	return denial.WithCause(err)
}

// deny ends the request with err rendered as an error envelope.
func deny(w http.ResponseWriter, r *http.Request, err error) {
	logger := composables.UseLoggerOrDefault(r.Context())
	code := httpapi.CodeInternal
	if be, ok := serrors.As(err); ok {
		code = be.Code
		logger.WithError(err).WithField("code", code).Warn("request denied")
	} else {
		logger.WithError(err).Error("request pipeline failed")
	}
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("pipeline.denial", code))
	metrics.RecordDenial(code)
	if err := httpapi.WriteServiceError(w, err); err != nil {
		logger.WithError(err).Error("failed to write error response")
	}
}
