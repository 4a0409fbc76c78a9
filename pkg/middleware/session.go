package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/identity"
)

const DefaultOrganizationHeader = "X-Organization-ID"

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AuthenticateSession verifies the bearer token with the identity provider
// and stores the session in the request context.
func AuthenticateSession(provider identity.Provider) mux.MiddlewareFunc {
	return pipelineStep("authenticate_session", func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		token, ok := bearerToken(r)
		if !ok {
			deny(w, r, ErrMissingAuthorization)
			return
		}
		session, err := provider.VerifySession(r.Context(), token)
		if err != nil {
			deny(w, r, identityError(err, ErrSessionVerification))
			return
		}
		next.ServeHTTP(w, r.WithContext(composables.WithSession(r.Context(), session)))
	})
}

// ResolveMembership asks the identity provider, on every request, whether the
// session's user belongs to the organization named by header.
func ResolveMembership(provider identity.Provider, header string) mux.MiddlewareFunc {
	if header == "" {
		header = DefaultOrganizationHeader
	}
	return pipelineStep("resolve_membership", func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		organizationID := strings.TrimSpace(r.Header.Get(header))
		if organizationID == "" {
			deny(w, r, ErrMissingOrganizationID)
			return
		}
		session, err := composables.UseSession(r.Context())
		if err != nil {
			deny(w, r, err)
			return
		}
		membership, err := provider.GetMembership(r.Context(), session.UserID, organizationID)
		if err != nil {
			deny(w, r, identityError(err, ErrNotOrganizationMember))
			return
		}
		if membership.OrganizationID != organizationID || membership.UserID != session.UserID {
			deny(w, r, ErrNotOrganizationMember)
			return
		}
		ctx := composables.WithMembership(r.Context(), membership)
		logger := composables.UseLoggerOrDefault(ctx).
			WithField("organization_id", organizationID).
			WithField("external_user_id", session.UserID)
		next.ServeHTTP(w, r.WithContext(composables.WithLogger(ctx, logger)))
	})
}
