package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/serrors"
)

type CapacityChecker interface {
	Check(ctx context.Context, entity tenant.EntityType) error
}

// Guards builds the per-route checks that run after the tenant pipeline.
type Guards struct {
	catalog    *tenant.Catalog
	upgradeURL string
	limits     CapacityChecker
}

func NewGuards(catalog *tenant.Catalog, upgradeURL string, limits CapacityChecker) *Guards {
	if catalog == nil {
		catalog = tenant.DefaultCatalog()
	}
	return &Guards{catalog: catalog, upgradeURL: upgradeURL, limits: limits}
}

// RequireFeature passes when f is enabled in the request tenant's effective feature set.
func (g *Guards) RequireFeature(f tenant.Feature) mux.MiddlewareFunc {
	return g.RequireAnyFeature(f)
}

// RequireAnyFeature passes when at least one of features is enabled.
func (g *Guards) RequireAnyFeature(features ...tenant.Feature) mux.MiddlewareFunc {
	if len(features) == 0 {
		panic("middleware: RequireAnyFeature needs at least one feature")
	}
	names := make([]string, len(features))
	for i, f := range features {
		if !f.IsValid() {
			panic(fmt.Sprintf("middleware: unknown feature %q", f))
		}
		names[i] = string(f)
	}

	return pipelineStep("require_feature", func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		t, err := composables.UseTenant(r.Context())
		if err != nil {
			deny(w, r, err)
			return
		}
		for _, f := range features {
			if t.HasFeature(f) {
				next.ServeHTTP(w, r)
				return
			}
		}
		deny(w, r, ErrFeatureNotAvailable.WithRemedy(serrors.Remedy{
			UpgradeURL:   g.upgradeURL,
			CurrentTier:  string(t.Tier()),
			RequiredTier: g.requiredTier(features),
			Feature:      strings.Join(names, ","),
		}))
	})
}

// requiredTier is the lowest tier whose defaults enable any of features.
func (g *Guards) requiredTier(features []tenant.Feature) string {
	best := ""
	bestRank := len(tenant.Tiers)
	for _, f := range features {
		tier, ok := g.catalog.LowestTierWith(f)
		if !ok {
			continue
		}
		for rank, candidate := range tenant.Tiers {
			if candidate == tier && rank < bestRank {
				best, bestRank = string(tier), rank
			}
		}
	}
	return best
}

// RequireEntityCapacity denies creation once the tenant's quota for entity is used up.
func (g *Guards) RequireEntityCapacity(entity tenant.EntityType) mux.MiddlewareFunc {
	if !entity.IsValid() {
		panic(fmt.Sprintf("middleware: unknown entity type %q", entity))
	}
	return pipelineStep("require_entity_capacity", func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		if g.limits == nil {
			deny(w, r, fmt.Errorf("no entity limit checker configured"))
			return
		}
		if err := g.limits.Check(r.Context(), entity); err != nil {
			deny(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole passes when the caller's role ranks at least min.
func RequireRole(min user.Role) mux.MiddlewareFunc {
	if !min.IsValid() {
		panic(fmt.Sprintf("middleware: unknown role %q", min))
	}
	return roleGuard(min, func(r user.Role) bool { return r.AtLeast(min) })
}

// RequireExactRole passes only for role itself.
func RequireExactRole(role user.Role) mux.MiddlewareFunc {
	if !role.IsValid() {
		panic(fmt.Sprintf("middleware: unknown role %q", role))
	}
	return roleGuard(role, func(r user.Role) bool { return r == role })
}

func roleGuard(required user.Role, allowed func(user.Role) bool) mux.MiddlewareFunc {
	denial := ErrInsufficientPermissions.WithRemedy(serrors.Remedy{RequiredRole: string(required)})
	return pipelineStep("require_role", func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		u, err := composables.UseUser(r.Context())
		if err != nil {
			deny(w, r, err)
			return
		}
		if !u.Role().IsValid() || !allowed(u.Role()) {
			deny(w, r, denial)
			return
		}
		next.ServeHTTP(w, r)
	})
}
