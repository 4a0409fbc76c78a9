package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/core/infrastructure/persistence"
)

type TenantRepository struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]*tenant.Tenant
	lookups int
}

func NewTenantRepository(tenants ...*tenant.Tenant) *TenantRepository {
	r := &TenantRepository{tenants: map[uuid.UUID]*tenant.Tenant{}}
	for _, t := range tenants {
		r.tenants[t.ID()] = t
	}
	return r
}

// Lookups counts GetByOrganizationID calls.
func (r *TenantRepository) Lookups() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookups
}

// Put replaces the stored tenant, e.g. to simulate a plan change between requests.
func (r *TenantRepository) Put(t *tenant.Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[t.ID()] = t
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, persistence.ErrTenantNotFound
	}
	return clone(t), nil
}

func (r *TenantRepository) GetByOrganizationID(ctx context.Context, organizationID string) (*tenant.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	for _, t := range r.tenants {
		if t.OrganizationID() == organizationID && t.DeletedAt() == nil {
			return clone(t), nil
		}
	}
	return nil, persistence.ErrTenantNotFound
}

func (r *TenantRepository) List(ctx context.Context, includeDeleted bool) ([]*tenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*tenant.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		if includeDeleted || t.DeletedAt() == nil {
			out = append(out, clone(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tenants {
		if existing.SchemaName() == t.SchemaName() ||
			(existing.OrganizationID() == t.OrganizationID() && existing.DeletedAt() == nil) {
			return nil, persistence.ErrTenantExists
		}
	}
	r.tenants[t.ID()] = clone(t)
	return clone(t), nil
}

func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[t.ID()]; !ok {
		return nil, persistence.ErrTenantNotFound
	}
	r.tenants[t.ID()] = clone(t)
	return clone(t), nil
}

func (r *TenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[id]; !ok {
		return persistence.ErrTenantNotFound
	}
	delete(r.tenants, id)
	return nil
}

func clone(t *tenant.Tenant) *tenant.Tenant {
	return tenant.New(t.OrganizationID(), t.Name(),
		tenant.WithID(t.ID()),
		tenant.WithSchemaName(t.SchemaName()),
		tenant.WithTier(t.Tier()),
		tenant.WithStatus(t.Status()),
		tenant.WithPlan(t.Plan()),
		tenant.WithFeatureOverrides(t.FeatureOverrides()),
		tenant.WithQuotaOverrides(t.QuotaOverrides()),
		tenant.WithCreatedAt(t.CreatedAt()),
		tenant.WithUpdatedAt(t.UpdatedAt()),
		tenant.WithDeletedAt(t.DeletedAt()),
	)
}
