package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/core/infrastructure/persistence/models"
)

// toDomainTenant rejects rows carrying values outside the closed enums
// instead of guessing a default.
func toDomainTenant(m *models.Tenant, catalog *tenant.Catalog) (*tenant.Tenant, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("tenant %q: %w", m.ID, err)
	}
	tier, err := tenant.NewTier(m.Tier)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: %w", id, err)
	}
	status, err := tenant.NewStatus(m.Status)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: %w", id, err)
	}
	if err := tenant.ValidateSchemaName(m.SchemaName); err != nil {
		return nil, fmt.Errorf("tenant %s: %w", id, err)
	}

	rawFeatures := map[string]bool{}
	if len(m.FeatureOverrides) > 0 {
		if err := json.Unmarshal(m.FeatureOverrides, &rawFeatures); err != nil {
			return nil, fmt.Errorf("tenant %s feature overrides: %w", id, err)
		}
	}
	features, err := tenant.ParseFeatureSet(rawFeatures)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: %w", id, err)
	}

	rawQuotas := map[string]int{}
	if len(m.QuotaOverrides) > 0 {
		if err := json.Unmarshal(m.QuotaOverrides, &rawQuotas); err != nil {
			return nil, fmt.Errorf("tenant %s quota overrides: %w", id, err)
		}
	}
	quotas, err := tenant.ParseQuotas(rawQuotas)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: %w", id, err)
	}

	return tenant.New(m.OrganizationID, m.Name,
		tenant.WithID(id),
		tenant.WithSchemaName(m.SchemaName),
		tenant.WithTier(tier),
		tenant.WithStatus(status),
		tenant.WithPlan(catalog.Plan(tier)),
		tenant.WithFeatureOverrides(features),
		tenant.WithQuotaOverrides(quotas),
		tenant.WithCreatedAt(m.CreatedAt),
		tenant.WithUpdatedAt(m.UpdatedAt),
		tenant.WithDeletedAt(m.DeletedAt),
	), nil
}

func toDBTenant(t *tenant.Tenant) (*models.Tenant, error) {
	features, err := json.Marshal(t.FeatureOverrides().Raw())
	if err != nil {
		return nil, err
	}
	quotas, err := json.Marshal(t.QuotaOverrides().Raw())
	if err != nil {
		return nil, err
	}
	return &models.Tenant{
		ID:               t.ID().String(),
		OrganizationID:   t.OrganizationID(),
		SchemaName:       t.SchemaName(),
		Name:             t.Name(),
		Tier:             string(t.Tier()),
		Status:           string(t.Status()),
		FeatureOverrides: features,
		QuotaOverrides:   quotas,
		CreatedAt:        t.CreatedAt(),
		UpdatedAt:        t.UpdatedAt(),
		DeletedAt:        t.DeletedAt(),
	}, nil
}

func toDomainUser(m *models.User) (user.User, error) {
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", m.ID, err)
	}
	role, err := user.NewRole(m.Role)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", m.ID, err)
	}
	return user.New(tenantID, m.ExternalID, role,
		user.WithID(m.ID),
		user.WithEmail(m.Email),
		user.WithDisplayName(m.DisplayName),
		user.WithCreatedAt(m.CreatedAt),
		user.WithUpdatedAt(m.UpdatedAt),
	), nil
}
