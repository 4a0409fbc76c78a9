package dtos

import (
	"sort"
	"time"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
)

type TenantDTO struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organizationId"`
	Name           string         `json:"name"`
	Tier           string         `json:"tier"`
	Status         string         `json:"status"`
	Features       []string       `json:"features"`
	Quotas         map[string]int `json:"quotas"`
}

type UserDTO struct {
	ID          uint      `json:"id"`
	ExternalID  string    `json:"externalId"`
	Role        string    `json:"role"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type MeResponse struct {
	Tenant TenantDTO `json:"tenant"`
	User   UserDTO   `json:"user"`
}

// TenantToDTO lists only enabled features, sorted. Quotas are the effective
// limits with -1 meaning unlimited.
func TenantToDTO(t *tenant.Tenant) TenantDTO {
	features := make([]string, 0, len(tenant.Features))
	for _, f := range tenant.Features {
		if t.HasFeature(f) {
			features = append(features, string(f))
		}
	}
	sort.Strings(features)

	quotas := make(map[string]int, len(tenant.EntityTypes))
	for _, e := range tenant.EntityTypes {
		limit, ok := t.Quota(e)
		if !ok {
			limit = 0
		}
		quotas[string(e)] = limit
	}

	return TenantDTO{
		ID:             t.ID().String(),
		OrganizationID: t.OrganizationID(),
		Name:           t.Name(),
		Tier:           string(t.Tier()),
		Status:         string(t.Status()),
		Features:       features,
		Quotas:         quotas,
	}
}

func UserToDTO(u user.User) UserDTO {
	return UserDTO{
		ID:          u.ID(),
		ExternalID:  u.ExternalID(),
		Role:        string(u.Role()),
		Email:       u.Email(),
		DisplayName: u.DisplayName(),
		CreatedAt:   u.CreatedAt(),
	}
}
