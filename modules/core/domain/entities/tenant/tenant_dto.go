package tenant

import (
	"strings"

	"github.com/iota-uz/tenantgate/pkg/constants"
)

type CreateDTO struct {
	OrganizationID string `json:"organizationId" validate:"required,max=255"`
	Name           string `json:"name" validate:"required,max=255"`
	Tier           string `json:"tier" validate:"required,oneof=starter professional enterprise"`
}

func (d *CreateDTO) Normalize() {
	d.OrganizationID = strings.TrimSpace(d.OrganizationID)
	d.Name = strings.TrimSpace(d.Name)
	d.Tier = strings.ToLower(strings.TrimSpace(d.Tier))
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()
	return constants.ValidationErrors(constants.Validate.Struct(d))
}

func (d *CreateDTO) ToEntity(catalog *Catalog) (*Tenant, error) {
	tier, err := NewTier(d.Tier)
	if err != nil {
		return nil, err
	}
	return New(d.OrganizationID, d.Name, WithTier(tier), WithPlan(catalog.Plan(tier))), nil
}

type PlanDTO struct {
	Tier             string          `json:"tier" validate:"required,oneof=starter professional enterprise"`
	FeatureOverrides map[string]bool `json:"featureOverrides"`
	QuotaOverrides   map[string]int  `json:"quotaOverrides" validate:"dive,gte=-1"`
}

func (d *PlanDTO) Ok() (map[string]string, bool) {
	d.Tier = strings.ToLower(strings.TrimSpace(d.Tier))
	errs, ok := constants.ValidationErrors(constants.Validate.Struct(d))
	if !ok {
		return errs, false
	}
	if _, err := ParseFeatureSet(d.FeatureOverrides); err != nil {
		return map[string]string{"FeatureOverrides": err.Error()}, false
	}
	if _, err := ParseQuotas(d.QuotaOverrides); err != nil {
		return map[string]string{"QuotaOverrides": err.Error()}, false
	}
	return map[string]string{}, true
}
