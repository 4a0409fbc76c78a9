package tenant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog maps each tier to its default plan.
type Catalog struct {
	plans map[Tier]Plan
}

func DefaultCatalog() *Catalog {
	return &Catalog{plans: map[Tier]Plan{
		TierStarter: {
			Tier: TierStarter,
			Features: FeatureSet{
				FeatureAIForecasting:      false,
				FeatureAdvancedAnalytics:  false,
				FeatureWorkingCapital:     true,
				FeatureMultiEntity:        false,
				FeatureAPIAccess:          false,
				FeatureCustomIntegrations: false,
				FeaturePrioritySupport:    false,
			},
			Quotas: Quotas{EntityProducts: 100, EntityUsers: 3, EntityIntegrations: 1},
		},
		TierProfessional: {
			Tier: TierProfessional,
			Features: FeatureSet{
				FeatureAIForecasting:      true,
				FeatureAdvancedAnalytics:  true,
				FeatureWorkingCapital:     true,
				FeatureMultiEntity:        false,
				FeatureAPIAccess:          true,
				FeatureCustomIntegrations: false,
				FeaturePrioritySupport:    false,
			},
			Quotas: Quotas{EntityProducts: 5000, EntityUsers: 25, EntityIntegrations: 5},
		},
		TierEnterprise: {
			Tier: TierEnterprise,
			Features: FeatureSet{
				FeatureAIForecasting:      true,
				FeatureAdvancedAnalytics:  true,
				FeatureWorkingCapital:     true,
				FeatureMultiEntity:        true,
				FeatureAPIAccess:          true,
				FeatureCustomIntegrations: true,
				FeaturePrioritySupport:    true,
			},
			Quotas: Quotas{EntityProducts: Unlimited, EntityUsers: Unlimited, EntityIntegrations: Unlimited},
		},
	}}
}

// Plan returns the default plan of t. Unknown tiers yield an empty plan that
// enables nothing and allows nothing.
func (c *Catalog) Plan(t Tier) Plan {
	if p, ok := c.plans[t]; ok {
		return p
	}
	return Plan{Tier: t, Features: FeatureSet{}, Quotas: Quotas{}}
}

// LowestTierWith returns the cheapest tier whose defaults enable f.
func (c *Catalog) LowestTierWith(f Feature) (Tier, bool) {
	for _, t := range Tiers {
		if p, ok := c.plans[t]; ok && p.Features.Enabled(f) {
			return t, true
		}
	}
	return "", false
}

type catalogFile struct {
	Plans map[string]struct {
		Features map[string]bool `yaml:"features"`
		Quotas   map[string]int  `yaml:"quotas"`
	} `yaml:"plans"`
}

// LoadCatalog reads plan defaults from a YAML file. Tiers missing from the
// file keep the built-in defaults.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}
	catalog := DefaultCatalog()
	for name, raw := range file.Plans {
		tier, err := NewTier(name)
		if err != nil {
			return nil, err
		}
		features, err := ParseFeatureSet(raw.Features)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", tier, err)
		}
		quotas, err := ParseQuotas(raw.Quotas)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", tier, err)
		}
		catalog.plans[tier] = Plan{Tier: tier, Features: features, Quotas: quotas}
	}
	return catalog, nil
}
