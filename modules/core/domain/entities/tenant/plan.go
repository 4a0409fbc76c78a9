package tenant

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTier       = errors.New("invalid subscription tier")
	ErrInvalidStatus     = errors.New("invalid subscription status")
	ErrUnknownFeature    = errors.New("unknown feature")
	ErrUnknownEntityType = errors.New("unknown entity type")
)

type Tier string

const (
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// Tiers lists every tier from cheapest to most expensive.
var Tiers = []Tier{TierStarter, TierProfessional, TierEnterprise}

func NewTier(v string) (Tier, error) {
	t := Tier(v)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, v)
	}
	return t, nil
}

func (t Tier) IsValid() bool {
	switch t {
	case TierStarter, TierProfessional, TierEnterprise:
		return true
	}
	return false
}

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
)

func NewStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, v)
	}
	return s, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusCancelled:
		return true
	}
	return false
}

type Feature string

const (
	FeatureAIForecasting      Feature = "ai_forecasting"
	FeatureAdvancedAnalytics  Feature = "advanced_analytics"
	FeatureWorkingCapital     Feature = "working_capital"
	FeatureMultiEntity        Feature = "multi_entity"
	FeatureAPIAccess          Feature = "api_access"
	FeatureCustomIntegrations Feature = "custom_integrations"
	FeaturePrioritySupport    Feature = "priority_support"
)

var Features = []Feature{
	FeatureAIForecasting,
	FeatureAdvancedAnalytics,
	FeatureWorkingCapital,
	FeatureMultiEntity,
	FeatureAPIAccess,
	FeatureCustomIntegrations,
	FeaturePrioritySupport,
}

func NewFeature(v string) (Feature, error) {
	f := Feature(v)
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFeature, v)
	}
	return f, nil
}

func (f Feature) IsValid() bool {
	for _, known := range Features {
		if f == known {
			return true
		}
	}
	return false
}

type EntityType string

const (
	EntityProducts     EntityType = "products"
	EntityUsers        EntityType = "users"
	EntityIntegrations EntityType = "integrations"
)

var EntityTypes = []EntityType{EntityProducts, EntityUsers, EntityIntegrations}

func NewEntityType(v string) (EntityType, error) {
	e := EntityType(v)
	if !e.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityType, v)
	}
	return e, nil
}

func (e EntityType) IsValid() bool {
	switch e {
	case EntityProducts, EntityUsers, EntityIntegrations:
		return true
	}
	return false
}

// Unlimited is the quota value that never denies creation.
const Unlimited = -1

type FeatureSet map[Feature]bool

// Enabled reports false for features that are absent from the set.
func (s FeatureSet) Enabled(f Feature) bool {
	return s[f]
}

// Overlay returns a copy of s with every entry of overrides applied on top.
func (s FeatureSet) Overlay(overrides FeatureSet) FeatureSet {
	out := make(FeatureSet, len(s)+len(overrides))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func ParseFeatureSet(raw map[string]bool) (FeatureSet, error) {
	out := make(FeatureSet, len(raw))
	for k, v := range raw {
		f, err := NewFeature(k)
		if err != nil {
			return nil, err
		}
		out[f] = v
	}
	return out, nil
}

func (s FeatureSet) Raw() map[string]bool {
	out := make(map[string]bool, len(s))
	for k, v := range s {
		out[string(k)] = v
	}
	return out
}

type Quotas map[EntityType]int

// Limit returns the quota for e. A missing entry is reported with ok=false
// and must be treated as "no allowance".
func (q Quotas) Limit(e EntityType) (limit int, ok bool) {
	limit, ok = q[e]
	return limit, ok
}

func (q Quotas) Overlay(overrides Quotas) Quotas {
	out := make(Quotas, len(q)+len(overrides))
	for k, v := range q {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func ParseQuotas(raw map[string]int) (Quotas, error) {
	out := make(Quotas, len(raw))
	for k, v := range raw {
		e, err := NewEntityType(k)
		if err != nil {
			return nil, err
		}
		if v < Unlimited {
			return nil, fmt.Errorf("invalid quota %d for %s", v, e)
		}
		out[e] = v
	}
	return out, nil
}

func (q Quotas) Raw() map[string]int {
	out := make(map[string]int, len(q))
	for k, v := range q {
		out[string(k)] = v
	}
	return out
}

// Plan is the default entitlement bundle of a tier.
type Plan struct {
	Tier     Tier
	Features FeatureSet
	Quotas   Quotas
}
