package tenant

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidTransition = errors.New("invalid subscription status transition")

type Tenant struct {
	id               uuid.UUID
	organizationID   string
	schemaName       string
	name             string
	tier             Tier
	status           Status
	plan             Plan
	featureOverrides FeatureSet
	quotaOverrides   Quotas
	createdAt        time.Time
	updatedAt        time.Time
	deletedAt        *time.Time
}

type Option func(*Tenant)

func WithID(id uuid.UUID) Option {
	return func(t *Tenant) {
		t.id = id
	}
}

func WithSchemaName(name string) Option {
	return func(t *Tenant) {
		t.schemaName = name
	}
}

func WithTier(tier Tier) Option {
	return func(t *Tenant) {
		t.tier = tier
	}
}

func WithStatus(status Status) Option {
	return func(t *Tenant) {
		t.status = status
	}
}

// WithPlan sets the tier defaults the effective feature set and quotas are derived from.
func WithPlan(plan Plan) Option {
	return func(t *Tenant) {
		t.plan = plan
	}
}

func WithFeatureOverrides(overrides FeatureSet) Option {
	return func(t *Tenant) {
		t.featureOverrides = overrides
	}
}

func WithQuotaOverrides(overrides Quotas) Option {
	return func(t *Tenant) {
		t.quotaOverrides = overrides
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(t *Tenant) {
		t.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(t *Tenant) {
		t.updatedAt = updatedAt
	}
}

func WithDeletedAt(deletedAt *time.Time) Option {
	return func(t *Tenant) {
		t.deletedAt = deletedAt
	}
}

func New(organizationID, name string, opts ...Option) *Tenant {
	now := time.Now()
	t := &Tenant{
		id:               uuid.New(),
		organizationID:   organizationID,
		name:             name,
		tier:             TierStarter,
		status:           StatusActive,
		featureOverrides: FeatureSet{},
		quotaOverrides:   Quotas{},
		createdAt:        now,
		updatedAt:        now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.schemaName == "" {
		t.schemaName = SchemaNameFor(t.id)
	}
	if t.plan.Tier == "" {
		t.plan = Plan{Tier: t.tier, Features: FeatureSet{}, Quotas: Quotas{}}
	}
	return t
}

func (t *Tenant) ID() uuid.UUID {
	return t.id
}

func (t *Tenant) OrganizationID() string {
	return t.organizationID
}

func (t *Tenant) SchemaName() string {
	return t.schemaName
}

func (t *Tenant) Name() string {
	return t.name
}

func (t *Tenant) Tier() Tier {
	return t.tier
}

func (t *Tenant) Status() Status {
	return t.status
}

func (t *Tenant) IsActive() bool {
	return t.status == StatusActive && t.deletedAt == nil
}

// Plan returns the tier defaults, without overrides.
func (t *Tenant) Plan() Plan {
	return t.plan
}

// Features is the effective feature set: tier defaults overlaid by per-tenant overrides.
func (t *Tenant) Features() FeatureSet {
	return t.plan.Features.Overlay(t.featureOverrides)
}

func (t *Tenant) HasFeature(f Feature) bool {
	if v, ok := t.featureOverrides[f]; ok {
		return v
	}
	return t.plan.Features.Enabled(f)
}

func (t *Tenant) Quotas() Quotas {
	return t.plan.Quotas.Overlay(t.quotaOverrides)
}

func (t *Tenant) Quota(e EntityType) (int, bool) {
	if v, ok := t.quotaOverrides[e]; ok {
		return v, true
	}
	return t.plan.Quotas.Limit(e)
}

func (t *Tenant) FeatureOverrides() FeatureSet {
	return t.featureOverrides
}

func (t *Tenant) QuotaOverrides() Quotas {
	return t.quotaOverrides
}

func (t *Tenant) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Tenant) UpdatedAt() time.Time {
	return t.updatedAt
}

func (t *Tenant) DeletedAt() *time.Time {
	return t.deletedAt
}

// ChangePlan moves the tenant to plan.Tier and replaces its overrides. Nil
// overrides keep the current ones only while the tier stays the same; a tier
// change starts from the new plan's defaults.
func (t *Tenant) ChangePlan(plan Plan, features FeatureSet, quotas Quotas) {
	tierChanged := t.tier != plan.Tier
	t.tier = plan.Tier
	t.plan = plan
	switch {
	case features != nil:
		t.featureOverrides = features
	case tierChanged:
		t.featureOverrides = FeatureSet{}
	}
	switch {
	case quotas != nil:
		t.quotaOverrides = quotas
	case tierChanged:
		t.quotaOverrides = Quotas{}
	}
	t.updatedAt = time.Now()
}

func (t *Tenant) Suspend() error {
	return t.transition(StatusSuspended, StatusActive)
}

func (t *Tenant) Reactivate() error {
	return t.transition(StatusActive, StatusSuspended)
}

func (t *Tenant) Cancel() error {
	return t.transition(StatusCancelled, StatusActive, StatusSuspended)
}

// MarkDeleted soft-deletes the tenant; a soft-deleted tenant is also cancelled.
func (t *Tenant) MarkDeleted(at time.Time) {
	t.status = StatusCancelled
	t.deletedAt = &at
	t.updatedAt = at
}

func (t *Tenant) transition(to Status, from ...Status) error {
	if t.deletedAt != nil {
		return fmt.Errorf("%w: tenant is deleted", ErrInvalidTransition)
	}
	for _, s := range from {
		if t.status == s {
			t.status = to
			t.updatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.status, to)
}
