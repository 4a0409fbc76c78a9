package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/pkg/eventbus"
)

// AuditHandler turns lifecycle events into audit log lines.
type AuditHandler struct {
	logger *logrus.Logger
}

func RegisterAuditHandlers(bus eventbus.EventBus, logger *logrus.Logger) *AuditHandler {
	h := &AuditHandler{logger: logger}
	bus.Subscribe(h.onTenantCreated)
	bus.Subscribe(h.onPlanChanged)
	bus.Subscribe(h.onStatusChanged)
	bus.Subscribe(h.onTenantDeleted)
	bus.Subscribe(h.onUserProvisioned)
	return h
}

func (h *AuditHandler) entry(event string, t *tenant.Tenant) *logrus.Entry {
	fields := logrus.Fields{"audit": true, "event": event}
	if t != nil {
		fields["tenant_id"] = t.ID().String()
		fields["organization_id"] = t.OrganizationID()
		fields["schema"] = t.SchemaName()
	}
	return h.logger.WithFields(fields)
}

func (h *AuditHandler) onTenantCreated(e *tenant.CreatedEvent) {
	h.entry("tenant.created", e.Result).
		WithField("tier", e.Result.Tier()).
		Info("tenant onboarded")
}

func (h *AuditHandler) onPlanChanged(e *tenant.PlanChangedEvent) {
	h.entry("tenant.plan_changed", e.Tenant).
		WithField("from", e.PreviousTier).
		WithField("to", e.Tenant.Tier()).
		WithField("feature_overrides", e.Tenant.FeatureOverrides().Raw()).
		WithField("quota_overrides", e.Tenant.QuotaOverrides().Raw()).
		Info("tenant plan changed")
}

func (h *AuditHandler) onStatusChanged(e *tenant.StatusChangedEvent) {
	h.entry("tenant.status_changed", e.Tenant).
		WithField("from", e.PreviousStatus).
		WithField("to", e.Tenant.Status()).
		Info("tenant status changed")
}

func (h *AuditHandler) onTenantDeleted(e *tenant.DeletedEvent) {
	h.entry("tenant.deleted", e.Tenant).
		WithField("hard", e.Hard).
		Warn("tenant offboarded")
}

func (h *AuditHandler) onUserProvisioned(e *user.ProvisionedEvent) {
	h.logger.WithFields(logrus.Fields{
		"audit":       true,
		"event":       "user.provisioned",
		"tenant_id":   e.Result.TenantID().String(),
		"user_id":     e.Result.ID(),
		"external_id": e.Result.ExternalID(),
		"role":        e.Result.Role(),
	}).Info("user provisioned")
}
