package tenant

import "time"

type CreatedEvent struct {
	Result    *Tenant
	Timestamp time.Time
}

type PlanChangedEvent struct {
	Tenant       *Tenant
	PreviousTier Tier
	Timestamp    time.Time
}

type StatusChangedEvent struct {
	Tenant         *Tenant
	PreviousStatus Status
	Timestamp      time.Time
}

type DeletedEvent struct {
	Tenant    *Tenant
	Hard      bool
	Timestamp time.Time
}
