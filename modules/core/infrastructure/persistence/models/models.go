package models

import "time"

type Tenant struct {
	ID               string
	OrganizationID   string
	SchemaName       string
	Name             string
	Tier             string
	Status           string
	FeatureOverrides []byte
	QuotaOverrides   []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

type User struct {
	ID          uint
	TenantID    string
	ExternalID  string
	Role        string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
