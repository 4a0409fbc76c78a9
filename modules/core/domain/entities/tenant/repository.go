package tenant

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetByOrganizationID(ctx context.Context, organizationID string) (*Tenant, error)
	List(ctx context.Context, includeDeleted bool) ([]*Tenant, error)
	Create(ctx context.Context, t *Tenant) (*Tenant, error)
	Update(ctx context.Context, t *Tenant) (*Tenant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SchemaProvisioner creates and drops isolation schemas inside the caller's transaction.
type SchemaProvisioner interface {
	Provision(ctx context.Context, schema string) error
	Drop(ctx context.Context, schema string) error
}
