package user

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (User, error)
	// Create inserts u unless a row for (tenant, external id) exists, in which
	// case it fails with a conflict error instead of creating a duplicate.
	Create(ctx context.Context, u User) (User, error)
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error
}
