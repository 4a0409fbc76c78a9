package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/pkg/composables"
)

// EntityCountRepository counts the entities a plan quota applies to.
// Workspace tables are read unqualified through the bound tenant schema;
// users live in the shared schema and are filtered by tenant id.
type EntityCountRepository struct{}

func NewEntityCountRepository() *EntityCountRepository {
	return &EntityCountRepository{}
}

func (r *EntityCountRepository) Count(ctx context.Context, tenantID uuid.UUID, entity tenant.EntityType) (int64, error) {
	switch entity {
	case tenant.EntityProducts:
		return r.countScoped(ctx, `SELECT COUNT(*) FROM products`)
	case tenant.EntityIntegrations:
		return r.countScoped(ctx, `SELECT COUNT(*) FROM integrations`)
	case tenant.EntityUsers:
		tx, err := composables.UseTx(ctx)
		if err != nil {
			return 0, err
		}
		var count int64
		if err := tx.QueryRow(ctx, userCountQuery, tenantID.String()).Scan(&count); err != nil {
			return 0, errors.Wrap(err, "failed to count users")
		}
		return count, nil
	default:
		return 0, errors.Wrapf(tenant.ErrUnknownEntityType, "count %q", entity)
	}
}

func (r *EntityCountRepository) countScoped(ctx context.Context, query string) (int64, error) {
	tx, err := composables.UseTenantTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count tenant entities")
	}
	return count, nil
}
