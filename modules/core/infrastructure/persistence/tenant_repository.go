package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/core/infrastructure/persistence/models"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/repo"
)

var (
	ErrTenantNotFound = fmt.Errorf("tenant not found")
	ErrTenantExists   = fmt.Errorf("tenant already exists")
)

const (
	tenantFindQuery = `SELECT id, organization_id, schema_name, name, tier, status, feature_overrides, quota_overrides, created_at, updated_at, deleted_at FROM platform.tenants`

	tenantInsertQuery = `
		INSERT INTO platform.tenants (id, organization_id, schema_name, name, tier, status, feature_overrides, quota_overrides, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	tenantUpdateQuery = `
		UPDATE platform.tenants
		SET name = $1, tier = $2, status = $3, feature_overrides = $4, quota_overrides = $5, updated_at = $6, deleted_at = $7
		WHERE id = $8
		RETURNING id`

	tenantDeleteQuery = `DELETE FROM platform.tenants WHERE id = $1`
)

// TenantRepository reads and writes platform.tenants. Queries are always
// schema-qualified so they resolve the same way with or without a tenant
// schema bound to the connection.
type TenantRepository struct {
	catalog *tenant.Catalog
}

func NewTenantRepository(catalog *tenant.Catalog) tenant.Repository {
	if catalog == nil {
		catalog = tenant.DefaultCatalog()
	}
	return &TenantRepository{catalog: catalog}
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return r.queryOne(ctx, tenantFindQuery+" WHERE id = $1", id.String())
}

// GetByOrganizationID only returns live tenants; an offboarded row behaves as if it never existed.
func (r *TenantRepository) GetByOrganizationID(ctx context.Context, organizationID string) (*tenant.Tenant, error) {
	return r.queryOne(ctx, tenantFindQuery+" WHERE organization_id = $1 AND deleted_at IS NULL", organizationID)
}

func (r *TenantRepository) List(ctx context.Context, includeDeleted bool) ([]*tenant.Tenant, error) {
	query := tenantFindQuery
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	return r.queryTenants(ctx, query+" ORDER BY created_at")
}

func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	m, err := toDBTenant(t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map tenant")
	}

	var idStr string
	if err := tx.QueryRow(
		ctx,
		tenantInsertQuery,
		m.ID,
		m.OrganizationID,
		m.SchemaName,
		m.Name,
		m.Tier,
		m.Status,
		m.FeatureOverrides,
		m.QuotaOverrides,
		m.CreatedAt,
		m.UpdatedAt,
	).Scan(&idStr); err != nil {
		if repo.IsUniqueViolation(err, "") {
			return nil, ErrTenantExists
		}
		return nil, errors.Wrap(err, "failed to insert tenant")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	m, err := toDBTenant(t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map tenant")
	}

	var idStr string
	if err := tx.QueryRow(
		ctx,
		tenantUpdateQuery,
		m.Name,
		m.Tier,
		m.Status,
		m.FeatureOverrides,
		m.QuotaOverrides,
		m.UpdatedAt,
		m.DeletedAt,
		m.ID,
	).Scan(&idStr); err != nil {
		if repo.IsNoRows(err) {
			return nil, ErrTenantNotFound
		}
		return nil, errors.Wrap(err, "failed to update tenant")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *TenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, tenantDeleteQuery, id.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete tenant")
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (r *TenantRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*tenant.Tenant, error) {
	tenants, err := r.queryTenants(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, ErrTenantNotFound
	}
	return tenants[0], nil
}

func (r *TenantRepository) queryTenants(ctx context.Context, query string, args ...interface{}) ([]*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		var m models.Tenant
		if err := rows.Scan(
			&m.ID,
			&m.OrganizationID,
			&m.SchemaName,
			&m.Name,
			&m.Tier,
			&m.Status,
			&m.FeatureOverrides,
			&m.QuotaOverrides,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.DeletedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan tenant row")
		}
		t, err := toDomainTenant(&m, r.catalog)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map tenant row")
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate tenant rows")
	}
	return tenants, nil
}
