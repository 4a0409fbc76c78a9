package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/iota-uz/tenantgate/modules/workspace/domain/entities/integration"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/repo"
)

var (
	ErrIntegrationNotFound = fmt.Errorf("integration not found")
	ErrIntegrationExists   = fmt.Errorf("integration already exists")
)

const (
	integrationListQuery   = `SELECT id, provider, name, created_at FROM integrations ORDER BY id`
	integrationInsertQuery = `INSERT INTO integrations (provider, name) VALUES ($1, $2) RETURNING id, created_at`
	integrationDeleteQuery = `DELETE FROM integrations WHERE id = $1`
)

type IntegrationRepository struct{}

func NewIntegrationRepository() integration.Repository {
	return &IntegrationRepository{}
}

func (r *IntegrationRepository) List(ctx context.Context) ([]integration.Integration, error) {
	tx, err := composables.UseTenantTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, integrationListQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query integrations")
	}
	defer rows.Close()

	integrations := make([]integration.Integration, 0)
	for rows.Next() {
		var i integration.Integration
		if err := rows.Scan(&i.ID, &i.Provider, &i.Name, &i.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan integration row")
		}
		integrations = append(integrations, i)
	}
	return integrations, rows.Err()
}

func (r *IntegrationRepository) Create(ctx context.Context, i integration.Integration) (integration.Integration, error) {
	tx, err := composables.UseTenantTx(ctx)
	if err != nil {
		return integration.Integration{}, err
	}
	if err := tx.QueryRow(ctx, integrationInsertQuery, i.Provider, i.Name).Scan(&i.ID, &i.CreatedAt); err != nil {
		if repo.IsUniqueViolation(err, "") {
			return integration.Integration{}, ErrIntegrationExists
		}
		return integration.Integration{}, errors.Wrap(err, "failed to insert integration")
	}
	return i, nil
}

func (r *IntegrationRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTenantTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, integrationDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete integration")
	}
	if tag.RowsAffected() == 0 {
		return ErrIntegrationNotFound
	}
	return nil
}
