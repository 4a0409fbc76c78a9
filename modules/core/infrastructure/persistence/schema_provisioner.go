package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/pkg/composables"
)

// tenantTables is the DDL every isolation schema starts with. %[1]s is the
// sanitized schema identifier.
var tenantTables = []string{
	`CREATE TABLE %[1]s.products (
		id          SERIAL PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		sku         VARCHAR(64) NOT NULL UNIQUE,
		price_cents BIGINT NOT NULL DEFAULT 0 CHECK (price_cents >= 0),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE %[1]s.integrations (
		id          SERIAL PRIMARY KEY,
		provider    VARCHAR(64) NOT NULL,
		name        VARCHAR(255) NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (provider, name)
	)`,
}

type SchemaProvisioner struct{}

func NewSchemaProvisioner() tenant.SchemaProvisioner {
	return &SchemaProvisioner{}
}

// Provision creates the schema and its tables on the transaction in ctx.
func (p *SchemaProvisioner) Provision(ctx context.Context, schema string) error {
	if err := tenant.ValidateSchemaName(schema); err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	ident := pgx.Identifier{schema}.Sanitize()
	if _, err := tx.Exec(ctx, "CREATE SCHEMA "+ident); err != nil {
		return errors.Wrapf(err, "failed to create schema %s", schema)
	}
	for _, ddl := range tenantTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf(ddl, ident)); err != nil {
			return errors.Wrapf(err, "failed to create tables in %s", schema)
		}
	}
	return nil
}

func (p *SchemaProvisioner) Drop(ctx context.Context, schema string) error {
	if err := tenant.ValidateSchemaName(schema); err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DROP SCHEMA IF EXISTS "+pgx.Identifier{schema}.Sanitize()+" CASCADE"); err != nil {
		return errors.Wrapf(err, "failed to drop schema %s", schema)
	}
	return nil
}
