package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/tenantgate/pkg/configuration"
	"github.com/iota-uz/tenantgate/pkg/constants"
)

// NewPool opens the shared connection pool. Every connection starts with
// search_path set to the shared schema, which is also what RESET restores,
// so an unbound connection can never resolve a tenant table by accident.
func NewPool(ctx context.Context, opts configuration.DatabaseOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(opts.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = constants.SharedSchema
	cfg.ConnConfig.RuntimeParams["application_name"] = "tenantgate"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}
	return pool, nil
}
