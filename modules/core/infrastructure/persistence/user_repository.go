package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/infrastructure/persistence/models"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/repo"
)

var (
	ErrUserNotFound = fmt.Errorf("user not found")
	ErrUserExists   = fmt.Errorf("user already exists")
)

const (
	userFindQuery = `SELECT id, tenant_id, external_id, role, email, display_name, created_at, updated_at FROM platform.users`

	// ON CONFLICT keeps concurrent first requests from racing into a
	// constraint error; the loser gets no row back.
	userInsertQuery = `
		INSERT INTO platform.users (tenant_id, external_id, role, email, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, external_id) DO NOTHING
		RETURNING id`

	userCountQuery          = `SELECT COUNT(*) FROM platform.users WHERE tenant_id = $1`
	userDeleteByTenantQuery = `DELETE FROM platform.users WHERE tenant_id = $1`
)

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

func (r *UserRepository) GetByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (user.User, error) {
	users, err := r.queryUsers(ctx, userFindQuery+" WHERE tenant_id = $1 AND external_id = $2", tenantID.String(), externalID)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var id uint
	if err := tx.QueryRow(
		ctx,
		userInsertQuery,
		u.TenantID().String(),
		u.ExternalID(),
		string(u.Role()),
		u.Email(),
		u.DisplayName(),
		u.CreatedAt(),
		u.UpdatedAt(),
	).Scan(&id); err != nil {
		if repo.IsNoRows(err) || repo.IsUniqueViolation(err, "users_tenant_id_external_id_key") {
			return nil, ErrUserExists
		}
		return nil, errors.Wrap(err, "failed to insert user")
	}

	return user.New(u.TenantID(), u.ExternalID(), u.Role(),
		user.WithID(id),
		user.WithEmail(u.Email()),
		user.WithDisplayName(u.DisplayName()),
		user.WithCreatedAt(u.CreatedAt()),
		user.WithUpdatedAt(u.UpdatedAt()),
	), nil
}

func (r *UserRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, userCountQuery, tenantID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}
	return count, nil
}

func (r *UserRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, userDeleteByTenantQuery, tenantID.String()); err != nil {
		return errors.Wrap(err, "failed to delete tenant users")
	}
	return nil
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var m models.User
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.ExternalID,
			&m.Role,
			&m.Email,
			&m.DisplayName,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan user row")
		}
		u, err := toDomainUser(&m)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map user row")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate user rows")
	}
	return users, nil
}
