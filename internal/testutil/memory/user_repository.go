package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/infrastructure/persistence"
)

type userKey struct {
	tenantID   uuid.UUID
	externalID string
}

// UserRepository enforces the same (tenant, external id) uniqueness as platform.users.
type UserRepository struct {
	mu      sync.Mutex
	nextID  uint
	users   map[userKey]user.User
	creates int
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[userKey]user.User{}}
}

// Creates counts Create calls, including ones that lost a conflict.
func (r *UserRepository) Creates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates
}

func (r *UserRepository) All() []user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out
}

func (r *UserRepository) GetByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userKey{tenantID, externalID}]
	if !ok {
		return nil, persistence.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	key := userKey{u.TenantID(), u.ExternalID()}
	if _, ok := r.users[key]; ok {
		return nil, persistence.ErrUserExists
	}
	r.nextID++
	created := user.New(u.TenantID(), u.ExternalID(), u.Role(),
		user.WithID(r.nextID),
		user.WithEmail(u.Email()),
		user.WithDisplayName(u.DisplayName()),
		user.WithCreatedAt(u.CreatedAt()),
		user.WithUpdatedAt(u.UpdatedAt()),
	)
	r.users[key] = created
	return created, nil
}

func (r *UserRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k := range r.users {
		if k.tenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.users {
		if k.tenantID == tenantID {
			delete(r.users, k)
		}
	}
	return nil
}
