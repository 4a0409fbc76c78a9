package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
)

// EntityCounter serves fixed counts; users are counted from a UserRepository when one is set.
type EntityCounter struct {
	mu     sync.RWMutex
	counts map[uuid.UUID]map[tenant.EntityType]int64
	users  *UserRepository
}

func NewEntityCounter(users *UserRepository) *EntityCounter {
	return &EntityCounter{counts: map[uuid.UUID]map[tenant.EntityType]int64{}, users: users}
}

func (c *EntityCounter) Set(tenantID uuid.UUID, entity tenant.EntityType, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[tenantID] == nil {
		c.counts[tenantID] = map[tenant.EntityType]int64{}
	}
	c.counts[tenantID][entity] = n
}

func (c *EntityCounter) Count(ctx context.Context, tenantID uuid.UUID, entity tenant.EntityType) (int64, error) {
	if entity == tenant.EntityUsers && c.users != nil {
		return c.users.Count(ctx, tenantID)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[tenantID][entity], nil
}
