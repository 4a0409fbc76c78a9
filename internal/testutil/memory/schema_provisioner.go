package memory

import (
	"context"
	"sync"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
)

type SchemaProvisioner struct {
	mu      sync.Mutex
	schemas map[string]bool
	// Err, when set, fails every Provision call.
	Err error
}

func NewSchemaProvisioner() *SchemaProvisioner {
	return &SchemaProvisioner{schemas: map[string]bool{}}
}

func (p *SchemaProvisioner) Exists(schema string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.schemas[schema]
}

func (p *SchemaProvisioner) Provision(ctx context.Context, schema string) error {
	if err := tenant.ValidateSchemaName(schema); err != nil {
		return err
	}
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.schemas[schema] = true
	return nil
}

func (p *SchemaProvisioner) Drop(ctx context.Context, schema string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.schemas, schema)
	return nil
}
