package inmem

import (
	"context"
	"fmt"
	"sync"

	"github.com/iota-uz/tenantgate/pkg/identity"
)

// Provider is an in-memory identity.Provider for tests and local development.
// Tokens are opaque strings registered with AddSession.
type Provider struct {
	mu            sync.RWMutex
	sessions      map[string]identity.Session
	memberships   map[string]identity.Membership
	organizations map[string]identity.Organization
	calls         map[string]int
	failWith      error
}

func New() *Provider {
	return &Provider{
		sessions:      map[string]identity.Session{},
		memberships:   map[string]identity.Membership{},
		organizations: map[string]identity.Organization{},
		calls:         map[string]int{},
	}
}

func (p *Provider) AddSession(token string, s identity.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[token] = s
}

func (p *Provider) RevokeSession(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, token)
}

func (p *Provider) AddMembership(m identity.Membership) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.memberships[membershipKey(m.UserID, m.OrganizationID)] = m
}

func (p *Provider) RemoveMembership(userID, organizationID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.memberships, membershipKey(userID, organizationID))
}

func (p *Provider) AddOrganization(o identity.Organization) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.organizations[o.ID] = o
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (p *Provider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failWith = err
}

// Calls reports how many times the named operation was invoked.
func (p *Provider) Calls(op string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.calls[op]
}

func (p *Provider) VerifySession(ctx context.Context, token string) (*identity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["VerifySession"]++
	if p.failWith != nil {
		return nil, p.failWith
	}
	s, ok := p.sessions[token]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token", identity.ErrInvalidSession)
	}
	return &s, nil
}

func (p *Provider) GetMembership(ctx context.Context, userID, organizationID string) (*identity.Membership, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["GetMembership"]++
	if p.failWith != nil {
		return nil, p.failWith
	}
	m, ok := p.memberships[membershipKey(userID, organizationID)]
	if !ok {
		return nil, identity.ErrMembershipNotFound
	}
	return &m, nil
}

func (p *Provider) GetOrganization(ctx context.Context, organizationID string) (*identity.Organization, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["GetOrganization"]++
	if p.failWith != nil {
		return nil, p.failWith
	}
	o, ok := p.organizations[organizationID]
	if !ok {
		return nil, identity.ErrOrganizationNotFound
	}
	return &o, nil
}

func membershipKey(userID, organizationID string) string {
	return organizationID + "/" + userID
}
