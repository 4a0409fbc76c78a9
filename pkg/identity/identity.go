// Package identity describes the external identity provider the request
// pipeline authenticates against.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidSession       = errors.New("session verification failed")
	ErrMembershipNotFound   = errors.New("organization membership not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrProviderUnavailable marks timeouts and provider-side failures. Callers may retry.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

type Session struct {
	UserID      string
	SessionID   string
	Email       string
	DisplayName string
	ExpiresAt   time.Time
	Claims      map[string]any
}

type Membership struct {
	OrganizationID string
	UserID         string
	// Role is the organization role as issued by the provider, e.g. "org:admin".
	Role        string
	Email       string
	DisplayName string
}

type Organization struct {
	ID           string
	Name         string
	Slug         string
	MembersCount int
	CreatedAt    time.Time
}

type Provider interface {
	VerifySession(ctx context.Context, token string) (*Session, error)
	GetMembership(ctx context.Context, userID, organizationID string) (*Membership, error)
	GetOrganization(ctx context.Context, organizationID string) (*Organization, error)
}
