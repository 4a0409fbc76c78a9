package composables

import (
	"context"
	"errors"

	"github.com/iota-uz/tenantgate/modules/core/domain/aggregates/user"
	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/pkg/constants"
	"github.com/iota-uz/tenantgate/pkg/identity"
)

var (
	ErrNoSession    = errors.New("no verified session in context")
	ErrNoMembership = errors.New("no organization membership in context")
	ErrNoTenant     = errors.New("no tenant in context")
	ErrNoUser       = errors.New("no user in context")
)

func WithSession(ctx context.Context, s *identity.Session) context.Context {
	return context.WithValue(ctx, constants.SessionKey, s)
}

func UseSession(ctx context.Context) (*identity.Session, error) {
	s, ok := ctx.Value(constants.SessionKey).(*identity.Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}

func WithMembership(ctx context.Context, m *identity.Membership) context.Context {
	return context.WithValue(ctx, constants.MembershipKey, m)
}

func UseMembership(ctx context.Context) (*identity.Membership, error) {
	m, ok := ctx.Value(constants.MembershipKey).(*identity.Membership)
	if !ok || m == nil {
		return nil, ErrNoMembership
	}
	return m, nil
}

func WithTenant(ctx context.Context, t *tenant.Tenant) context.Context {
	return context.WithValue(ctx, constants.TenantKey, t)
}

func UseTenant(ctx context.Context) (*tenant.Tenant, error) {
	t, ok := ctx.Value(constants.TenantKey).(*tenant.Tenant)
	if !ok || t == nil {
		return nil, ErrNoTenant
	}
	return t, nil
}

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, constants.UserKey, u)
}

func UseUser(ctx context.Context) (user.User, error) {
	u, ok := ctx.Value(constants.UserKey).(user.User)
	if !ok || u == nil {
		return nil, ErrNoUser
	}
	return u, nil
}
