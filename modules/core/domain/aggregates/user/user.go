package user

import (
	"time"

	"github.com/google/uuid"
)

type User interface {
	ID() uint
	TenantID() uuid.UUID
	ExternalID() string
	Role() Role
	Email() string
	DisplayName() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
}

type Option func(*user)

func WithID(id uint) Option {
	return func(u *user) {
		u.id = id
	}
}

func WithEmail(email string) Option {
	return func(u *user) {
		u.email = email
	}
}

func WithDisplayName(name string) Option {
	return func(u *user) {
		u.displayName = name
	}
}

func WithCreatedAt(t time.Time) Option {
	return func(u *user) {
		u.createdAt = t
	}
}

func WithUpdatedAt(t time.Time) Option {
	return func(u *user) {
		u.updatedAt = t
	}
}

func New(tenantID uuid.UUID, externalID string, role Role, opts ...Option) User {
	now := time.Now()
	u := &user{
		tenantID:   tenantID,
		externalID: externalID,
		role:       role,
		createdAt:  now,
		updatedAt:  now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type user struct {
	id          uint
	tenantID    uuid.UUID
	externalID  string
	role        Role
	email       string
	displayName string
	createdAt   time.Time
	updatedAt   time.Time
}

func (u *user) ID() uint             { return u.id }
func (u *user) TenantID() uuid.UUID  { return u.tenantID }
func (u *user) ExternalID() string   { return u.externalID }
func (u *user) Role() Role           { return u.role }
func (u *user) Email() string        { return u.email }
func (u *user) DisplayName() string  { return u.displayName }
func (u *user) CreatedAt() time.Time { return u.createdAt }
func (u *user) UpdatedAt() time.Time { return u.updatedAt }
