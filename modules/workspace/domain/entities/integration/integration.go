package integration

import (
	"context"
	"strings"
	"time"

	"github.com/iota-uz/tenantgate/pkg/constants"
)

// Integration is a connection to an external system configured by the tenant.
type Integration struct {
	ID        uint      `json:"id"`
	Provider  string    `json:"provider"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository interface {
	List(ctx context.Context) ([]Integration, error)
	Create(ctx context.Context, i Integration) (Integration, error)
	Delete(ctx context.Context, id uint) error
}

type CreateDTO struct {
	Provider string `json:"provider" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=255"`
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Provider = strings.ToLower(strings.TrimSpace(d.Provider))
	d.Name = strings.TrimSpace(d.Name)
	return constants.ValidationErrors(constants.Validate.Struct(d))
}

func (d *CreateDTO) ToEntity() Integration {
	return Integration{Provider: d.Provider, Name: d.Name}
}
