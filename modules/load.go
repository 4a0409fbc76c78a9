package modules

import (
	"github.com/iota-uz/tenantgate/modules/core"
	"github.com/iota-uz/tenantgate/modules/workspace"
	"github.com/iota-uz/tenantgate/pkg/application"
)

// BuiltInModules returns the core module followed by the modules that depend on it.
func BuiltInModules(coreOpts *core.ModuleOptions) []application.Module {
	return []application.Module{
		core.NewModule(coreOpts),
		workspace.NewModule(),
	}
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
