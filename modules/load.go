package modules

import (
	"github.com/jacksonlee411/orgtree/modules/orgtree"
	"github.com/jacksonlee411/orgtree/pkg/application"
)

var BuiltInModules = []application.Module{
	orgtree.NewModule(nil),
}

func Load(app application.Application, externalModules ...application.Module) error {
	return app.RegisterModules(externalModules...)
}
