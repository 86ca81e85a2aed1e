package orgtree

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/ports"
	"github.com/jacksonlee411/orgtree/modules/orgtree/infrastructure/persistence"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/assets"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/controllers"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/locales"
	"github.com/jacksonlee411/orgtree/modules/orgtree/services"
	"github.com/jacksonlee411/orgtree/pkg/application"
	"github.com/jacksonlee411/orgtree/pkg/composables"
	"github.com/jacksonlee411/orgtree/pkg/configuration"
)

var ErrNoDatabase = errors.New("orgtree: postgres source requires a database pool")

type ModuleOptions struct {
	// Options defaults to the process configuration.
	Options *configuration.OrgTreeOptions
	// Store overrides the store picked from Options.Source.
	Store ports.TreeStore
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	app.RegisterLocaleFiles(&locales.FS)
	app.RegisterHashFsAssets(assets.HashFS)

	conf := m.options.Options
	if conf == nil {
		conf = &configuration.Use().OrgTree
	}
	store, err := m.store(app, conf)
	if err != nil {
		return err
	}

	svc := services.NewOrgTreeService(store, app.EventPublisher(),
		services.WithCacheTTL(conf.CacheTTL),
		services.WithMaxDepth(conf.MaxDepth),
		services.WithMemoSize(conf.MemoSize),
	)
	app.RegisterServices(svc)
	subscribeAuditLog(app)

	app.RegisterControllers(
		controllers.NewOrgTreeAPIController(app),
		controllers.NewOrgTreeUIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "orgtree"
}

func (m *Module) store(app application.Application, conf *configuration.OrgTreeOptions) (ports.TreeStore, error) {
	if m.options.Store != nil {
		return m.options.Store, nil
	}
	switch conf.Source {
	case configuration.SourcePostgres:
		if app.DB() == nil {
			return nil, ErrNoDatabase
		}
		return persistence.NewPGTreeStore(app.DB()), nil
	default:
		store, err := persistence.NewYAMLTreeStore(conf.FixturePath)
		if err != nil {
			return nil, errors.Wrap(err, "open org tree fixture")
		}
		return store, nil
	}
}

func subscribeAuditLog(app application.Application) {
	logger := app.Logger().WithField("module", "orgtree")
	app.EventPublisher().Subscribe(func(e *services.NodeSelectedEvent) {
		logger.WithFields(logrus.Fields{
			"node_id":     e.NodeID,
			"node_name":   e.Name,
			"selected_at": e.SelectedAt,
		}).Info("org node selected")
	})
	app.EventPublisher().Subscribe(func(e *services.ExpansionToggledEvent) {
		logger.WithField("node_id", e.NodeID).WithField("expanded", e.Expanded).Debug("org node toggled")
	})
}

// SeedFixture loads the fixture at path into postgres, replacing what is
// there.
func SeedFixture(path string) application.SeedFunc {
	return func(ctx context.Context, app application.Application) error {
		if app.DB() == nil {
			return ErrNoDatabase
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read fixture %s", path)
		}
		records, err := persistence.ParseFixture(data)
		if err != nil {
			return errors.Wrapf(err, "parse fixture %s", path)
		}
		if err := persistence.ReplaceAll(composables.WithPool(ctx, app.DB()), records); err != nil {
			return err
		}
		app.Logger().WithField("nodes", len(records)).Info("org tree fixture seeded")
		return nil
	}
}
