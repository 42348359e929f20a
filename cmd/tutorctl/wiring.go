package main

import (
	"context"
	"log/slog"

	"github.com/samber/do"
	"github.com/samber/oops"

	convpolicy "github.com/cyberFlowTech/zapry-convpolicy-go"
	"github.com/cyberFlowTech/zapry-convpolicy-go/config"
	"github.com/cyberFlowTech/zapry-convpolicy-go/logging"
	"github.com/cyberFlowTech/zapry-convpolicy-go/persona"
	"github.com/cyberFlowTech/zapry-convpolicy-go/store"
)

// adapterService owns the configured profile backend so the injector can
// close it on shutdown.
type adapterService struct {
	convpolicy.ProfileAdapter
	close func() error
}

func (a *adapterService) Shutdown() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// newInjector loads configuration and registers every service.
func newInjector(configPath string) (*do.Injector, error) {
	di := do.New()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	do.ProvideValue(di, cfg)

	if err := logging.Init(cfg); err != nil {
		return nil, oops.Errorf("logging init failed: %w", err)
	}

	do.Provide(di, newAdapter)
	do.Provide(di, newCatalog)
	do.Provide(di, newEngine)
	return di, nil
}

func newAdapter(di *do.Injector) (*adapterService, error) {
	cfg := do.MustInvoke[*config.Config](di)

	switch cfg.Store.Driver {
	case "file":
		s, err := store.NewFileProfileStore(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		return &adapterService{ProfileAdapter: s}, nil
	case "redis":
		r := cfg.Store.Redis
		s := store.NewRedisProfileStore(
			store.NewRedisClient(r.Addr, r.Password, r.DB),
			store.RedisStoreConfig{Prefix: r.Prefix},
		)
		return &adapterService{ProfileAdapter: s, close: s.Close}, nil
	case "sqlite":
		s, err := store.OpenSQLiteProfileStore(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		return &adapterService{ProfileAdapter: s, close: s.Close}, nil
	default:
		return &adapterService{ProfileAdapter: convpolicy.NewInMemoryProfileAdapter()}, nil
	}
}

func newCatalog(di *do.Injector) (*persona.Catalog, error) {
	cfg := do.MustInvoke[*config.Config](di)
	if cfg.PersonaCatalog == "" {
		return persona.DefaultCatalog(), nil
	}
	catalog, warnings, err := persona.LoadCatalog(cfg.PersonaCatalog)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		slog.Warn("persona catalog normalized", "component", "persona", "field", w.Field, "message", w.Message)
	}
	return catalog, nil
}

func newEngine(di *do.Injector) (*convpolicy.Engine, error) {
	cfg := do.MustInvoke[*config.Config](di)
	opts := convpolicy.DefaultEngineOptions()
	opts.Config = cfg.Engine
	opts.Adapter = do.MustInvoke[*adapterService](di)
	opts.Catalog = do.MustInvoke[*persona.Catalog](di)
	opts.Logger = slog.Default()
	return convpolicy.NewEngine(opts), nil
}

// flush persists the user's profile and reports a failure as an error.
func flush(ctx context.Context, engine *convpolicy.Engine, userID string) error {
	if !engine.Flush(ctx, userID) {
		return oops.With("user", userID).Errorf("failed to persist profile")
	}
	return nil
}
