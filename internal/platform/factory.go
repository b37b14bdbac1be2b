package platform

import (
	"context"

	"github.com/aretw0/wtf/pkg/adapters/fs"
	"github.com/aretw0/wtf/pkg/core"
	"github.com/aretw0/wtf/pkg/remote"
)

// Instance groups the wired components of one dictionary.
type Instance struct {
	Home       string
	Service    *core.Service
	Repository core.Repository
	// Engine is nil when sync is disabled or the repository keeps no metadata.
	Engine *remote.Engine
}

// New creates the dictionary service for the data home at uri.
//
//	svc, err := wtf.New("", wtf.WithReadOnly(true))
func New(uri string, opts ...Option) (*core.Service, error) {
	inst, err := Open(uri, opts...)
	if err != nil {
		return nil, err
	}
	return inst.Service, nil
}

// Open initializes the repository and wires the sync engine and the service.
func Open(uri string, opts ...Option) (*Instance, error) {
	o := applyOptions(opts)

	repo, err := initRepository(uri, o)
	if err != nil {
		return nil, err
	}

	inst := &Instance{Home: uri, Repository: repo}
	if fsRepo, ok := repo.(*fs.Repository); ok {
		inst.Home = fsRepo.Path
	}

	readOnly, _ := o.config["read_only"].(bool)
	svcOpts := []core.ServiceOption{
		core.WithServiceLogger(o.logger),
		core.WithReadOnly(readOnly),
	}

	syncEnabled := true
	if val, ok := o.config["sync"].(bool); ok {
		syncEnabled = val
	}

	if syncEnabled {
		meta, ok := repo.(core.MetadataStore)
		if ok {
			cfg := o.remote
			if cfg.Logger == nil {
				cfg.Logger = o.logger
			}
			engineOpts := append([]remote.EngineOption{remote.WithEngineLogger(o.logger)}, o.engineOpts...)
			inst.Engine = remote.NewEngine(remote.NewClient(cfg), repo, meta, engineOpts...)
			svcOpts = append(svcOpts, core.WithSynchronizer(inst.Engine))
		} else if o.logger != nil {
			o.logger.Warn("sync disabled", "reason", "repository does not store sync metadata")
		}
	}

	inst.Service = core.NewService(repo, svcOpts...)
	return inst, nil
}

// Sync synchronizes the dictionary at the given URI with its remote.
func Sync(uri string, force bool, opts ...Option) (core.SyncReport, error) {
	inst, err := Open(uri, opts...)
	if err != nil {
		return core.SyncReport{}, err
	}
	return inst.Service.Sync(context.Background(), force)
}
