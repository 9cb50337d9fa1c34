package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/devd/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/devd/internal/adapters/loader"  //nolint:depguard // Wired in app layer
	"go.trai.ch/devd/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/devd/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/devd/internal/adapters/worker"  //nolint:depguard // Wired in app layer
	"go.trai.ch/devd/internal/core/ports"
	"go.trai.ch/devd/internal/engine/pkgmanager"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			pkgmanager.NodeID,
			loader.NodeID,
			watcher.NodeID,
			logger.NodeID,
			worker.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	configLoader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	builder, err := graft.Dep[*pkgmanager.Builder](ctx)
	if err != nil {
		return nil, err
	}

	modules, err := graft.Dep[*loader.Cache](ctx)
	if err != nil {
		return nil, err
	}

	fileWatcher, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	installWorker, err := graft.Dep[*worker.Worker](ctx)
	if err != nil {
		return nil, err
	}

	return New(configLoader, builder, modules, fileWatcher, log, installWorker), nil
}
