// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/devd/internal/adapters/config"
	_ "go.trai.ch/devd/internal/adapters/installer"
	_ "go.trai.ch/devd/internal/adapters/loader"
	_ "go.trai.ch/devd/internal/adapters/logger"
	_ "go.trai.ch/devd/internal/adapters/manifest"
	_ "go.trai.ch/devd/internal/adapters/registry"
	_ "go.trai.ch/devd/internal/adapters/store"
	_ "go.trai.ch/devd/internal/adapters/telemetry"
	_ "go.trai.ch/devd/internal/adapters/watcher"
	_ "go.trai.ch/devd/internal/adapters/worker"
	// Register app and engine nodes.
	_ "go.trai.ch/devd/internal/app"
	_ "go.trai.ch/devd/internal/engine/pkgmanager"
)
