package app

import "go.trai.ch/devd/internal/core/ports"

// LogSettings switches the logger's format and level at runtime.
type LogSettings interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
	// Settings is nil when the logger cannot be reconfigured.
	Settings LogSettings
}

// NewComponents creates a new Components struct from dependencies.
func NewComponents(app *App, logger ports.Logger) *Components {
	settings, _ := logger.(LogSettings)
	return &Components{
		App:      app,
		Logger:   logger,
		Settings: settings,
	}
}
