// Package app implements the application layer for devd.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.trai.ch/devd/internal/adapters/loader"
	"go.trai.ch/devd/internal/adapters/worker"
	"go.trai.ch/devd/internal/build"
	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/policy"
	"go.trai.ch/devd/internal/core/ports"
	"go.trai.ch/devd/internal/engine/pkgmanager"
	"go.trai.ch/zerr"
)

// FactoryBuilder creates the package manager factory for a project configuration.
type FactoryBuilder interface {
	Build(cfg *domain.Config) (*pkgmanager.Factory, error)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	builder      FactoryBuilder
	modules      *loader.Cache
	watcher      ports.Watcher
	logger       ports.Logger
	worker       *worker.Worker
	out          io.Writer
	host         string
}

// New creates a new App instance.
func New(
	configLoader ports.ConfigLoader,
	builder FactoryBuilder,
	modules *loader.Cache,
	watcher ports.Watcher,
	log ports.Logger,
	installWorker *worker.Worker,
) *App {
	return &App{
		configLoader: configLoader,
		builder:      builder,
		modules:      modules,
		watcher:      watcher,
		logger:       log,
		worker:       installWorker,
		out:          os.Stdout,
		host:         build.Version,
	}
}

// WithOutput sets the writer used for command output.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithHost overrides the launcher version used when devd.yaml has no engine.
func (a *App) WithHost(version string) *App {
	a.host = version
	return a
}

// LoadOptions configuration for the Load method.
type LoadOptions struct {
	Dir string
}

// Load resolves the core and every configured plugin, then waits for
// background updates to finish.
func (a *App) Load(ctx context.Context, opts LoadOptions) error {
	session, err := a.Open(opts.Dir)
	if err != nil {
		return err
	}
	defer session.Close()

	loaded, err := session.Load(ctx)
	if err != nil {
		return err
	}
	a.printLoaded(loaded)
	return nil
}

// InstallOptions configuration for the Install method.
type InstallOptions struct {
	Dir string
	// Spec is "name", "name@version" or, with Core, an optional version.
	Spec string
	Core bool
	From string
}

// Install installs a plugin or core version and prints the result.
func (a *App) Install(ctx context.Context, opts InstallOptions) error {
	session, err := a.Open(opts.Dir)
	if err != nil {
		return err
	}
	defer session.Close()

	var manager *pkgmanager.Manager
	version := opts.Spec
	if opts.Core {
		manager = session.core
	} else {
		var name string
		name, version = SplitSpec(opts.Spec)
		host, err := session.pluginHost(ctx)
		if err != nil {
			return err
		}
		if manager, err = session.plugin(name, host); err != nil {
			return err
		}
	}

	resolved, err := manager.Install(ctx, version, opts.From)
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("installed %s %s", manager.Identity(), resolved.Version))
	return nil
}

// RemoveOptions configuration for the Remove method.
type RemoveOptions struct {
	Dir     string
	Name    string
	Version string
	Core    bool
	All     bool
}

// Remove deletes one version, one package or the whole store.
func (a *App) Remove(_ context.Context, opts RemoveOptions) error {
	session, err := a.Open(opts.Dir)
	if err != nil {
		return err
	}
	defer session.Close()

	if opts.All {
		if err := session.factory.RemoveAll(); err != nil {
			return err
		}
		a.logger.Info("removed " + session.factory.Base())
		return nil
	}

	var manager *pkgmanager.Manager
	switch {
	case opts.Core:
		manager = session.core
	case opts.Name != "":
		if manager, err = session.plugin(opts.Name, session.host); err != nil {
			return err
		}
	default:
		return zerr.New("a plugin name, --core or --all is required")
	}

	if opts.Version == "" {
		if err := manager.RemovePackage(); err != nil {
			return err
		}
		a.logger.Info(fmt.Sprintf("removed %s", manager.Identity()))
		return nil
	}
	if err := manager.RemoveVersion(opts.Version); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("removed %s %s", manager.Identity(), opts.Version))
	return nil
}

// RunWorker serves one install request from in and writes the response to out.
func (a *App) RunWorker(ctx context.Context, in io.Reader, out io.Writer) error {
	return a.worker.Serve(ctx, in, out)
}

// Open reads the project configuration in dir and prepares its managers.
func (a *App) Open(dir string) (*Session, error) {
	if dir == "" {
		dir = "."
	}
	cfg, err := a.configLoader.Load(dir)
	if err != nil {
		return nil, err
	}

	factory, err := a.builder.Build(cfg)
	if err != nil {
		return nil, err
	}

	host := cfg.Engine
	if host == "" {
		host = a.host
	}
	core, err := factory.Core(host)
	if err != nil {
		return nil, err
	}

	return &Session{
		app:     a,
		config:  cfg,
		factory: factory,
		core:    core,
		host:    host,
		plugins: make(map[string]*pkgmanager.Manager),
	}, nil
}

func (a *App) printLoaded(loaded *Loaded) {
	modules := append([]Module{loaded.Core}, loaded.Plugins...)
	for _, module := range modules {
		version := module.Package.Version
		if version == "" {
			version = "(unversioned)"
		}
		_, _ = fmt.Fprintf(a.out, "%s %s %s\n", module.Name, version, module.Package.Path)
	}
}

// SplitSpec splits "name@version" into its parts. The leading "@" of a scoped
// name is not a separator.
func SplitSpec(spec string) (name, version string) {
	i := strings.LastIndex(spec, "@")
	if i <= 0 {
		return spec, ""
	}
	return spec[:i], spec[i+1:]
}

// hostOf returns the version a resolved core offers to its plugins.
func hostOf(core domain.ResolvedPackage, fallback string) string {
	for _, v := range []string{core.Version, core.ManifestVersion} {
		if policy.Valid(v) {
			return v
		}
	}
	return fallback
}
