package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/devd/internal/adapters/loader"
	"go.trai.ch/devd/internal/adapters/manifest"
	"go.trai.ch/devd/internal/adapters/store"
	"go.trai.ch/devd/internal/adapters/telemetry"
	"go.trai.ch/devd/internal/adapters/worker"
	"go.trai.ch/devd/internal/app"
	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/ports/mocks"
	"go.trai.ch/devd/internal/engine/pkgmanager"
	"go.uber.org/mock/gomock"
)

const testRegistry = "http://registry.test"

// writePackage creates dir with a manifest declaring version and compat.
func writePackage(t *testing.T, dir, version, compat string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	doc := map[string]any{"name": filepath.Base(dir), "version": version}
	if compat != "" {
		doc["engines"] = map[string]string{manifest.EnginesKey: compat}
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ManifestFileName), data, domain.FilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.DefaultEntryFile), []byte("module.exports = {}"), domain.FilePerm))
}

type testEnv struct {
	app      *app.App
	config   *domain.Config
	out      *bytes.Buffer
	registry *mocks.MockRegistry
	watcher  *mocks.MockWatcher
	logger   *mocks.MockLogger

	mu       sync.Mutex
	ranges   map[string]map[string]string
	requests []domain.InstallRequest
}

// newTestEnv builds an App over a temporary store. remote maps a registry
// package name to its published versions and their host ranges.
func newTestEnv(t *testing.T, cfg *domain.Config, remote map[string]map[string]string) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	cfg.Home = t.TempDir()
	cfg.Registry = testRegistry
	if cfg.Root == "" {
		cfg.Root = t.TempDir()
	}

	env := &testEnv{
		config:   cfg,
		out:      new(bytes.Buffer),
		registry: mocks.NewMockRegistry(ctrl),
		watcher:  mocks.NewMockWatcher(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		ranges:   remote,
	}
	env.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	env.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	configLoader := mocks.NewMockConfigLoader(ctrl)
	configLoader.EXPECT().Load(gomock.Any()).Return(cfg, nil).AnyTimes()

	opener := mocks.NewMockRegistryOpener(ctrl)
	opener.EXPECT().Open(testRegistry).Return(env.registry, nil).AnyTimes()

	env.registry.EXPECT().QueryVersions(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, name string) ([]domain.CandidateVersion, error) {
			published, ok := remote[name]
			if !ok {
				return nil, domain.Tag(domain.ErrRegistry, domain.ErrPackageNotFound)
			}
			candidates := make([]domain.CandidateVersion, 0, len(published))
			for version, compat := range published {
				candidates = append(candidates, domain.NewCandidate(version, compat))
			}
			return candidates, nil
		}).AnyTimes()

	installer := mocks.NewMockInstaller(ctrl)
	installer.EXPECT().Install(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req domain.InstallRequest) (domain.InstalledLocation, error) {
			env.mu.Lock()
			env.requests = append(env.requests, req)
			compat := env.ranges[req.PackageName][req.Version]
			env.mu.Unlock()

			dir := filepath.Join(req.DestinationRoot, req.Version)
			writePackage(t, dir, req.Version, compat)
			return domain.InstalledLocation{Version: req.Version, Path: dir}, nil
		}).AnyTimes()

	reader := manifest.NewReader()
	builder := &pkgmanager.Builder{
		Store:     store.NewStore(reader),
		Registry:  opener,
		Installer: installer,
		Manifests: reader,
		Logger:    env.logger,
		Tracer:    telemetry.NewNoOpTracer(),
	}

	modules := loader.NewCache(loader.NewRegistry(loader.NewDescriptorLoader(reader)))
	env.app = app.New(configLoader, builder, modules, env.watcher, env.logger, worker.New()).
		WithOutput(env.out).
		WithHost("1.4.0")
	return env
}

// installed returns "name@version" for every install request, in order.
func (e *testEnv) installed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.requests))
	for _, req := range e.requests {
		out = append(out, req.PackageName+"@"+req.Version)
	}
	return out
}

func (e *testEnv) coreDir(version string) string {
	return filepath.Join(domain.CoreRoot(e.config.Home), version)
}

func (e *testEnv) pluginDir(name, version string) string {
	return filepath.Join(domain.PluginRoot(e.config.Home, name), version)
}

func listDirs(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names
}
