package pkgmanager_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/devd/internal/adapters/manifest"
	"go.trai.ch/devd/internal/adapters/store"
	"go.trai.ch/devd/internal/adapters/telemetry"
	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/ports/mocks"
	"go.trai.ch/devd/internal/engine/pkgmanager"
	"go.uber.org/mock/gomock"
)

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

// fakeInstaller writes a complete package for every request.
type fakeInstaller struct {
	t      *testing.T
	mu     sync.Mutex
	calls  []domain.InstallRequest
	ranges map[string]string
	err    error
	gate   chan struct{}
	inside chan struct{}
}

func (f *fakeInstaller) Install(_ context.Context, req domain.InstallRequest) (domain.InstalledLocation, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	compat := f.ranges[req.Version]
	err := f.err
	f.mu.Unlock()

	if f.inside != nil {
		select {
		case f.inside <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		<-f.gate
	}
	if err != nil {
		return domain.InstalledLocation{}, err
	}

	dir := filepath.Join(req.DestinationRoot, req.Version)
	writePackage(f.t, dir, req.Version, compat)
	return domain.InstalledLocation{Version: req.Version, Path: dir}, nil
}

func (f *fakeInstaller) versions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Version)
	}
	return out
}

func (f *fakeInstaller) requests() []domain.InstallRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// fakeRegistry serves a fixed version list.
type fakeRegistry struct {
	versions []domain.CandidateVersion
	tags     map[string]string
	err      error
	queries  atomic.Int32
}

func (r *fakeRegistry) QueryVersions(context.Context, string) ([]domain.CandidateVersion, error) {
	r.queries.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return slices.Clone(r.versions), nil
}

func (r *fakeRegistry) DistTags(context.Context, string) (map[string]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.tags, nil
}

type testEnv struct {
	base      string
	installer *fakeInstaller
	registry  *fakeRegistry
	factory   *pkgmanager.Factory
}

func newTestEnv(t *testing.T, configure ...func(*pkgmanager.Options)) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	opts := pkgmanager.Options{
		Base:      t.TempDir(),
		Registry:  "http://registry.test",
		AutoClean: true,
	}
	for _, fn := range configure {
		fn(&opts)
	}

	env := &testEnv{
		base:      opts.Base,
		installer: &fakeInstaller{t: t, ranges: map[string]string{}},
		registry:  &fakeRegistry{},
	}
	reader := manifest.NewReader()
	factory, err := pkgmanager.NewFactory(
		store.NewStore(reader),
		env.registry,
		env.installer,
		reader,
		logger,
		telemetry.NewNoOpTracer(),
		opts,
	)
	require.NoError(t, err)
	t.Cleanup(factory.Wait)
	env.factory = factory
	return env
}

func (e *testEnv) core(t *testing.T, host string) *pkgmanager.Manager {
	t.Helper()
	m, err := e.factory.Core(host)
	require.NoError(t, err)
	return m
}

func (e *testEnv) plugin(t *testing.T, name, host string) *pkgmanager.Manager {
	t.Helper()
	m, err := e.factory.Plugin(name, host)
	require.NoError(t, err)
	return m
}

func installedDirs(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
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

func withAutoUpdate(o *pkgmanager.Options) { o.AutoUpdate = true }

func withoutAutoClean(o *pkgmanager.Options) { o.AutoClean = false }
