package pkgmanager

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/policy"
	"go.trai.ch/devd/internal/core/ports"
	"go.trai.ch/zerr"
)

// Manager resolves one package against one host version.
type Manager struct {
	factory  *Factory
	identity domain.PackageIdentity
	root     string
	host     string

	mu sync.Mutex
	// current and previous are the versions this instance loaded last.
	current  string
	previous string
	// active counts loads in progress per version; retention never removes them.
	active map[string]int
}

// Identity returns the package the manager resolves.
func (m *Manager) Identity() domain.PackageIdentity {
	return m.identity
}

// Root returns the store directory holding the package's versions.
func (m *Manager) Root() string {
	return m.root
}

// Host returns the host version candidates are matched against.
func (m *Manager) Host() string {
	return m.host
}

// Load resolves req to a package on disk, installing it when needed.
func (m *Manager) Load(ctx context.Context, req domain.LoadRequest) (resolved domain.ResolvedPackage, err error) {
	ctx, span := m.factory.tracer.Start(ctx, "pkgmanager.load",
		ports.WithAttribute("package", m.identity.Name),
		ports.WithAttribute("host", m.host),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
		} else {
			span.SetAttribute("version", resolved.Version)
		}
		span.End()
	}()

	if req.Path != "" {
		return m.loadPath(req.Path)
	}

	version, localHit, err := m.selectVersion(ctx, req.Version)
	if err != nil {
		return domain.ResolvedPackage{}, err
	}

	m.acquire(version)
	defer m.release(version)

	if err := m.materialize(ctx, version); err != nil {
		return domain.ResolvedPackage{}, err
	}

	m.retain(m.keepAfterLoad(version)...)
	if localHit && m.factory.opts.AutoUpdate {
		m.scheduleUpdate(ctx, version)
	}

	resolved, err = m.resolve(version)
	if err != nil {
		return domain.ResolvedPackage{}, err
	}
	m.markInUse(version)
	return resolved, nil
}

// Install installs a version even when it is already present. A non-empty
// from names a local directory or .tgz archive to install instead of the registry.
// Without from it behaves like Load with an explicit version.
func (m *Manager) Install(ctx context.Context, version, from string) (domain.ResolvedPackage, error) {
	if from == "" {
		return m.Load(ctx, domain.LoadRequest{Version: version})
	}

	from, err := filepath.Abs(from)
	if err != nil {
		return domain.ResolvedPackage{}, domain.Tag(domain.ErrInstall, zerr.Wrap(err, "failed to resolve install source"))
	}
	if version == "" {
		manifest, err := m.factory.manifests.Read(from)
		if err != nil {
			return domain.ResolvedPackage{}, domain.Tag(domain.ErrInstall, err)
		}
		version = manifest.Version
	}
	if !policy.Valid(version) {
		return domain.ResolvedPackage{}, domain.Tag(domain.ErrInstall,
			zerr.With(zerr.New("a semantic version is required to install from a local source"), "source", from))
	}

	m.acquire(version)
	defer m.release(version)

	if err := m.install(ctx, from, version); err != nil {
		return domain.ResolvedPackage{}, err
	}
	m.retain(m.keepAfterLoad(version)...)

	resolved, err := m.resolve(version)
	if err != nil {
		return domain.ResolvedPackage{}, err
	}
	m.markInUse(version)
	return resolved, nil
}

// Installed lists the versions in the store, oldest first.
func (m *Manager) Installed() ([]domain.InstalledVersion, error) {
	versions, err := m.factory.store.ListVersions(m.root)
	if err != nil {
		return nil, err
	}
	policy.Sort(versions)
	latest, _ := policy.PickLatest(versions)

	installed := make([]domain.InstalledVersion, 0, len(versions))
	for _, v := range versions {
		compat := domain.AnyRange
		if manifest, err := m.factory.manifests.Read(filepath.Join(m.root, v)); err == nil {
			compat = manifest.Range
		}
		installed = append(installed, domain.InstalledVersion{
			Version:    v,
			Range:      compat,
			Compatible: policy.Satisfies(m.host, compat),
			Latest:     v == latest,
		})
	}
	return installed, nil
}

// RemoveVersion deletes one installed version.
func (m *Manager) RemoveVersion(version string) error {
	return m.factory.store.Remove(m.root, version)
}

// RemovePackage deletes every installed version of the package.
func (m *Manager) RemovePackage() error {
	return m.factory.store.RemoveAll(m.root)
}

func (m *Manager) loadPath(path string) (domain.ResolvedPackage, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return domain.ResolvedPackage{}, zerr.With(zerr.Wrap(err, "failed to resolve package path"), "path", path)
	}
	manifest, err := m.factory.manifests.Read(path)
	if err != nil {
		return domain.ResolvedPackage{}, err
	}
	return domain.ResolvedPackage{
		Name:            m.identity.Name,
		Version:         manifest.Version,
		Path:            path,
		ManifestVersion: manifest.Version,
		Main:            manifest.Main,
	}, nil
}

// selectVersion picks the version to load. localHit is true when the
// version came from the local best fit.
func (m *Manager) selectVersion(ctx context.Context, explicit string) (version string, localHit bool, err error) {
	switch {
	case explicit == "":
	case policy.Valid(explicit):
		return explicit, false, nil
	case policy.IsRange(explicit):
		version, err := m.pickInRange(ctx, explicit)
		return version, false, err
	default:
		version, err := m.resolveDistTag(ctx, explicit)
		return version, false, err
	}

	if best, ok := policy.BestFit(m.localCandidates(), m.host); ok {
		return best.Version, true, nil
	}

	candidates, err := m.queryVersions(ctx)
	if err != nil {
		return "", false, err
	}
	if best, ok := policy.BestFit(candidates, m.host); ok {
		return best.Version, false, nil
	}

	return "", false, domain.Tag(domain.ErrNoSatisfyingVersion, zerr.With(
		zerr.New(fmt.Sprintf("%s has no version accepting host %s", m.identity.Source, m.host)),
		"candidates", len(candidates),
	))
}

// pickInRange returns the latest host-compatible version inside an explicit
// range, local versions first.
func (m *Manager) pickInRange(ctx context.Context, constraint string) (string, error) {
	local := m.localCandidates()
	if best, ok := policy.BestFit(inRange(local, constraint), m.host); ok {
		return best.Version, nil
	}

	remote, err := m.queryVersions(ctx)
	if err != nil {
		return "", err
	}
	if best, ok := policy.BestFit(inRange(remote, constraint), m.host); ok {
		return best.Version, nil
	}
	return "", domain.Tag(domain.ErrNoSatisfyingVersion, zerr.New(
		fmt.Sprintf("%s has no version in %s", m.identity.Source, constraint)))
}

// inRange filters candidates to those whose version lies in constraint.
func inRange(candidates []domain.CandidateVersion, constraint string) []domain.CandidateVersion {
	matching := make([]domain.CandidateVersion, 0, len(candidates))
	for _, c := range candidates {
		if policy.InRange(c.Version, constraint) {
			matching = append(matching, c)
		}
	}
	return matching
}

func (m *Manager) resolveDistTag(ctx context.Context, tag string) (string, error) {
	ctx, span := m.factory.tracer.Start(ctx, "registry.dist_tags", ports.WithAttribute("package", m.identity.Source))
	defer span.End()

	tags, err := m.factory.registry.DistTags(ctx, m.identity.Source)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	version, ok := tags[tag]
	if !ok || !policy.Valid(version) {
		return "", domain.Tag(domain.ErrNoSatisfyingVersion,
			zerr.With(zerr.With(domain.ErrUnknownDistTag, "tag", tag), "package", m.identity.Source))
	}
	return version, nil
}

func (m *Manager) queryVersions(ctx context.Context) ([]domain.CandidateVersion, error) {
	ctx, span := m.factory.tracer.Start(ctx, "registry.query_versions", ports.WithAttribute("package", m.identity.Source))
	defer span.End()

	candidates, err := m.factory.registry.QueryVersions(ctx, m.identity.Source)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("count", len(candidates))
	return candidates, nil
}

// localCandidates pairs each installed version with the range its manifest declares.
// Unreadable store entries are skipped.
func (m *Manager) localCandidates() []domain.CandidateVersion {
	versions, err := m.factory.store.ListVersions(m.root)
	if err != nil {
		m.factory.logger.Debug(fmt.Sprintf("%s: cannot list installed versions: %v", m.identity.Name, err))
		return nil
	}

	candidates := make([]domain.CandidateVersion, 0, len(versions))
	for _, v := range versions {
		manifest, err := m.factory.manifests.Read(filepath.Join(m.root, v))
		if err != nil {
			m.factory.logger.Debug(fmt.Sprintf("%s@%s: skipping unreadable manifest: %v", m.identity.Name, v, err))
			continue
		}
		candidates = append(candidates, domain.NewCandidate(v, manifest.Range))
	}
	return candidates
}

// materialize makes sure root/version is installed.
func (m *Manager) materialize(ctx context.Context, version string) error {
	if m.factory.store.Exists(m.root, version) {
		return nil
	}
	return m.install(ctx, m.identity.Source, version)
}

// install runs the installer, collapsing concurrent requests for the same target.
func (m *Manager) install(ctx context.Context, source, version string) error {
	key := m.root + "@" + version
	_, err, _ := m.factory.installs.Do(key, func() (any, error) {
		ctx, span := m.factory.tracer.Start(ctx, "installer.install",
			ports.WithAttribute("package", source),
			ports.WithAttribute("version", version),
		)
		defer span.End()

		loc, err := m.factory.installer.Install(ctx, domain.InstallRequest{
			PackageName:     source,
			Version:         version,
			DestinationRoot: m.root,
			Registry:        m.factory.opts.Registry,
		})
		if err != nil {
			span.RecordError(err)
			if !errors.Is(err, domain.ErrInstall) {
				err = domain.Tag(domain.ErrInstall, err)
			}
			return nil, err
		}
		m.factory.logger.Debug(fmt.Sprintf("installed %s@%s into %s", m.identity.Name, loc.Version, loc.Path))
		return loc, nil
	})
	return err
}

// resolve reads the installed manifest and checks it still accepts the host.
func (m *Manager) resolve(version string) (domain.ResolvedPackage, error) {
	dir := filepath.Join(m.root, version)
	manifest, err := m.factory.manifests.Read(dir)
	if err != nil {
		return domain.ResolvedPackage{}, domain.Tag(domain.ErrVersionMismatch, err)
	}
	if !policy.Satisfies(m.host, manifest.Range) {
		return domain.ResolvedPackage{}, domain.Tag(domain.ErrVersionMismatch, zerr.With(zerr.With(
			zerr.New(fmt.Sprintf("%s@%s requires host %s", m.identity.Name, version, manifest.Range)),
			"host", m.host), "path", dir))
	}
	return domain.ResolvedPackage{
		Name:            m.identity.Name,
		Version:         version,
		Path:            dir,
		ManifestVersion: manifest.Version,
		Main:            manifest.Main,
	}, nil
}

func (m *Manager) acquire(version string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[version]++
}

func (m *Manager) release(version string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active[version]--; m.active[version] <= 0 {
		delete(m.active, version)
	}
}

func (m *Manager) markInUse(version string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != version {
		m.previous = m.current
		m.current = version
	}
}
