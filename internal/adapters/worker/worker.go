// Package worker fetches, verifies and places one package version.
// It runs inside the short-lived process the installer spawns.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/git-pkgs/registries"
	"github.com/git-pkgs/registries/fetch"
	"go.trai.ch/devd/internal/adapters/registry"
	"go.trai.ch/devd/internal/build"
	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/policy"
	"go.trai.ch/zerr"
)

// Fetcher downloads artifacts.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Artifact, error)
}

// RegistryFunc opens the registry metadata client for a base URL.
type RegistryFunc func(baseURL string) (registries.Registry, error)

// Option configures a Worker.
type Option func(*Worker)

// WithFetcher replaces the artifact fetcher.
func WithFetcher(f Fetcher) Option {
	return func(w *Worker) {
		w.fetcher = f
	}
}

// WithRegistry replaces how registry metadata clients are opened.
func WithRegistry(fn RegistryFunc) Option {
	return func(w *Worker) {
		w.openRegistry = fn
	}
}

// Worker installs package versions into a versioned store.
type Worker struct {
	fetcher      Fetcher
	openRegistry RegistryFunc
}

// New creates a Worker that downloads through a circuit-breaking fetcher.
func New(opts ...Option) *Worker {
	w := &Worker{
		fetcher: NewFetcher(),
		openRegistry: func(baseURL string) (registries.Registry, error) {
			c, err := registry.New(baseURL, registry.DefaultTimeout)
			if err != nil {
				return nil, err
			}
			return c.Registry(), nil
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewFetcher creates the default artifact fetcher, with per-host circuit breakers.
func NewFetcher(opts ...fetch.Option) *fetch.CircuitBreakerFetcher {
	opts = append([]fetch.Option{
		fetch.WithUserAgent("devd/" + build.Version),
		fetch.WithBaseDelay(250 * time.Millisecond),
	}, opts...)
	return fetch.NewCircuitBreakerFetcher(fetch.NewFetcher(opts...))
}

// Serve reads one request from in, installs it and writes exactly one
// response line to out. The returned error mirrors the response.
func (w *Worker) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	var req domain.InstallRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		err = zerr.Wrap(err, domain.ErrWorkerRequest.Error())
		return errors.Join(err, writeResponse(out, domain.InstallResponse{Error: err.Error()}))
	}

	loc, err := w.Install(ctx, req)
	if err != nil {
		return errors.Join(err, writeResponse(out, domain.InstallResponse{Error: err.Error()}))
	}
	return writeResponse(out, domain.InstallResponse{Version: loc.Version, Path: loc.Path})
}

func writeResponse(out io.Writer, resp domain.InstallResponse) error {
	if err := json.NewEncoder(out).Encode(resp); err != nil {
		return zerr.Wrap(err, "failed to write worker response")
	}
	return nil
}

// Install materializes req.Version of req.PackageName under req.DestinationRoot.
// A PackageName that is an absolute path installs from that directory or tarball.
func (w *Worker) Install(ctx context.Context, req domain.InstallRequest) (domain.InstalledLocation, error) {
	if err := validate(req); err != nil {
		return domain.InstalledLocation{}, err
	}

	if err := os.MkdirAll(req.DestinationRoot, domain.DirPerm); err != nil {
		return domain.InstalledLocation{}, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	staging, err := os.MkdirTemp(req.DestinationRoot, ".staging-"+req.Version+"-")
	if err != nil {
		return domain.InstalledLocation{}, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if filepath.IsAbs(req.PackageName) {
		err = w.populateLocal(req.PackageName, staging)
	} else {
		err = w.populateRemote(ctx, req, staging)
	}
	if err != nil {
		return domain.InstalledLocation{}, zerr.With(zerr.With(err, "package", req.PackageName), "version", req.Version)
	}

	dest := filepath.Join(req.DestinationRoot, req.Version)
	if err := place(staging, dest); err != nil {
		return domain.InstalledLocation{}, err
	}
	return domain.InstalledLocation{Version: req.Version, Path: dest}, nil
}

func validate(req domain.InstallRequest) error {
	switch {
	case req.PackageName == "":
		return zerr.With(domain.ErrWorkerRequest, "field", "packageName")
	case !policy.Valid(req.Version):
		return zerr.With(zerr.With(domain.ErrWorkerRequest, "field", "version"), "version", req.Version)
	case !filepath.IsAbs(req.DestinationRoot):
		return zerr.With(zerr.With(domain.ErrWorkerRequest, "field", "destinationRoot"), "destinationRoot", req.DestinationRoot)
	default:
		return nil
	}
}

func (w *Worker) populateRemote(ctx context.Context, req domain.InstallRequest, staging string) error {
	reg, err := w.openRegistry(req.Registry)
	if err != nil {
		return err
	}

	versions, err := reg.FetchVersions(ctx, req.PackageName)
	if err != nil {
		if registry.IsNotFound(err) {
			return domain.Tag(domain.ErrPackageNotFound, err)
		}
		return zerr.Wrap(err, "registry query failed")
	}

	var (
		tarball   string
		integrity string
		found     bool
	)
	for _, v := range versions {
		if v.Number != req.Version {
			continue
		}
		found = true
		integrity = v.Integrity
		tarball, _ = v.Metadata["tarball"].(string)
		break
	}
	if !found {
		return domain.ErrVersionNotPublished
	}

	if tarball == "" {
		resolver := fetch.NewResolver()
		resolver.RegisterRegistry(reg)
		info, err := resolver.Resolve(ctx, registry.Ecosystem, req.PackageName, req.Version)
		if err != nil {
			return zerr.Wrap(err, "failed to resolve tarball url")
		}
		tarball = info.URL
	}

	artifact, err := w.fetcher.Fetch(ctx, tarball)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to download tarball"), "url", tarball)
	}
	defer func() { _ = artifact.Body.Close() }()

	return unpack(artifact.Body, integrity, staging)
}

// unpack extracts body into staging while hashing it, then checks the digest.
func unpack(body io.Reader, integrity, staging string) error {
	v, err := newVerifier(integrity)
	if err != nil {
		return err
	}

	r := body
	if v != nil {
		r = io.TeeReader(body, v)
	}
	if err := extractTarball(r, staging); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	// Trailing bytes after the tar footer are part of the digest.
	if _, err := io.Copy(io.Discard, r); err != nil {
		return zerr.Wrap(err, "failed to read tarball")
	}
	return v.verify()
}

func (w *Worker) populateLocal(source, staging string) error {
	info, err := os.Stat(source)
	if err != nil {
		return zerr.Wrap(err, "failed to read local package")
	}

	if info.IsDir() {
		if err := os.CopyFS(staging, os.DirFS(source)); err != nil {
			return zerr.Wrap(err, "failed to copy local package")
		}
		return nil
	}

	//nolint:gosec // G304: source is an explicit user-supplied package path
	f, err := os.Open(source)
	if err != nil {
		return zerr.Wrap(err, "failed to open local tarball")
	}
	defer func() { _ = f.Close() }()
	return extractTarball(f, staging)
}
