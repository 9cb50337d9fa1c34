// Package registry queries npm-compatible registries for published versions.
package registry

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/git-pkgs/registries"
	_ "github.com/git-pkgs/registries/all" // registers the npm ecosystem
	"go.trai.ch/devd/internal/adapters/manifest"
	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// Ecosystem is the registries ecosystem used for every package.
	Ecosystem = "npm"

	// DefaultTimeout bounds a single metadata request.
	DefaultTimeout = 30 * time.Second
)

var (
	_ ports.Registry       = (*Client)(nil)
	_ ports.RegistryOpener = (*Opener)(nil)
)

// Opener implements ports.RegistryOpener.
type Opener struct {
	timeout time.Duration
}

// NewOpener creates an Opener whose clients time out after timeout.
func NewOpener(timeout time.Duration) *Opener {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Opener{timeout: timeout}
}

// Open connects to the registry at baseURL.
func (o *Opener) Open(baseURL string) (ports.Registry, error) {
	return New(baseURL, o.timeout)
}

// Client implements ports.Registry on top of a git-pkgs registry.
// Requests are never retried: a failed query surfaces immediately.
type Client struct {
	reg     registries.Registry
	baseURL string
}

// New creates a Client for the registry at baseURL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = domain.DefaultRegistryURL
	}
	httpClient := registries.NewClient(
		registries.WithTimeout(timeout),
		registries.WithMaxRetries(0),
	)
	reg, err := registries.New(Ecosystem, strings.TrimSuffix(baseURL, "/"), httpClient)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create registry client"), "registry", baseURL)
	}
	return &Client{reg: reg, baseURL: baseURL}, nil
}

// Registry exposes the underlying git-pkgs registry.
func (c *Client) Registry() registries.Registry {
	return c.reg
}

// QueryVersions returns every published version of name with its declared host range.
func (c *Client) QueryVersions(ctx context.Context, name string) ([]domain.CandidateVersion, error) {
	versions, err := c.reg.FetchVersions(ctx, name)
	if err != nil {
		return nil, c.wrap(err, name)
	}

	candidates := make([]domain.CandidateVersion, 0, len(versions))
	for _, v := range versions {
		candidates = append(candidates, domain.NewCandidate(v.Number, engineRange(v.Metadata)))
	}
	slices.SortFunc(candidates, func(a, b domain.CandidateVersion) int {
		return strings.Compare(a.Version, b.Version)
	})
	return candidates, nil
}

// DistTags returns the dist-tags of name.
func (c *Client) DistTags(ctx context.Context, name string) (map[string]string, error) {
	pkg, err := c.reg.FetchPackage(ctx, name)
	if err != nil {
		return nil, c.wrap(err, name)
	}
	tags, _ := pkg.Metadata["dist-tags"].(map[string]string)
	if tags == nil {
		tags = map[string]string{}
	}
	return tags, nil
}

func (c *Client) wrap(err error, name string) error {
	if IsNotFound(err) {
		err = domain.Tag(domain.ErrPackageNotFound, err)
	} else {
		err = zerr.Wrap(err, "registry query failed")
	}
	err = zerr.With(err, "package", name)
	err = zerr.With(err, "registry", c.baseURL)
	return domain.Tag(domain.ErrRegistry, err)
}

// IsNotFound matches both the re-exported sentinel and the ecosystem
// clients' own not-found errors, which do not share it.
func IsNotFound(err error) bool {
	if errors.Is(err, registries.ErrNotFound) {
		return true
	}
	var status interface{ IsNotFound() bool }
	if errors.As(err, &status) && status.IsNotFound() {
		return true
	}
	return strings.HasSuffix(err.Error(), " not found")
}

func engineRange(metadata map[string]any) string {
	engines, ok := metadata["engines"].(map[string]string)
	if !ok {
		return ""
	}
	return engines[manifest.EnginesKey]
}
