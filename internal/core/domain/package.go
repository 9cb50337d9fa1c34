package domain

import (
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// PackageIdentity names a package managed by the engine.
// Name is the local name used for the store directory, Source the registry name.
type PackageIdentity struct {
	Name   string
	Source string
	IsCore bool
}

// CoreIdentity returns the identity of the core package published as source.
func CoreIdentity(source string) PackageIdentity {
	if source == "" {
		source = DefaultCorePackage
	}
	return PackageIdentity{Name: CoreName, Source: source, IsCore: true}
}

// PluginIdentity returns the identity of a plugin. Scoped names and names already
// carrying the prefix are published verbatim, others get the prefix prepended.
func PluginIdentity(name, prefix string) PackageIdentity {
	source := name
	if !strings.HasPrefix(name, "@") && !strings.HasPrefix(name, prefix) {
		source = prefix + name
	}
	return PackageIdentity{Name: name, Source: source}
}

// ValidatePluginName rejects names that cannot be a store directory.
// Scoped names ("@scope/name") are allowed.
func ValidatePluginName(name string) error {
	invalid := func(reason string) error {
		return zerr.With(zerr.With(ErrInvalidPluginName, "plugin", name), "reason", reason)
	}

	if name == "" {
		return invalid("empty name")
	}
	if name == CoreName {
		return invalid("reserved for the core package")
	}
	if strings.ContainsAny(name, `\:`) {
		return invalid("contains a path separator")
	}

	parts := strings.Split(name, "/")
	switch {
	case len(parts) == 2 && strings.HasPrefix(parts[0], "@") && len(parts[0]) > 1:
	case len(parts) == 1:
	default:
		return invalid("only scoped names may contain '/'")
	}
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, ".") {
			return invalid("segments must not be empty or start with '.'")
		}
	}
	return nil
}

// String returns the local name of the package.
func (p PackageIdentity) String() string {
	return p.Name
}

// CandidateVersion is a version together with the host range it declares.
type CandidateVersion struct {
	Version string
	Range   string
}

// NewCandidate builds a candidate, normalizing an empty range to "*".
func NewCandidate(version, compat string) CandidateVersion {
	compat = strings.TrimSpace(compat)
	if compat == "" {
		compat = AnyRange
	}
	return CandidateVersion{Version: version, Range: compat}
}

// AnyRange is the range that every host satisfies.
const AnyRange = "*"

// ResolvedPackage is the result of a successful load.
// An empty Version is legal for packages loaded from a path without a manifest.
type ResolvedPackage struct {
	Name            string
	Version         string
	Path            string
	ManifestVersion string
	Main            string
}

// EntryPath returns the absolute path of the primary entry file.
func (r ResolvedPackage) EntryPath() string {
	main := r.Main
	if main == "" {
		main = DefaultEntryFile
	}
	if filepath.IsAbs(main) {
		return main
	}
	return filepath.Join(r.Path, filepath.FromSlash(main))
}

// LoadRequest is a caller's request for a package.
// Path wins over Version; both empty means best fit.
type LoadRequest struct {
	Version string
	Path    string
}

// Manifest is the subset of package.json the engine reads.
type Manifest struct {
	Name    string
	Version string
	Range   string
	Main    string
}

// InstallRequest asks the install worker to materialize one version.
type InstallRequest struct {
	PackageName     string `json:"packageName"`
	Version         string `json:"version"`
	DestinationRoot string `json:"destinationRoot"`
	Registry        string `json:"registry,omitempty"`
}

// InstalledLocation is where a version has been placed.
type InstalledLocation struct {
	Version string `json:"version"`
	Path    string `json:"path"`
}

// InstallResponse is the single message written by the install worker.
type InstallResponse struct {
	Version string `json:"version,omitempty"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

// InstalledVersion describes a version present in the store.
type InstalledVersion struct {
	Version    string
	Range      string
	Compatible bool
	Latest     bool
}

// Capability is the handle a module loader returns for a package.
type Capability any
