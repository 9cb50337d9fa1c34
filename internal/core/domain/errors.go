package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// Failure kinds surfaced to callers of a package load. Match them with errors.Is.
var (
	// ErrConfiguration is returned when the environment or the configuration is unusable.
	ErrConfiguration = zerr.New("configuration error")

	// ErrNoSatisfyingVersion is returned when neither the store nor the registry has a compatible version.
	ErrNoSatisfyingVersion = zerr.New("no satisfying version")

	// ErrRegistry is returned when the registry cannot be queried or does not know the package.
	ErrRegistry = zerr.New("registry error")

	// ErrInstall is returned when the install worker fails or returns a malformed response.
	ErrInstall = zerr.New("install failed")

	// ErrVersionMismatch is returned when an installed package does not accept the host version.
	ErrVersionMismatch = zerr.New("version mismatch")
)

var (
	// ErrHomeNotFound is returned when neither DEVD_HOME nor a user home directory is available.
	ErrHomeNotFound = zerr.New("cannot determine devd home directory")

	// ErrInvalidHostVersion is returned when the host compatibility version is not a semantic version.
	ErrInvalidHostVersion = zerr.New("host version is not a valid semantic version")

	// ErrInvalidPluginName is returned when a plugin name cannot be used as a directory name.
	ErrInvalidPluginName = zerr.New("invalid plugin name")

	// ErrDuplicatePlugin is returned when the configuration lists the same plugin twice.
	ErrDuplicatePlugin = zerr.New("plugin configured more than once")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file is not valid YAML.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrPackageNotFound is returned when the registry has no record of a package.
	ErrPackageNotFound = zerr.New("package not found in registry")

	// ErrVersionNotPublished is returned when the registry knows the package but not the version.
	ErrVersionNotPublished = zerr.New("version not published")

	// ErrUnknownDistTag is returned when an explicit version names a dist-tag the registry does not have.
	ErrUnknownDistTag = zerr.New("unknown dist-tag")

	// ErrManifestInvalid is returned when package.json exists but cannot be parsed.
	ErrManifestInvalid = zerr.New("invalid package manifest")

	// ErrIntegrityMismatch is returned when a downloaded tarball does not match its published digest.
	ErrIntegrityMismatch = zerr.New("integrity check failed")

	// ErrUnsupportedIntegrity is returned when the integrity string uses an unknown algorithm.
	ErrUnsupportedIntegrity = zerr.New("unsupported integrity algorithm")

	// ErrUnsafeArchivePath is returned when a tarball entry would be written outside the destination.
	ErrUnsafeArchivePath = zerr.New("archive entry escapes destination")

	// ErrWorkerProtocol is returned when the install worker output cannot be decoded.
	ErrWorkerProtocol = zerr.New("malformed worker response")

	// ErrWorkerRequest is returned when the install worker receives an unusable request.
	ErrWorkerRequest = zerr.New("malformed worker request")

	// ErrPackageNotInstalled is returned when removing a version that is not in the store.
	ErrPackageNotInstalled = zerr.New("package version is not installed")

	// ErrStoreCreateFailed is returned when a store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create store directory")

	// ErrStoreReadFailed is returned when a store directory cannot be listed.
	ErrStoreReadFailed = zerr.New("failed to read store directory")

	// ErrStoreRemoveFailed is returned when a version directory cannot be deleted.
	ErrStoreRemoveFailed = zerr.New("failed to remove version directory")

	// ErrNoLoader is returned when no module loader strategy accepts a package.
	ErrNoLoader = zerr.New("no loader for package")
)

// KindError attaches one of the failure kinds to an underlying error.
// errors.Is matches both the kind and anything in the wrapped chain.
type KindError struct {
	Kind error
	Err  error
}

// Tag marks err with kind. A nil err yields the bare kind.
func Tag(kind, err error) error {
	if err == nil {
		return kind
	}
	return &KindError{Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *KindError) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

// Message returns the kind text without the wrapped chain.
func (e *KindError) Message() string {
	return e.Kind.Error()
}

// Unwrap returns the wrapped error.
func (e *KindError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the attached kind.
func (e *KindError) Is(target error) bool {
	return target == e.Kind
}

// KindOf returns the outermost failure kind attached to err, or nil.
func KindOf(err error) error {
	var kindErr *KindError
	if errors.As(err, &kindErr) {
		return kindErr.Kind
	}
	return nil
}
