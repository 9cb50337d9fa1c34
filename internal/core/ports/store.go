package ports

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// VersionStore reads and prunes version directories on disk.
// A root is the directory whose children are version directories.
type VersionStore interface {
	// EnsureRoot creates root if it does not exist.
	EnsureRoot(root string) error
	// ListVersions returns the child directory names that are valid semantic versions.
	// A missing root yields an empty list.
	ListVersions(root string) ([]string, error)
	// Exists reports whether root/version is present and holds its primary entry file.
	Exists(root, version string) bool
	// Remove deletes root/version.
	Remove(root, version string) error
	// RemoveAll deletes root and everything below it.
	RemoveAll(root string) error
	// ListPackages returns the names of the package directories below root.
	ListPackages(root string) ([]string, error)
}
