package domain

import "path/filepath"

const (
	// DevdDirName is the name of the default base directory under the user's home.
	DevdDirName = ".devd"

	// VersionsDirName holds the installed core versions.
	VersionsDirName = "versions"

	// PluginsDirName holds one directory per plugin, each with its installed versions.
	PluginsDirName = "plugins"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "devd.yaml"

	// ManifestFileName is the name of the package manifest inside a version directory.
	ManifestFileName = "package.json"

	// DefaultEntryFile is the primary entry file when a manifest does not name one.
	DefaultEntryFile = "index.js"

	// HomeEnvVar overrides the base directory.
	HomeEnvVar = "DEVD_HOME"

	// RegistryEnvVar overrides the registry base URL.
	RegistryEnvVar = "DEVD_REGISTRY"

	// DefaultRegistryURL is the npm-compatible registry used when nothing else is configured.
	DefaultRegistryURL = "https://registry.npmjs.org"

	// DefaultCorePackage is the registry name of the core package.
	DefaultCorePackage = "@devd/core"

	// DefaultPluginPrefix is prepended to plugin names to form their registry names.
	DefaultPluginPrefix = "devd-plugin-"

	// CoreName is the local name of the core package.
	CoreName = "core"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// CoreRoot returns the directory holding installed core versions.
func CoreRoot(base string) string {
	return filepath.Join(base, VersionsDirName)
}

// PluginsRoot returns the directory holding every plugin's version directories.
func PluginsRoot(base string) string {
	return filepath.Join(base, PluginsDirName)
}

// PluginRoot returns the directory holding the installed versions of one plugin.
func PluginRoot(base, name string) string {
	return filepath.Join(base, PluginsDirName, name)
}
