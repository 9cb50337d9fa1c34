package domain

// Config is the resolved project configuration.
type Config struct {
	// Home is the base directory of the versioned store.
	Home string
	// Root is the directory containing devd.yaml, or the working directory when none exists.
	Root string
	// Engine is the host version the core must accept.
	Engine string
	// Registry is the base URL of the npm-compatible registry.
	Registry     string
	CorePackage  string
	PluginPrefix string
	AutoUpdate   bool
	AutoClean    bool
	Core         PackageRequest
	Plugins      []PluginRequest
}

// PackageRequest pins a package to a version or a local path.
type PackageRequest struct {
	Version string
	Path    string
}

// PluginRequest is a configured plugin.
type PluginRequest struct {
	Name string
	PackageRequest
}

// LoadRequest converts the request into the engine's form.
func (r PackageRequest) LoadRequest() LoadRequest {
	return LoadRequest{Version: r.Version, Path: r.Path}
}
