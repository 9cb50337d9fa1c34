package config

// Devdfile is the structure of devd.yaml.
type Devdfile struct {
	Engine       string      `yaml:"engine"`
	Registry     string      `yaml:"registry"`
	CorePackage  string      `yaml:"corePackage"`
	PluginPrefix string      `yaml:"pluginPrefix"`
	AutoUpdate   *bool       `yaml:"autoUpdate"`
	AutoClean    *bool       `yaml:"autoClean"`
	Core         PackageDTO  `yaml:"core"`
	Plugins      []PluginDTO `yaml:"plugins"`
}

// PackageDTO pins a package in the configuration.
type PackageDTO struct {
	Version string `yaml:"version"`
	Path    string `yaml:"path"`
}

// PluginDTO is one entry of the plugins list.
type PluginDTO struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Path    string `yaml:"path"`
}
