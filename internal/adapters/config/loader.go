// Package config loads devd.yaml and the devd environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/policy"
	"go.trai.ch/devd/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load discovers devd.yaml from cwd upwards. Without a config file the
// defaults apply and cwd is the project root.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, domain.Tag(domain.ErrConfiguration, zerr.Wrap(err, "failed to resolve working directory"))
	}

	var file Devdfile
	root := cwd
	if configPath, found := findConfiguration(cwd); found {
		if err := readAndUnmarshalYAML(configPath, &file); err != nil {
			return nil, domain.Tag(domain.ErrConfiguration, zerr.With(err, "path", configPath))
		}
		root = filepath.Dir(configPath)
	}

	home, err := ResolveHome(cwd)
	if err != nil {
		return nil, err
	}

	cfg := &domain.Config{
		Home:         home,
		Root:         root,
		Engine:       strings.TrimSpace(file.Engine),
		Registry:     resolveRegistry(file.Registry),
		CorePackage:  withDefault(file.CorePackage, domain.DefaultCorePackage),
		PluginPrefix: withDefault(file.PluginPrefix, domain.DefaultPluginPrefix),
		AutoUpdate:   boolOr(file.AutoUpdate, true),
		AutoClean:    boolOr(file.AutoClean, true),
		Core:         l.packageRequest("core", root, file.Core.Version, file.Core.Path),
	}

	if cfg.Engine != "" && !policy.Valid(cfg.Engine) {
		return nil, domain.Tag(domain.ErrConfiguration, zerr.With(domain.ErrInvalidHostVersion, "engine", cfg.Engine))
	}

	seen := make(map[string]bool, len(file.Plugins))
	for _, dto := range file.Plugins {
		name := strings.TrimSpace(dto.Name)
		if err := domain.ValidatePluginName(name); err != nil {
			return nil, domain.Tag(domain.ErrConfiguration, err)
		}
		if seen[name] {
			return nil, domain.Tag(domain.ErrConfiguration, zerr.With(domain.ErrDuplicatePlugin, "plugin", name))
		}
		seen[name] = true

		cfg.Plugins = append(cfg.Plugins, domain.PluginRequest{
			Name:           name,
			PackageRequest: l.packageRequest(name, root, dto.Version, dto.Path),
		})
	}

	return cfg, nil
}

// ResolveHome returns $DEVD_HOME, or .devd in the user's home directory.
// A relative DEVD_HOME is taken relative to cwd.
func ResolveHome(cwd string) (string, error) {
	if home := strings.TrimSpace(os.Getenv(domain.HomeEnvVar)); home != "" {
		if filepath.IsAbs(home) {
			return filepath.Clean(home), nil
		}
		return filepath.Join(cwd, home), nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", domain.Tag(domain.ErrConfiguration, zerr.Wrap(err, domain.ErrHomeNotFound.Error()))
	}
	if userHome == "" {
		return "", domain.Tag(domain.ErrConfiguration, domain.ErrHomeNotFound)
	}
	return filepath.Join(userHome, domain.DevdDirName), nil
}

func (l *Loader) packageRequest(name, root, version, path string) domain.PackageRequest {
	req := domain.PackageRequest{Version: strings.TrimSpace(version), Path: strings.TrimSpace(path)}
	if req.Path == "" {
		return req
	}
	if !filepath.IsAbs(req.Path) {
		req.Path = filepath.Join(root, req.Path)
	}
	if req.Version != "" && l.Logger != nil {
		l.Logger.Warn(fmt.Sprintf("%s: both path and version are set in %s, the path is used", name, domain.ConfigFileName))
	}
	return req
}

func findConfiguration(cwd string) (string, bool) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into target.
// An empty file leaves target untouched.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath comes from discovery
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}
	if parseErr := yaml.Unmarshal(data, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}
	return nil
}

func resolveRegistry(configured string) string {
	registry := strings.TrimSpace(os.Getenv(domain.RegistryEnvVar))
	if registry == "" {
		registry = strings.TrimSpace(configured)
	}
	if registry == "" {
		registry = domain.DefaultRegistryURL
	}
	return strings.TrimRight(registry, "/")
}

func withDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
