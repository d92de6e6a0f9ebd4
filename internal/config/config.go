// Package config handles loading, saving, and resolving the pinkeeper
// configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/skaphos/pinkeeper/internal/gitx"
	"github.com/skaphos/pinkeeper/internal/pinfile"
	"go.yaml.in/yaml/v3"
)

const (
	// LocalConfigFilename is the per-directory pinkeeper config file.
	LocalConfigFilename = ".pinkeeper.yaml"
	// LocalTOMLConfigFilename is the TOML spelling of the local config file.
	LocalTOMLConfigFilename = ".pinkeeper.toml"
	// ConfigAPIVersion is the current config schema apiVersion.
	ConfigAPIVersion = "skaphos.io/pinkeeper/v1beta1"
	// ConfigKind is the current config schema kind.
	ConfigKind = "PinKeeperConfig"
	// EnvConfig overrides the config location.
	EnvConfig = "PINKEEPER_CONFIG"
)

// Remote describes where registry names are cloned from.
type Remote struct {
	BaseURL string `yaml:"base_url" toml:"base_url"`
	VCS     string `yaml:"vcs,omitempty" toml:"vcs,omitempty"`
}

// Block describes the registry block inside the source file.
type Block struct {
	VarName      string `yaml:"var_name" toml:"var_name"`
	TypeName     string `yaml:"type_name" toml:"type_name"`
	BeginMarker  string `yaml:"begin_marker" toml:"begin_marker"`
	EndMarker    string `yaml:"end_marker" toml:"end_marker"`
	MaxLineWidth int    `yaml:"max_line_width" toml:"max_line_width"`
	Annotation   string `yaml:"annotation" toml:"annotation"`
}

// Defaults holds default values for operations.
type Defaults struct {
	Concurrency int `yaml:"concurrency" toml:"concurrency"`
	// TimeoutSeconds bounds each repository's work. Negative disables it.
	TimeoutSeconds int `yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// Config represents the pinkeeper configuration.
type Config struct {
	APIVersion string   `yaml:"apiVersion" toml:"apiVersion"`
	Kind       string   `yaml:"kind" toml:"kind"`
	SourceFile string   `yaml:"source_file" toml:"source_file"`
	Remote     Remote   `yaml:"remote" toml:"remote"`
	Registry   Block    `yaml:"registry" toml:"registry"`
	Defaults   Defaults `yaml:"defaults" toml:"defaults"`
	Only       []string `yaml:"only,omitempty" toml:"only,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() Config {
	opts := pinfile.DefaultOptions()
	return Config{
		APIVersion: ConfigAPIVersion,
		Kind:       ConfigKind,
		SourceFile: "pins.go",
		Remote: Remote{
			BaseURL: gitx.DefaultBaseURL,
			VCS:     "git",
		},
		Registry: Block{
			VarName:      opts.VarName,
			TypeName:     opts.TypeName,
			BeginMarker:  opts.BeginMarker,
			EndMarker:    opts.EndMarker,
			MaxLineWidth: opts.MaxLineWidth,
			Annotation:   opts.Annotation,
		},
		Defaults: Defaults{
			Concurrency:    1,
			TimeoutSeconds: 120,
		},
	}
}

// PinfileOptions converts the block settings for the pinfile package.
func (c *Config) PinfileOptions() pinfile.Options {
	return pinfile.Options{
		BeginMarker:  c.Registry.BeginMarker,
		EndMarker:    c.Registry.EndMarker,
		VarName:      c.Registry.VarName,
		TypeName:     c.Registry.TypeName,
		MaxLineWidth: c.Registry.MaxLineWidth,
		Annotation:   c.Registry.Annotation,
	}
}

// ConfigDir returns the platform-appropriate config directory path.
// It checks, in order: the override parameter, PINKEEPER_CONFIG env var,
// and finally os.UserConfigDir()/pinkeeper.
func ConfigDir(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return filepath.Dir(override), nil
		}
		return override, nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if isConfigFilePath(env) {
			return filepath.Dir(env), nil
		}
		return env, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "pinkeeper"), nil
}

// ConfigPath resolves the config file path from override/env/defaults.
func ConfigPath(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return override, nil
		}
		return filepath.Join(override, "config.yaml"), nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if isConfigFilePath(env) {
			return env, nil
		}
		return filepath.Join(env, "config.yaml"), nil
	}

	dir, err := ConfigDir("")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// InitConfigPath resolves where "pinkeeper init" should write config.
// Order: explicit override, PINKEEPER_CONFIG, then local dotfile in cwd.
func InitConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv(EnvConfig) != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(cwd, LocalConfigFilename), nil
}

// ResolveConfigPath resolves config for runtime commands.
// Order: explicit override, PINKEEPER_CONFIG, nearest local dotfile in cwd/parents,
// then global platform config path.
func ResolveConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv(EnvConfig) != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	localPath, err := FindNearestConfigPath(cwd)
	if err != nil {
		return "", err
	}
	if localPath != "" {
		return localPath, nil
	}

	return ConfigPath("")
}

// FindNearestConfigPath searches cwd and each parent directory for
// .pinkeeper.yaml, then .pinkeeper.toml. It returns an empty string when no
// local config file is found.
func FindNearestConfigPath(cwd string) (string, error) {
	dir := cwd
	for {
		for _, name := range []string{LocalConfigFilename, LocalTOMLConfigFilename} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			} else if !os.IsNotExist(err) {
				return "", err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads the config file from the given path. Files ending in .toml are
// decoded as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigGVK(&cfg)
	if err := validateConfigGVK(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to DefaultConfig when the file does
// not exist. The boolean reports whether a file was read.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		def := DefaultConfig()
		return &def, false, nil
	}
	return nil, false, err
}

// ResolveSourcePath resolves source_file against the config file location.
// Absolute paths are returned unchanged; relative paths are joined to base,
// the directory containing configPath when base is empty.
func ResolveSourcePath(configPath, base, sourceFile string) string {
	if strings.TrimSpace(sourceFile) == "" {
		return ""
	}
	if filepath.IsAbs(sourceFile) {
		return filepath.Clean(sourceFile)
	}
	if base == "" {
		base = ConfigRoot(configPath)
	}
	if base == "" {
		return filepath.Clean(sourceFile)
	}
	return filepath.Clean(filepath.Join(base, sourceFile))
}

// ConfigRoot returns the effective default root for a config file path.
func ConfigRoot(configPath string) string {
	if strings.TrimSpace(configPath) == "" {
		return ""
	}
	return filepath.Clean(filepath.Dir(configPath))
}

// Save writes the config to the given path.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	applyConfigGVK(cfg)
	if err := validateConfigGVK(cfg); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.SourceFile == "" {
		cfg.SourceFile = def.SourceFile
	}
	if cfg.Remote.BaseURL == "" {
		cfg.Remote.BaseURL = def.Remote.BaseURL
	}
	if cfg.Remote.VCS == "" {
		cfg.Remote.VCS = def.Remote.VCS
	}
	if cfg.Registry.VarName == "" {
		cfg.Registry.VarName = def.Registry.VarName
	}
	if cfg.Registry.TypeName == "" {
		cfg.Registry.TypeName = def.Registry.TypeName
	}
	if cfg.Registry.BeginMarker == "" {
		cfg.Registry.BeginMarker = def.Registry.BeginMarker
	}
	if cfg.Registry.EndMarker == "" {
		cfg.Registry.EndMarker = def.Registry.EndMarker
	}
	if cfg.Registry.MaxLineWidth <= 0 {
		cfg.Registry.MaxLineWidth = def.Registry.MaxLineWidth
	}
	if cfg.Registry.Annotation == "" {
		cfg.Registry.Annotation = def.Registry.Annotation
	}
	if cfg.Defaults.Concurrency <= 0 {
		cfg.Defaults.Concurrency = def.Defaults.Concurrency
	}
	if cfg.Defaults.TimeoutSeconds == 0 {
		cfg.Defaults.TimeoutSeconds = def.Defaults.TimeoutSeconds
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func isConfigFilePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml" || ext == ".toml"
}

func applyConfigGVK(cfg *Config) {
	if cfg == nil {
		return
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = ConfigAPIVersion
	}
	if strings.TrimSpace(cfg.Kind) == "" {
		cfg.Kind = ConfigKind
	}
}

func validateConfigGVK(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.APIVersion != ConfigAPIVersion {
		return fmt.Errorf("unsupported config apiVersion %q (expected %q)", cfg.APIVersion, ConfigAPIVersion)
	}
	if cfg.Kind != ConfigKind {
		return fmt.Errorf("unsupported config kind %q (expected %q)", cfg.Kind, ConfigKind)
	}
	return nil
}
