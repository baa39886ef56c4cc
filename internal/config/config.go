// Package config provides configuration loading and discovery for bricks.
//
// Configuration is loaded from multiple sources with the following priority
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (BRICKS_* prefix)
//  3. Config file (closest .bricks.toml or bricks.toml)
//  4. Built-in defaults
//
// Config file discovery follows a cascading pattern: starting from the
// target directory, walk up the filesystem until a config file is found.
// The closest config wins (no merging).
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/dehydratedfish/bricks/internal/brickyard"
)

// ConfigFileNames defines the config file names to search for, in priority order.
var ConfigFileNames = []string{".bricks.toml", "bricks.toml"}

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "BRICKS_"

// Config represents the complete bricks configuration.
type Config struct {
	// BuildType is the active build type ("debug", "release", ...) used to
	// evaluate field predicates.
	BuildType string `koanf:"build-type"`

	// Platform names the target platform entry (spec §6's closed table).
	Platform string `koanf:"platform"`

	// Group selects which tagged executables get built.
	Group string `koanf:"group"`

	// BrickyardPath is the brickyard file to load/save.
	BrickyardPath string `koanf:"brickyard-path"`

	Verbose bool `koanf:"verbose"`

	// ConfigFile is the path to the config file that was loaded (if any).
	// This is metadata, not loaded from config.
	ConfigFile string `koanf:"-"`
}

// Default returns the built-in configuration: the host's native platform
// entry, an empty build type and group, and the brickyard's own default
// path.
func Default() *Config {
	yardPath, _ := brickyard.DefaultPath()
	return &Config{
		Platform:      hostPlatformName(),
		BrickyardPath: yardPath,
	}
}

func hostPlatformName() string {
	switch runtime.GOOS {
	case "windows":
		return "win32"
	case "darwin":
		return "darwin"
	default:
		return "linux"
	}
}

// Load loads configuration for a target directory. It discovers the
// closest config file and applies environment variable overrides.
func Load(targetPath string) (*Config, error) {
	return loadWithConfigPath(Discover(targetPath))
}

// LoadFromFile loads configuration from a specific config file path.
// Unlike Load, it does not perform config discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return loadWithConfigPath(configPath)
}

func loadWithConfigPath(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// BRICKS_BUILD_TYPE -> build-type, BRICKS_BRICKYARD_PATH -> brickyard-path
	if err := k.Load(env.Provider(EnvPrefix, ".", envKeyTransform), nil); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.ConfigFile = configPath
	return cfg, nil
}

// knownHyphenatedKeys maps dot-separated env fragments to their hyphenated
// config-key equivalents.
var knownHyphenatedKeys = map[string]string{
	"build.type":     "build-type",
	"brickyard.path": "brickyard-path",
}

// envKeyTransform converts environment variable names to config keys.
// BRICKS_PLATFORM -> platform, BRICKS_BUILD_TYPE -> build-type.
func envKeyTransform(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", ".")
	for pattern, replacement := range knownHyphenatedKeys {
		s = strings.ReplaceAll(s, pattern, replacement)
	}
	return s
}

// Discover finds the closest config file for a target directory, walking
// up the filesystem tree. Returns empty string if none is found.
func Discover(targetPath string) string {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}

	dir := absPath
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
