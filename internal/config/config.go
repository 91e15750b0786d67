// Package config provides configuration management for the guard checks.
//
// Configuration is loaded from:
// 1. guards.yaml file (optional, or the file named by --config)
// 2. Environment variables with the GUARDS_ prefix (GUARDS_LOG_LEVEL, GUARDS_REPO_BACKEND)
// 3. Default values
//
// Import Path: github.com/reflaxe-ocaml/guards/internal/config
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	guarderrors "github.com/reflaxe-ocaml/guards/internal/pkg/errors"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "GUARDS"

// Enumerator backends.
const (
	BackendGit   = "git"
	BackendGoGit = "gogit"
)

// Config is the root configuration structure.
type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Repo        RepoConfig        `mapstructure:"repo"`
	LocalPath   LocalPathConfig   `mapstructure:"local_path"`
	VersionSync VersionSyncConfig `mapstructure:"version_sync"`
	Worker      WorkerConfig      `mapstructure:"worker"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// RepoConfig selects the repository being checked and how its files are listed.
type RepoConfig struct {
	Root    string `mapstructure:"root"`
	Backend string `mapstructure:"backend"` // git or gogit

	// IgnoreFile holds extra gitignore-style excludes, relative to Root.
	// A missing file is not an error.
	IgnoreFile string `mapstructure:"ignore_file"`
}

// LocalPathConfig caps the local-path check output.
type LocalPathConfig struct {
	MaxViolations int `mapstructure:"max_violations"`
	DisplayLimit  int `mapstructure:"display_limit"`
}

// VersionSyncConfig controls the strict-license variant of the version-sync check.
type VersionSyncConfig struct {
	StrictLicense bool   `mapstructure:"strict_license"`
	MarkersFile   string `mapstructure:"markers_file"` // empty: embedded defaults
}

// WorkerConfig contains worker pool settings for `guards all`.
type WorkerConfig struct {
	PoolSize int `mapstructure:"pool_size"`
}

// Load reads configuration from file and environment variables.
// file may be empty, in which case guards.yaml is searched for and is optional.
func Load(file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("guards")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("./.github")
	}

	// Maps nested config: repo.backend → GUARDS_REPO_BACKEND
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for configuration errors.
func (c *Config) Validate() error {
	switch c.Repo.Backend {
	case BackendGit, BackendGoGit:
	default:
		return invalid("repo.backend must be %q or %q, got %q", BackendGit, BackendGoGit, c.Repo.Backend)
	}
	if c.Repo.Root == "" {
		return invalid("repo.root must not be empty")
	}
	if c.LocalPath.MaxViolations <= 0 {
		return invalid("local_path.max_violations must be positive")
	}
	if c.LocalPath.DisplayLimit <= 0 {
		return invalid("local_path.display_limit must be positive")
	}
	if c.LocalPath.DisplayLimit > c.LocalPath.MaxViolations {
		return invalid("local_path.display_limit (%d) must not exceed local_path.max_violations (%d)",
			c.LocalPath.DisplayLimit, c.LocalPath.MaxViolations)
	}
	if c.Worker.PoolSize <= 0 {
		return invalid("worker.pool_size must be positive")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return guarderrors.Wrap(guarderrors.ErrInvalidConfig, guarderrors.CodeConfigInvalid, fmt.Sprintf(format, args...))
}

func setDefaults(v *viper.Viper) {
	// Log
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	// Repo
	v.SetDefault("repo.root", ".")
	v.SetDefault("repo.backend", BackendGit)
	v.SetDefault("repo.ignore_file", ".guardsignore")

	// Local path check
	v.SetDefault("local_path.max_violations", 200)
	v.SetDefault("local_path.display_limit", 40)

	// Version sync check
	v.SetDefault("version_sync.strict_license", false)
	v.SetDefault("version_sync.markers_file", "")

	// Worker pool
	v.SetDefault("worker.pool_size", 5)
}
