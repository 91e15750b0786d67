package main

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reflaxe-ocaml/guards/internal/config"
	"github.com/reflaxe-ocaml/guards/internal/guard"
	"github.com/reflaxe-ocaml/guards/internal/guard/policy"
	"github.com/reflaxe-ocaml/guards/internal/pkg/logger"
	"github.com/reflaxe-ocaml/guards/internal/repo"
	"github.com/reflaxe-ocaml/guards/internal/scope"
)

// setup loads configuration, initializes logging and assembles the Env
// shared by the checks of one invocation.
func (o *rootOptions) setup(cmd *cobra.Command) (*guard.Env, *config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("root") {
		cfg.Repo.Root = o.root
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if o.verbose {
		if err := logger.SetLevel("debug"); err != nil {
			return nil, nil, err
		}
	}
	log := logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("command", cmd.Name()),
	)

	files, err := repo.ForBackend(cfg.Repo.Backend, cfg.Repo.Root, log)
	if err != nil {
		return nil, nil, err
	}

	env := &guard.Env{
		Root:          cfg.Repo.Root,
		Files:         files,
		Log:           log,
		Staged:        o.staged,
		StrictLicense: o.strictLicense || cfg.VersionSync.StrictLicense,
		MaxViolations: cfg.LocalPath.MaxViolations,
		DisplayLimit:  cfg.LocalPath.DisplayLimit,
	}

	if cfg.Repo.IgnoreFile != "" {
		path := cfg.Repo.IgnoreFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Repo.Root, path)
		}
		env.Ignore, err = scope.LoadIgnore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load ignore file: %w", err)
		}
	}

	if env.StrictLicense {
		env.LicenseMarkers, err = policy.LoadLicenseMarkers(cfg.VersionSync.MarkersFile)
		if err != nil {
			return nil, nil, err
		}
	}

	log.Debug("run configured",
		zap.String("root", cfg.Repo.Root),
		zap.String("backend", cfg.Repo.Backend),
		zap.Stringer("log_level", logger.GetLevel()),
		zap.Int("ignore_patterns", env.Ignore.Len()),
		zap.Bool("staged", env.Staged),
		zap.Bool("strict_license", env.StrictLicense),
	)
	return env, cfg, nil
}

// runCheck is the RunE body shared by the single-check subcommands.
func (o *rootOptions) runCheck(cmd *cobra.Command, c guard.Check) error {
	env, _, err := o.setup(cmd)
	if err != nil {
		return err
	}
	rep := newReporter(cmd)
	if guard.Execute(cmd.Context(), c, env, rep) {
		return errChecksFailed
	}
	return nil
}
