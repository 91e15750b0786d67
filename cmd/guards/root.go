package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// errChecksFailed signals that at least one check reported a violation.
var errChecksFailed = errors.New("guard checks failed")

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	root       string
	configFile string
	verbose    bool

	// Set by the subcommands that accept them.
	staged        bool
	strictLicense bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "guards",
		Short: "Repository guardrail checks for CI",
		Long: `guards scans the version-controlled files of a repository and fails
when a policy is violated.

Checks:
  legacy-path        forbid references to retired package and tool paths
  local-path         forbid machine-local absolute home paths in text
  provider-boundary  keep backend provider casts in the resolver
  stdlib-boundary    keep vendor/haxe untracked and sync targets .hx only
  version-sync       keep versions and license consistent across metadata
  all                run every check

Configuration is read from guards.yaml (., ./config or ./.github) or the
file given by --config, and from GUARDS_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.root, "root", ".", "Repository root to check")
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default: guards.yaml if present)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	cmd.AddCommand(
		newLegacyPathCmd(opts),
		newLocalPathCmd(opts),
		newProviderBoundaryCmd(opts),
		newStdlibBoundaryCmd(opts),
		newVersionSyncCmd(opts),
		newAllCmd(opts),
	)
	return cmd
}
