package main

import (
	"github.com/spf13/cobra"

	"github.com/reflaxe-ocaml/guards/internal/guard"
	"github.com/reflaxe-ocaml/guards/internal/report"
)

func newReporter(cmd *cobra.Command) *report.Reporter {
	return report.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// newCheckCmd builds the subcommand running a single check; its short help
// is the check's own description.
func newCheckCmd(opts *rootOptions, c guard.Check, long string) *cobra.Command {
	return &cobra.Command{
		Use:   c.Name(),
		Short: c.Description(),
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runCheck(cmd, c)
		},
	}
}

func newLegacyPathCmd(opts *rootOptions) *cobra.Command {
	return newCheckCmd(opts, guard.LegacyPath{}, "")
}

func newLocalPathCmd(opts *rootOptions) *cobra.Command {
	cmd := newCheckCmd(opts, guard.LocalPath{}, `Scan tracked text files, or only staged files with --staged, for
absolute home directory paths from macOS, Linux and Windows machines.

Example:
  guards local-path --staged`)
	cmd.Flags().BoolVar(&opts.staged, "staged", false, "Scan staged files instead of all tracked files")
	return cmd
}

func newProviderBoundaryCmd(opts *rootOptions) *cobra.Command {
	return newCheckCmd(opts, guard.ProviderBoundary{}, "")
}

func newStdlibBoundaryCmd(opts *rootOptions) *cobra.Command {
	return newCheckCmd(opts, guard.StdlibBoundary{}, "")
}

func newVersionSyncCmd(opts *rootOptions) *cobra.Command {
	cmd := newCheckCmd(opts, guard.VersionSync{}, `Compare the version in package.json with package-lock.json, haxelib.json
and the library hxml, and require the GPL-3.0 license.

With --strict-license, also fail on forbidden license markers in tracked
text and on any tracked file under `+guard.VendorRoot+`.`)
	cmd.Flags().BoolVar(&opts.strictLicense, "strict-license", false, "Also scan tracked text for forbidden license markers")
	return cmd
}
