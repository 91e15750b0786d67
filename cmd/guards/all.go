package main

import (
	"github.com/spf13/cobra"

	"github.com/reflaxe-ocaml/guards/internal/guard"
)

func newAllCmd(opts *rootOptions) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run every check",
		Long: `Run every check on a worker pool and print their results in a fixed
order. Exits non-zero when any check fails.

Example:
  guards all --only legacy-path,local-path --staged`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			checks, err := guard.Select(only)
			if err != nil {
				return err
			}
			env, cfg, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			failed, err := guard.RunAll(cmd.Context(), checks, env, cfg.Worker.PoolSize,
				cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if failed {
				return errChecksFailed
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&only, "only", nil, "Run only the named checks, in the order given")
	cmd.Flags().BoolVar(&opts.staged, "staged", false, "Scan staged files in the local-path check")
	cmd.Flags().BoolVar(&opts.strictLicense, "strict-license", false, "Enable the strict license variant of version-sync")
	return cmd
}
