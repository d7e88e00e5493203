package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/phishguard/internal/observability"
	"github.com/xkilldash9x/phishguard/internal/store"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the threat_logs schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}

			pool, err := connectDatabase(ctx, cfg.Database())
			if err != nil {
				return err
			}
			defer pool.Close()

			return store.Migrate(ctx, pool, observability.GetLogger())
		},
	}
}
