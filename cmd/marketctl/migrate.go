// AngelaMos | 2026
// migrate.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/classifieds/internal/core"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			applied, err := core.Migrate(cmd.Context(), e.db.DB)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "schema is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintln(out, "applied", v)
			}
			return nil
		},
	}
}
