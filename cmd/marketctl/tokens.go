// AngelaMos | 2026
// tokens.go

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/classifieds/internal/auth"
)

func newTokensCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Refresh token maintenance",
	}

	var grace time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete refresh tokens that expired more than --grace ago",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := auth.NewRepository(e.db.DB).
				DeleteExpired(cmd.Context(), time.Now().Add(-grace))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired tokens\n", n)
			return nil
		},
	}
	prune.Flags().DurationVar(&grace, "grace", 24*time.Hour,
		"keep tokens for this long after expiry")

	cmd.AddCommand(prune)
	return cmd
}
