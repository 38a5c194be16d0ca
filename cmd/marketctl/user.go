// AngelaMos | 2026
// user.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/user"
)

func newUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var demote bool
	promote := &cobra.Command{
		Use:   "promote <user-id>",
		Short: "Grant the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			role := core.RoleAdmin
			if demote {
				role = core.RoleUser
			}

			svc := user.NewService(user.NewRepository(e.db.DB), e.logger)
			u, err := svc.UpdateUserRole(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	promote.Flags().BoolVar(&demote, "demote", false, "revert to the user role instead")

	cmd.AddCommand(promote)
	return cmd
}
