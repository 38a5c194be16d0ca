// AngelaMos | 2026
// keygen.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/classifieds/internal/auth"
)

func newKeygenCmd() *cobra.Command {
	var privatePath, publicPath string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate the ES256 key pair used to sign access tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", privatePath, publicPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&privatePath, "private", "keys/private.pem", "private key output path")
	cmd.Flags().StringVar(&publicPath, "public", "keys/public.pem", "public key output path")
	return cmd
}
