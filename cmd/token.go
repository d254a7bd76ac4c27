// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/acr-provisioner/pkg/naming"
)

// newTokenCommand mints a resource token. Useful for pinning the same
// token across repeated runs so names stay stable.
func newTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Mint a resource token for stable resource naming",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(naming.NewResourceToken())
		},
	}
}
