package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pynix/internal/app"
)

func (c *CLI) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the packages available in the configured package set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, _ := cmd.Flags().GetString("filter")
			refresh, _ := cmd.Flags().GetBool("refresh")

			return c.app.List(cmd.Context(), app.ListOptions{
				Filter:  filter,
				Refresh: refresh,
			})
		},
	}
	cmd.Flags().StringP("filter", "f", "", "Only show packages whose name contains this substring")
	cmd.Flags().Bool("refresh", false, "Re-fetch the catalog even if the cached copy is fresh")
	return cmd
}
