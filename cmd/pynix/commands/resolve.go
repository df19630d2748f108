package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pynix/internal/app"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [packages...]",
		Short: "Resolve packages to their module search paths",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			noDaemon, _ := cmd.Flags().GetBool("no-daemon")

			return c.app.Resolve(cmd.Context(), args, app.ResolveOptions{
				JSON:     jsonOut,
				NoDaemon: noDaemon,
			})
		},
	}
	cmd.Flags().Bool("json", false, "Print results as JSON")
	cmd.Flags().Bool("no-daemon", false, "Bypass the daemon and resolve in-process")
	return cmd
}
