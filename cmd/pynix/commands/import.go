package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pynix/internal/app"
)

func (c *CLI) newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [modules...]",
		Short: "Import modules through the synthetic namespace",
		Long: `Import installs the namespace finder into an in-process module system and
imports each dotted name through it, reporting what loaded and from where.

A bare name like "numpy" is qualified with the configured namespace first,
so "numpy" and "nixpkgs.numpy" request the same module. A bare package
request yields an aggregate namespace listing the package's top-level
modules; a deeper request like "nixpkgs.numpy.linalg.solve" resolves to the
concrete submodule.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			noDaemon, _ := cmd.Flags().GetBool("no-daemon")

			return c.app.Import(cmd.Context(), args, app.ImportOptions{
				JSON:     jsonOut,
				NoDaemon: noDaemon,
			})
		},
	}
	cmd.Flags().Bool("json", false, "Print results as JSON")
	cmd.Flags().Bool("no-daemon", false, "Bypass the daemon and resolve in-process")
	return cmd
}
