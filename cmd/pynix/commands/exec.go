package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec [packages...] -- <command> [args...]",
		Short: "Run a command with the resolved packages importable",
		Long: "Resolve the named packages and run the command with PYTHONPATH " +
			"extended by their search paths, in package order.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}

			// Everything after -- is the command to run.
			packages := args
			var command []string
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				packages, command = args[:dash], args[dash:]
			}

			return c.app.Exec(cmd.Context(), packages, command)
		},
	}
}
