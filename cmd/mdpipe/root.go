package main

import (
	"github.com/aretw0/mdpipe"
	"github.com/aretw0/mdpipe/internal/cli"
	"github.com/aretw0/mdpipe/pkg/domain"
	"github.com/spf13/cobra"
)

// newRootCmd builds the single mdpipe command for inv.
func newRootCmd(inv domain.Invocation) *cobra.Command {
	opts := &cli.Options{}
	cmd := &cobra.Command{
		Use:   "mdpipe [file]",
		Short: "Format and transform Markdown through a plugin pipeline",
		Long: `mdpipe reads a Markdown document from a file or standard input, applies the
configured plugins and writes the result to standard output or --output.

Configuration is read from the nearest .mdpiperc, .mdpiperc.json, .mdpiperc.yaml,
.mdpiperc.yml, .mdpiperc.hcl or the "mdpipeConfig" field of package.json.`,
		Version:       mdpipe.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Args = args
			return cli.Run(cmd.Context(), inv, *opts)
		},
	}
	cmd.SetIn(inv.Stdin)
	cmd.SetOut(inv.Stdout)
	cmd.SetErr(inv.Stderr)
	cli.BindFlags(cmd.Flags(), opts)
	return cmd
}
