package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newToolsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Check the daemon's encoder availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Tools(cmd.Context())
			if err != nil {
				return wrapRequestError(err, ctx.serverURL())
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if resp.Available {
				fmt.Fprintln(out, renderStatusLine("FFmpeg", statusOK, resp.Version, colorize))
				return nil
			}
			fmt.Fprintln(out, renderStatusLine("FFmpeg", statusError, "not available", colorize))
			return nil
		},
	}
}
