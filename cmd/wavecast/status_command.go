package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id>",
		Short: "Show the state of a transform task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			resp, err := ctx.client().Status(cmd.Context(), id)
			if err != nil {
				return wrapRequestError(err, ctx.serverURL())
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			kind := statusInfo
			switch resp.Status {
			case "completed":
				kind = statusOK
			case "failed":
				kind = statusError
			}
			fmt.Fprintln(out, renderStatusLine("Status", kind, resp.Status, colorize))
			fmt.Fprintln(out, renderStatusLine("Progress", statusInfo, fmt.Sprintf("%d%%", resp.Progress), colorize))
			if resp.OutputFile != "" {
				fmt.Fprintln(out, renderStatusLine("Output", statusOK, resp.OutputFile, colorize))
			}
			if resp.Error != "" {
				fmt.Fprintln(out, renderStatusLine("Error", statusError, resp.Error, colorize))
			}
			return nil
		},
	}
}
