package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wavecast/internal/config"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "download <task-id>",
		Short: "Download the rendered video of a completed task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			dest := strings.TrimSpace(outputDir)
			if dest != "" {
				expanded, err := config.ExpandPath(dest)
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
				dest = expanded
			}

			path, err := ctx.client().Download(cmd.Context(), id, dest)
			if err != nil {
				return wrapRequestError(err, ctx.serverURL())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the downloaded video (default: current directory)")
	return cmd
}
