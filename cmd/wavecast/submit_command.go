package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wavecast/internal/api"
	"wavecast/internal/config"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var coverPath string
	var wait bool
	var pollInterval time.Duration

	cmd := &cobra.Command{
		Use:   "submit <audio-file>",
		Short: "Upload an audio file for waveform video rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audioPath, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve audio path: %w", err)
			}
			if _, err := os.Stat(audioPath); err != nil {
				return fmt.Errorf("inspect audio file: %w", err)
			}
			cover := strings.TrimSpace(coverPath)
			if cover != "" {
				if cover, err = config.ExpandPath(cover); err != nil {
					return fmt.Errorf("resolve cover path: %w", err)
				}
				if _, err := os.Stat(cover); err != nil {
					return fmt.Errorf("inspect cover file: %w", err)
				}
			}

			client := ctx.client()
			resp, err := client.Submit(cmd.Context(), audioPath, cover)
			if err != nil {
				return wrapRequestError(err, ctx.serverURL())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Task %s accepted\n", resp.TaskID)
			if !wait {
				fmt.Fprintf(out, "Poll with `wavecast status %s`\n", resp.TaskID)
				return nil
			}

			var lastProgress = -1
			final, err := client.WaitForCompletion(cmd.Context(), resp.TaskID, pollInterval, func(s api.StatusResponse) {
				if s.Progress != lastProgress {
					lastProgress = s.Progress
					fmt.Fprintf(out, "  %s %3d%%\n", s.Status, s.Progress)
				}
			})
			if err != nil {
				return wrapRequestError(err, ctx.serverURL())
			}
			if final.Status == "failed" {
				return errors.New("transform failed: " + final.Error)
			}
			fmt.Fprintf(out, "Completed: download with `wavecast download %s`\n", resp.TaskID)
			return nil
		},
	}

	cmd.Flags().StringVar(&coverPath, "cover", "", "Cover image to render behind the waveform")
	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until the transform finishes")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 2*time.Second, "Polling interval used with --wait")
	return cmd
}
