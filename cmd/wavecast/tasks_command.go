package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"wavecast/internal/api"
)

func newTasksCommand(ctx *commandContext) *cobra.Command {
	var statusFilters []string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List transform tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Tasks(cmd.Context(), statusFilters...)
			if err != nil {
				return wrapRequestError(err, ctx.serverURL())
			}

			out := cmd.OutOrStdout()
			if len(resp.Tasks) == 0 {
				fmt.Fprintln(out, "No tasks")
				return nil
			}
			fmt.Fprintln(out, renderTaskTable(resp.Tasks))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statusFilters, "status", nil, "Filter by status (queued, processing, completed, failed)")
	return cmd
}

func renderTaskTable(tasks []api.TaskSummary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Status", "Progress", "Audio", "Output", "Error"})
	for _, task := range tasks {
		tw.AppendRow(table.Row{
			task.ID,
			task.Status,
			strconv.Itoa(task.Progress) + "%",
			baseName(task.AudioFile),
			baseName(task.OutputFile),
			task.Error,
		})
	}
	// Progress is the only numeric column; everything else reads better
	// ragged-left.
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
