package api

import (
	"path/filepath"

	"wavecast/internal/taskstore"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// UploadResponse acknowledges an accepted transform request.
type UploadResponse struct {
	TaskID string `json:"task_id"`
}

// StatusResponse reports the current state of a single task.
type StatusResponse struct {
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	OutputFile string `json:"output_file,omitempty"`
	Error      string `json:"error,omitempty"`
}

// TaskSummary describes a task entry in a transport-friendly format.
type TaskSummary struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	AudioFile  string `json:"audio_file,omitempty"`
	CoverFile  string `json:"cover_file,omitempty"`
	OutputFile string `json:"output_file,omitempty"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// TaskListResponse wraps a collection of task summaries.
type TaskListResponse struct {
	Tasks []TaskSummary `json:"tasks"`
}

// ToolsResponse reports encoder availability for preflight checks.
type ToolsResponse struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
}

// ErrorResponse carries a human-readable failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusFromTask converts a stored task into its polling payload.
func StatusFromTask(task *taskstore.Task) StatusResponse {
	resp := StatusResponse{
		Status:   string(task.Status),
		Progress: task.Progress,
		Error:    task.ErrorMsg,
	}
	if task.Status == taskstore.StatusCompleted {
		resp.OutputFile = fileName(task.OutputFile)
	}
	return resp
}

// SummaryFromTask converts a stored task into its listing payload.
func SummaryFromTask(task *taskstore.Task) TaskSummary {
	summary := TaskSummary{
		ID:        task.ID,
		Status:    string(task.Status),
		Progress:  task.Progress,
		AudioFile: fileName(task.AudioFile),
		CoverFile: fileName(task.CoverFile),
		Error:     task.ErrorMsg,
	}
	if task.Status == taskstore.StatusCompleted {
		summary.OutputFile = fileName(task.OutputFile)
	}
	if !task.CreatedAt.IsZero() {
		summary.CreatedAt = task.CreatedAt.Format(dateTimeFormat)
	}
	if !task.UpdatedAt.IsZero() {
		summary.UpdatedAt = task.UpdatedAt.Format(dateTimeFormat)
	}
	return summary
}

// fileName strips the server-side directory from a stored path; the wire
// format carries bare artifact names only.
func fileName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
