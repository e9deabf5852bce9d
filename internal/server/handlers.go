package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"wavecast/internal/api"
	"wavecast/internal/logging"
	"wavecast/internal/taskstore"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/status/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	task, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if task == nil {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.StatusFromTask(task))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/download/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	task, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if task == nil {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if task.Status != taskstore.StatusCompleted {
		s.writeError(w, http.StatusBadRequest, "video not ready")
		return
	}
	if task.OutputFile == "" {
		s.writeError(w, http.StatusNotFound, "video file missing")
		return
	}
	if _, err := os.Stat(task.OutputFile); err != nil {
		s.logger.Warn("completed task missing its video file",
			logging.String(logging.FieldTaskID, task.ID),
			logging.Error(err),
		)
		s.writeError(w, http.StatusNotFound, "video file missing")
		return
	}

	name := filepath.Base(task.OutputFile)
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, task.OutputFile)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var statuses []taskstore.Status
	for _, value := range r.URL.Query()["status"] {
		for _, name := range strings.Split(value, ",") {
			trimmed := strings.TrimSpace(name)
			if trimmed == "" {
				continue
			}
			status, ok := taskstore.ParseStatus(trimmed)
			if !ok {
				s.writeError(w, http.StatusBadRequest, "unknown status "+trimmed)
				return
			}
			statuses = append(statuses, status)
		}
	}

	tasks, err := s.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	summaries := make([]api.TaskSummary, 0, len(tasks))
	for _, task := range tasks {
		summaries = append(summaries, api.SummaryFromTask(task))
	}
	s.writeJSON(w, http.StatusOK, api.TaskListResponse{Tasks: summaries})
}

func (s *Server) handleCheckFFmpeg(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	version, err := s.versioner.Version(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusOK, api.ToolsResponse{Available: false})
		return
	}
	s.writeJSON(w, http.StatusOK, api.ToolsResponse{Available: true, Version: version})
}
