package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"wavecast/internal/api"
	"wavecast/internal/fileutil"
	"wavecast/internal/jobs"
	"wavecast/internal/logging"
	"wavecast/internal/taskstore"
)

var audioExtensions = map[string]bool{
	"mp3":  true,
	"wav":  true,
	"m4a":  true,
	"aac":  true,
	"ogg":  true,
	"flac": true,
}

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())

	audio, audioHeader, err := r.FormFile("audio")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d MiB limit", s.cfg.Uploads.MaxUploadMiB))
			return
		}
		s.writeError(w, http.StatusBadRequest, "no audio file provided")
		return
	}
	defer audio.Close()
	if ext := fileutil.Ext(audioHeader.Filename); !audioExtensions[ext] {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported audio format %q", ext))
		return
	}

	var (
		cover       multipart.File
		coverHeader *multipart.FileHeader
	)
	cover, coverHeader, err = r.FormFile("cover")
	switch {
	case err == nil:
		defer cover.Close()
		if ext := fileutil.Ext(coverHeader.Filename); !imageExtensions[ext] {
			// Unusable cover art is treated the same as a missing one:
			// the bundled default takes its place.
			cover = nil
		}
	case errors.Is(err, http.ErrMissingFile):
		cover = nil
	default:
		s.writeError(w, http.StatusBadRequest, "invalid cover upload")
		return
	}

	id := taskstore.NewID()
	audioPath := filepath.Join(s.cfg.Paths.UploadDir, id+"_"+safeName(audioHeader.Filename, "audio"))
	if err := fileutil.Save(audio, audioPath); err != nil {
		s.logger.Error("failed to save audio upload", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	cleanup := func() {
		_ = os.Remove(audioPath)
	}

	coverPath := s.cfg.Paths.DefaultCover
	if cover != nil {
		coverPath = filepath.Join(s.cfg.Paths.UploadDir, id+"_"+safeName(coverHeader.Filename, "cover"))
		if err := fileutil.Save(cover, coverPath); err != nil {
			s.logger.Error("failed to save cover upload", logging.Error(err))
			cleanup()
			s.writeError(w, http.StatusInternalServerError, "failed to store upload")
			return
		}
		saved := coverPath
		prev := cleanup
		cleanup = func() {
			_ = os.Remove(saved)
			prev()
		}
	} else if _, statErr := os.Stat(coverPath); coverPath == "" || statErr != nil {
		cleanup()
		s.writeError(w, http.StatusBadRequest, "no cover image provided and no default cover available")
		return
	}

	outputPath := filepath.Join(s.cfg.Paths.OutputDir, id+"_video.mp4")
	task, err := s.store.Create(r.Context(), id, audioPath, coverPath, outputPath)
	if err != nil {
		s.logger.Error("failed to register task", logging.Error(err))
		cleanup()
		s.writeError(w, http.StatusInternalServerError, "failed to register task")
		return
	}

	if err := s.pool.Submit(task); err != nil {
		cleanup()
		if delErr := s.store.Delete(r.Context(), id); delErr != nil {
			s.logger.Error("failed to roll back task", logging.Error(delErr))
		}
		if errors.Is(err, jobs.ErrSaturated) {
			s.writeError(w, http.StatusServiceUnavailable, "server busy, try again later")
			return
		}
		s.logger.Error("failed to submit task", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to schedule task")
		return
	}

	s.logger.Info("task accepted",
		logging.String(logging.FieldTaskID, id),
		logging.String("audio", filepath.Base(audioPath)),
	)
	s.writeJSON(w, http.StatusOK, api.UploadResponse{TaskID: id})
}

// safeName sanitizes a client file name, falling back when nothing safe
// survives.
func safeName(name, fallback string) string {
	cleaned := fileutil.SanitizeFilename(name)
	if cleaned == "" {
		ext := fileutil.Ext(name)
		if ext == "" {
			return fallback
		}
		return fallback + "." + ext
	}
	return cleaned
}
