package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wavecast/internal/fileutil"
)

// Client provides HTTP access to the daemon's API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the daemon listening at baseURL. Upload and
// download calls stream potentially large files, so no request timeout is
// applied; pass a context to bound individual calls.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// Submit uploads an audio file, optionally with a cover image, and returns
// the identifier of the created task.
func (c *Client) Submit(ctx context.Context, audioPath, coverPath string) (*UploadResponse, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		err := writeUploadForm(writer, audioPath, coverPath)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp UploadResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func writeUploadForm(writer *multipart.Writer, audioPath, coverPath string) error {
	if err := writeFilePart(writer, "audio", audioPath); err != nil {
		return err
	}
	if coverPath != "" {
		if err := writeFilePart(writer, "cover", coverPath); err != nil {
			return err
		}
	}
	return nil
}

func writeFilePart(writer *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

// Status retrieves the polling payload for a task.
func (c *Client) Status(ctx context.Context, id string) (*StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var resp StatusResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Tasks lists tasks, optionally filtered by status names.
func (c *Client) Tasks(ctx context.Context, statuses ...string) (*TaskListResponse, error) {
	endpoint := c.baseURL + "/api/tasks"
	if len(statuses) > 0 {
		endpoint += "?status=" + url.QueryEscape(strings.Join(statuses, ","))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var resp TaskListResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Tools reports whether the daemon can reach its encoder.
func (c *Client) Tools(ctx context.Context) (*ToolsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/check-ffmpeg", nil)
	if err != nil {
		return nil, err
	}
	var resp ToolsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Download streams a completed task's video into destDir and returns the
// written path. With destDir empty the current directory is used; the file
// name comes from the server's Content-Disposition header.
func (c *Client) Download(ctx context.Context, id, destDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/download/"+url.PathEscape(id), nil)
	if err != nil {
		return "", err
	}
	httpResp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return "", decodeError(httpResp)
	}

	name := attachmentName(httpResp.Header.Get("Content-Disposition"))
	if name == "" {
		name = id + "_video.mp4"
	}
	if destDir == "" {
		destDir = "."
	}
	target := filepath.Join(destDir, name)
	if err := fileutil.Save(httpResp.Body, target); err != nil {
		return "", fmt.Errorf("save download: %w", err)
	}
	return target, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return fileutil.SanitizeFilename(params["filename"])
}

// APIError represents a non-200 response from the daemon.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// WaitForCompletion polls a task until it reaches a terminal status or ctx
// expires. The observe callback, when non-nil, receives every poll result.
func (c *Client) WaitForCompletion(ctx context.Context, id string, interval time.Duration, observe func(StatusResponse)) (*StatusResponse, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		status, err := c.Status(ctx, id)
		if err != nil {
			return nil, err
		}
		if observe != nil {
			observe(*status)
		}
		switch status.Status {
		case "completed", "failed":
			return status, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
