package taskstore

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle of a task. Transitions are one-directional:
// queued -> processing -> completed|failed.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusQueued,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Task represents one audio+cover submission and its transform outcome.
type Task struct {
	ID         string
	Status     Status
	Progress   int
	AudioFile  string
	CoverFile  string
	OutputFile string
	ErrorMsg   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsTerminal reports whether the task reached a terminal state.
func (t Task) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// NewID allocates an opaque task identifier. Eight hex characters of a UUID
// match the artifact naming scheme (<id>_video.mp4) while staying short enough
// for log lines and URLs.
func NewID() string {
	return uuid.NewString()[:8]
}
