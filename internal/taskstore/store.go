package taskstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"wavecast/internal/config"
)

// Store manages the task registry backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes the registry database. Rows left behind by a previous
// process are discarded; a restart starts with an empty registry.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "tasks.db")
	// DSN pragmas apply to every connection the pool opens, not just the
	// first one a bare Exec would reach.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows one writer at a time; a single pooled connection keeps
	// concurrent Create calls queued instead of racing into SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM tasks`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("reset registry: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the registry database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Create inserts a fresh queued task under the provided identifier.
func (s *Store) Create(ctx context.Context, id, audioFile, coverFile, outputFile string) (*Task, error) {
	if id == "" {
		return nil, errors.New("task id required")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tasks (
            id, status, progress, audio_file, cover_file, output_file,
            error_message, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		StatusQueued,
		0,
		nullableString(audioFile),
		nullableString(coverFile),
		nullableString(outputFile),
		nil,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a task by identifier. Unknown ids yield (nil, nil).
func (s *Store) GetByID(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// Delete removes a task row entirely. Used to roll back a registration
// whose work was never accepted.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// SetProcessing transitions a queued task to processing with the given
// initial progress value.
func (s *Store) SetProcessing(ctx context.Context, id string, progress int) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE tasks SET status = ?, progress = ?, updated_at = ? WHERE id = ? AND status = ?`,
		StatusProcessing,
		clampPercent(progress),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusQueued,
	)
	if err != nil {
		return fmt.Errorf("set processing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task %s is not queued", id)
	}
	return nil
}

// UpdateProgress writes a new progress value for a processing task. Values
// below the stored progress are ignored so pollers never observe a decrease.
func (s *Store) UpdateProgress(ctx context.Context, id string, progress int) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE tasks SET progress = ?, updated_at = ?
         WHERE id = ? AND status = ? AND progress < ?`,
		clampPercent(progress),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusProcessing,
		clampPercent(progress),
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// MarkCompleted finalizes a task as completed with its artifact name.
func (s *Store) MarkCompleted(ctx context.Context, id, outputFile string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE tasks SET status = ?, progress = 100, output_file = ?,
            error_message = NULL, updated_at = ?
         WHERE id = ? AND status NOT IN (?, ?)`,
		StatusCompleted,
		outputFile,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusCompleted,
		StatusFailed,
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// MarkFailed finalizes a task as failed with a diagnostic message.
func (s *Store) MarkFailed(ctx context.Context, id, message string) error {
	if message == "" {
		message = "transform failed"
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE tasks SET status = ?, error_message = ?, output_file = NULL, updated_at = ?
         WHERE id = ? AND status NOT IN (?, ?)`,
		StatusFailed,
		message,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusCompleted,
		StatusFailed,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// List returns tasks filtered by status set (or all tasks when no status is
// provided), ordered by creation time.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`
	orderClause := ` ORDER BY created_at`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

const taskColumns = "id, status, progress, audio_file, cover_file, output_file, error_message, created_at, updated_at"

func scanTask(scanner interface{ Scan(dest ...any) error }) (*Task, error) {
	var (
		id         string
		statusStr  string
		progress   int
		audioFile  sql.NullString
		coverFile  sql.NullString
		outputFile sql.NullString
		errorMsg   sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&statusStr,
		&progress,
		&audioFile,
		&coverFile,
		&outputFile,
		&errorMsg,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	task := &Task{
		ID:         id,
		Status:     Status(statusStr),
		Progress:   progress,
		AudioFile:  audioFile.String,
		CoverFile:  coverFile.String,
		OutputFile: outputFile.String,
		ErrorMsg:   errorMsg.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		task.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		task.UpdatedAt = updated
	}
	return task, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func clampPercent(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
