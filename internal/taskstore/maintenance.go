package taskstore

import (
	"context"
	"fmt"
	"time"
)

// Stats returns a count of tasks grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// EvictTerminalBefore removes completed and failed tasks whose last update
// predates the cutoff. The evicted tasks are returned so the caller can delete
// the files they own.
func (s *Store) EvictTerminalBefore(ctx context.Context, cutoff time.Time) ([]*Task, error) {
	boundary := cutoff.UTC().Format(time.RFC3339Nano)

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks
         WHERE status IN (?, ?) AND updated_at < ?`,
		StatusCompleted,
		StatusFailed,
		boundary,
	)
	if err != nil {
		return nil, fmt.Errorf("select evictable tasks: %w", err)
	}
	defer rows.Close()

	var evicted []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		evicted = append(evicted, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(evicted) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(evicted))
	for _, task := range evicted {
		args = append(args, task.ID)
	}
	if _, err := s.db.ExecContext(
		ctx,
		`DELETE FROM tasks WHERE id IN (`+makePlaceholders(len(evicted))+`)`,
		args...,
	); err != nil {
		return nil, fmt.Errorf("delete evicted tasks: %w", err)
	}
	return evicted, nil
}
