package out

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"studyfocus/internal/modules/finalize/domain"
	"studyfocus/internal/platform/db"
)

// SQLStore writes sessions, task activity and daily statistics. Every write is an upsert so a
// retried finalization lands on the same rows.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(conn *sqlx.DB) *SQLStore {
	return &SQLStore{db: conn}
}

func (s *SQLStore) FinishSession(ctx context.Context, record domain.SessionRecord) error {
	query := s.db.Rebind(`INSERT INTO sessions (id, task_id, task_name, started_at, ended_at, duration_minutes, cycles_completed, interrupted)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    task_id = excluded.task_id,
    task_name = excluded.task_name,
    started_at = excluded.started_at,
    ended_at = excluded.ended_at,
    duration_minutes = excluded.duration_minutes,
    cycles_completed = excluded.cycles_completed,
    interrupted = excluded.interrupted`)
	if _, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.TaskID,
		record.TaskName,
		db.FormatTime(record.StartedAt),
		db.FormatTime(record.EndedAt),
		record.DurationMinutes,
		record.CyclesCompleted,
		db.Bool(record.Interrupted),
	); err != nil {
		return fmt.Errorf("finish session %s: %w", record.ID, err)
	}
	return nil
}

// UpdateLastStudiedAt never moves a task's last studied time backwards.
func (s *SQLStore) UpdateLastStudiedAt(ctx context.Context, taskID string, at time.Time) error {
	query := s.db.Rebind(`INSERT INTO tasks (id, last_studied_at) VALUES (?, ?)
ON CONFLICT (id) DO UPDATE SET last_studied_at = excluded.last_studied_at
WHERE excluded.last_studied_at > tasks.last_studied_at`)
	if _, err := s.db.ExecContext(ctx, query, taskID, db.FormatTime(at)); err != nil {
		return fmt.Errorf("update last studied for task %s: %w", taskID, err)
	}
	return nil
}

func (s *SQLStore) LastStudiedAt(ctx context.Context, taskID string) (time.Time, error) {
	var value string
	query := s.db.Rebind(`SELECT last_studied_at FROM tasks WHERE id = ?`)
	if err := s.db.GetContext(ctx, &value, query, taskID); err != nil {
		return time.Time{}, fmt.Errorf("read last studied for task %s: %w", taskID, err)
	}
	return db.ParseTime(value)
}

func (s *SQLStore) UpdateDailyStats(ctx context.Context, date time.Time, minutes int, subjectLabel string) error {
	query := s.db.Rebind(`INSERT INTO daily_stats (stat_date, subject, minutes, sessions) VALUES (?, ?, ?, 1)
ON CONFLICT (stat_date, subject) DO UPDATE SET
    minutes = daily_stats.minutes + excluded.minutes,
    sessions = daily_stats.sessions + 1`)
	if _, err := s.db.ExecContext(ctx, query, db.FormatDate(date), subjectLabel, minutes); err != nil {
		return fmt.Errorf("update daily stats for %s: %w", subjectLabel, err)
	}
	return nil
}

type subjectRow struct {
	Subject  string `db:"subject"`
	Minutes  int    `db:"minutes"`
	Sessions int    `db:"sessions"`
}

func (s *SQLStore) DailyStats(ctx context.Context, date time.Time) ([]domain.SubjectStat, error) {
	rows := []subjectRow{}
	query := s.db.Rebind(`SELECT subject, minutes, sessions FROM daily_stats WHERE stat_date = ? ORDER BY minutes DESC, subject`)
	if err := s.db.SelectContext(ctx, &rows, query, db.FormatDate(date)); err != nil {
		return nil, fmt.Errorf("read daily stats: %w", err)
	}
	stats := make([]domain.SubjectStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, domain.SubjectStat{Subject: row.Subject, Minutes: row.Minutes, Sessions: row.Sessions})
	}
	return stats, nil
}
