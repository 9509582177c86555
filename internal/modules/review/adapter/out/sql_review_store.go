package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"studyfocus/internal/modules/review/domain"
	"studyfocus/internal/platform/db"
	apperrors "studyfocus/internal/platform/errors"
)

const reviewColumns = `id, study_session_id, task_id, scheduled_date, review_number, offset_days, is_completed, completed_at`

type SQLReviewStore struct {
	db *sqlx.DB
}

func NewSQLReviewStore(conn *sqlx.DB) *SQLReviewStore {
	return &SQLReviewStore{db: conn}
}

type reviewRow struct {
	ID             string         `db:"id"`
	StudySessionID string         `db:"study_session_id"`
	TaskID         string         `db:"task_id"`
	ScheduledDate  string         `db:"scheduled_date"`
	ReviewNumber   int            `db:"review_number"`
	OffsetDays     int            `db:"offset_days"`
	IsCompleted    int            `db:"is_completed"`
	CompletedAt    sql.NullString `db:"completed_at"`
}

// InsertReviewRecords writes the batch in one transaction. A record that already exists for the
// same session and review number is left as is.
func (s *SQLReviewStore) InsertReviewRecords(ctx context.Context, records []domain.ReviewRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := tx.Rebind(`INSERT INTO review_records (` + reviewColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (study_session_id, review_number) DO NOTHING`)
	for _, record := range records {
		if _, err := tx.ExecContext(ctx, query,
			record.ID,
			record.StudySessionID,
			record.TaskID,
			db.FormatDate(record.ScheduledDate),
			record.ReviewNumber,
			record.OffsetDays,
			db.Bool(record.IsCompleted),
			db.NullTime(record.CompletedAt),
		); err != nil {
			return fmt.Errorf("insert review %d: %w", record.ReviewNumber, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review insert: %w", err)
	}
	return nil
}

func (s *SQLReviewStore) ListDue(ctx context.Context, through time.Time) ([]domain.ReviewRecord, error) {
	rows := []reviewRow{}
	query := s.db.Rebind(`SELECT ` + reviewColumns + ` FROM review_records
WHERE is_completed = 0 AND scheduled_date <= ?
ORDER BY scheduled_date, study_session_id, review_number`)
	if err := s.db.SelectContext(ctx, &rows, query, db.FormatDate(through)); err != nil {
		return nil, fmt.Errorf("list due reviews: %w", err)
	}
	return toRecords(rows)
}

func (s *SQLReviewStore) ListBySession(ctx context.Context, studySessionID string) ([]domain.ReviewRecord, error) {
	rows := []reviewRow{}
	query := s.db.Rebind(`SELECT ` + reviewColumns + ` FROM review_records
WHERE study_session_id = ?
ORDER BY review_number`)
	if err := s.db.SelectContext(ctx, &rows, query, studySessionID); err != nil {
		return nil, fmt.Errorf("list session reviews: %w", err)
	}
	return toRecords(rows)
}

func (s *SQLReviewStore) Get(ctx context.Context, reviewID string) (domain.ReviewRecord, error) {
	row := reviewRow{}
	query := s.db.Rebind(`SELECT ` + reviewColumns + ` FROM review_records WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReviewRecord{}, fmt.Errorf("review %s: %w", reviewID, apperrors.ErrNotFound)
		}
		return domain.ReviewRecord{}, fmt.Errorf("get review: %w", err)
	}
	return row.toRecord()
}

func (s *SQLReviewStore) SetCompletion(ctx context.Context, reviewID string, completedAt *time.Time) error {
	query := s.db.Rebind(`UPDATE review_records SET is_completed = ?, completed_at = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, db.Bool(completedAt != nil), db.NullTime(completedAt), reviewID)
	if err != nil {
		return fmt.Errorf("update review completion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review completion: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("review %s: %w", reviewID, apperrors.ErrNotFound)
	}
	return nil
}

func toRecords(rows []reviewRow) ([]domain.ReviewRecord, error) {
	records := make([]domain.ReviewRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r reviewRow) toRecord() (domain.ReviewRecord, error) {
	scheduled, err := db.ParseDate(r.ScheduledDate)
	if err != nil {
		return domain.ReviewRecord{}, err
	}
	record := domain.ReviewRecord{
		ID:             r.ID,
		StudySessionID: r.StudySessionID,
		TaskID:         r.TaskID,
		ScheduledDate:  scheduled,
		ReviewNumber:   r.ReviewNumber,
		OffsetDays:     r.OffsetDays,
		IsCompleted:    r.IsCompleted != 0,
	}
	if r.CompletedAt.Valid {
		completedAt, err := db.ParseTime(r.CompletedAt.String)
		if err != nil {
			return domain.ReviewRecord{}, err
		}
		record.CompletedAt = &completedAt
	}
	return record, nil
}
