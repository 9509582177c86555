package out

import (
	"context"
	"time"

	"studyfocus/internal/modules/finalize/domain"
	reviewdomain "studyfocus/internal/modules/review/domain"
)

type SessionWriter interface {
	FinishSession(ctx context.Context, record domain.SessionRecord) error
}

type ReviewWriter interface {
	InsertReviewRecords(ctx context.Context, records []reviewdomain.ReviewRecord) error
}

type TaskWriter interface {
	UpdateLastStudiedAt(ctx context.Context, taskID string, at time.Time) error
}

type DailyStatsStore interface {
	UpdateDailyStats(ctx context.Context, date time.Time, minutes int, subjectLabel string) error
	DailyStats(ctx context.Context, date time.Time) ([]domain.SubjectStat, error)
}

type Entitlement interface {
	IsPremium(ctx context.Context) (bool, error)
}

type FailureLedger interface {
	Record(ctx context.Context, failure domain.Failure) error
	Get(ctx context.Context, sessionID string) (domain.Failure, error)
	List(ctx context.Context) ([]domain.Failure, error)
	Remove(ctx context.Context, sessionID string) error
}
