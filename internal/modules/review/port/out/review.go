package out

import (
	"context"
	"time"

	"studyfocus/internal/modules/review/domain"
)

type ReviewStore interface {
	ListDue(ctx context.Context, through time.Time) ([]domain.ReviewRecord, error)
	ListBySession(ctx context.Context, studySessionID string) ([]domain.ReviewRecord, error)
	Get(ctx context.Context, reviewID string) (domain.ReviewRecord, error)
	SetCompletion(ctx context.Context, reviewID string, completedAt *time.Time) error
}
