package in

import (
	"context"
	"time"

	"studyfocus/internal/modules/finalize/dto"
)

type Usecase interface {
	// Submit queues a finished session for asynchronous finalization.
	Submit(ctx context.Context, input dto.FinishInput) error
	Finalize(ctx context.Context, input dto.FinishInput) (dto.FinishOutput, error)
	Retry(ctx context.Context, sessionID string) (dto.FinishOutput, error)
	Failures(ctx context.Context) ([]dto.FailureOutput, error)
	DailyStats(ctx context.Context, date time.Time) (dto.DailyStatsOutput, error)
	// Flush waits until every queued session has been processed.
	Flush(ctx context.Context) error
}
