package in

import (
	"context"
	"time"

	finalizedto "studyfocus/internal/modules/finalize/dto"
	finalizein "studyfocus/internal/modules/finalize/port/in"
)

type CLIHandler struct {
	usecase finalizein.Usecase
}

func NewCLIHandler(usecase finalizein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Failures(ctx context.Context) ([]finalizedto.FailureOutput, error) {
	return h.usecase.Failures(ctx)
}

func (h CLIHandler) Retry(ctx context.Context, sessionID string) (finalizedto.FinishOutput, error) {
	return h.usecase.Retry(ctx, sessionID)
}

func (h CLIHandler) Stats(ctx context.Context, date time.Time) (finalizedto.DailyStatsOutput, error) {
	return h.usecase.DailyStats(ctx, date)
}
