package out

import (
	"context"

	finalizedto "studyfocus/internal/modules/finalize/dto"
	finalizein "studyfocus/internal/modules/finalize/port/in"
	"studyfocus/internal/modules/timer/domain"
)

// FinalizeSink queues ended sessions on the finalize module.
type FinalizeSink struct {
	finalize finalizein.Usecase
}

func NewFinalizeSink(finalize finalizein.Usecase) FinalizeSink {
	return FinalizeSink{finalize: finalize}
}

func (s FinalizeSink) Submit(ctx context.Context, summary domain.Summary) error {
	return s.finalize.Submit(ctx, finalizedto.FinishInput{
		SessionID:       summary.SessionID,
		TaskID:          summary.TaskID,
		TaskName:        summary.TaskName,
		StartedAt:       summary.StartedAt,
		EndedAt:         summary.EndedAt,
		DurationMinutes: summary.DurationMinutes,
		Cycles:          summary.Cycles,
		Interrupted:     summary.Interrupted,
		ReviewEnabled:   summary.ReviewEnabled,
	})
}
