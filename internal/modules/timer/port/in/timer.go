package in

import (
	"context"

	"studyfocus/internal/modules/timer/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StateOutput, error)
	Pause(ctx context.Context) (dto.StateOutput, error)
	Resume(ctx context.Context) (dto.StateOutput, error)
	Skip(ctx context.Context) (dto.StateOutput, error)
	Stop(ctx context.Context) (dto.SummaryOutput, error)
	State(ctx context.Context) dto.StateOutput
	Subscribe(ctx context.Context) (<-chan dto.StateOutput, func())
	ConsumeCompleted(ctx context.Context) (dto.CompletedOutput, bool)
	Recover(ctx context.Context) (dto.SummaryOutput, bool, error)
}
