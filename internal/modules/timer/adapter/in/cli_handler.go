package in

import (
	"context"

	timerdto "studyfocus/internal/modules/timer/dto"
	timerin "studyfocus/internal/modules/timer/port/in"
)

type CLIHandler struct {
	usecase timerin.Usecase
}

func NewCLIHandler(usecase timerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, input timerdto.StartInput) (timerdto.StateOutput, error) {
	return h.usecase.Start(ctx, input)
}

func (h CLIHandler) Pause(ctx context.Context) (timerdto.StateOutput, error) {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (timerdto.StateOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) Skip(ctx context.Context) (timerdto.StateOutput, error) {
	return h.usecase.Skip(ctx)
}

func (h CLIHandler) Stop(ctx context.Context) (timerdto.SummaryOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) State(ctx context.Context) timerdto.StateOutput {
	return h.usecase.State(ctx)
}

func (h CLIHandler) Watch(ctx context.Context) (<-chan timerdto.StateOutput, func()) {
	return h.usecase.Subscribe(ctx)
}

func (h CLIHandler) ConsumeCompleted(ctx context.Context) (timerdto.CompletedOutput, bool) {
	return h.usecase.ConsumeCompleted(ctx)
}

func (h CLIHandler) Recover(ctx context.Context) (timerdto.SummaryOutput, bool, error) {
	return h.usecase.Recover(ctx)
}
