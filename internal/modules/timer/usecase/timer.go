package usecase

import (
	"context"
	"strings"

	"studyfocus/internal/modules/timer/domain"
	timerdto "studyfocus/internal/modules/timer/dto"
	timerin "studyfocus/internal/modules/timer/port/in"
	"studyfocus/internal/modules/timer/service"
	"studyfocus/internal/platform/slug"
)

type Interactor struct {
	engine   *service.Engine
	defaults domain.Settings
}

func NewInteractor(engine *service.Engine, defaults domain.Settings) timerin.Usecase {
	return &Interactor{engine: engine, defaults: defaults}
}

func (i *Interactor) Start(ctx context.Context, input timerdto.StartInput) (timerdto.StateOutput, error) {
	task := domain.Task{ID: strings.TrimSpace(input.TaskID), Name: strings.TrimSpace(input.TaskName)}
	if task.ID == "" {
		task.ID = slug.Make(task.Name)
	}
	return i.engine.Start(ctx, task, i.settings(input))
}

func (i *Interactor) Pause(ctx context.Context) (timerdto.StateOutput, error) {
	return i.engine.Pause(ctx)
}

func (i *Interactor) Resume(ctx context.Context) (timerdto.StateOutput, error) {
	return i.engine.Resume(ctx)
}

func (i *Interactor) Skip(ctx context.Context) (timerdto.StateOutput, error) {
	return i.engine.Skip(ctx)
}

func (i *Interactor) Stop(ctx context.Context) (timerdto.SummaryOutput, error) {
	return i.engine.Stop(ctx)
}

func (i *Interactor) State(_ context.Context) timerdto.StateOutput {
	return i.engine.State()
}

func (i *Interactor) Subscribe(_ context.Context) (<-chan timerdto.StateOutput, func()) {
	return i.engine.Subscribe()
}

func (i *Interactor) ConsumeCompleted(_ context.Context) (timerdto.CompletedOutput, bool) {
	return i.engine.ConsumeCompleted()
}

func (i *Interactor) Recover(ctx context.Context) (timerdto.SummaryOutput, bool, error) {
	return i.engine.Recover(ctx)
}

func (i *Interactor) settings(input timerdto.StartInput) domain.Settings {
	s := i.defaults
	s.AllowedPackages = append([]string(nil), i.defaults.AllowedPackages...)
	if input.WorkMinutes != 0 {
		s.WorkMinutes = input.WorkMinutes
	}
	if input.ShortBreakMinutes != 0 {
		s.ShortBreakMinutes = input.ShortBreakMinutes
	}
	if input.LongBreakMinutes != 0 {
		s.LongBreakMinutes = input.LongBreakMinutes
	}
	if input.Cycles != 0 {
		s.Cycles = input.Cycles
	}
	if input.LongBreakInterval != 0 {
		s.LongBreakInterval = input.LongBreakInterval
	}
	if input.AutoLoop != nil {
		s.AutoLoop = *input.AutoLoop
	}
	if input.StrictMode != nil {
		s.StrictMode = *input.StrictMode
	}
	if input.ReviewEnabled != nil {
		s.ReviewEnabled = *input.ReviewEnabled
	}
	s.AllowedPackages = append(s.AllowedPackages, input.AllowedPackages...)
	return s
}
