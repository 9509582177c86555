package usecase

import (
	"context"

	"studyfocus/internal/modules/focus/domain"
	focusdto "studyfocus/internal/modules/focus/dto"
	focusin "studyfocus/internal/modules/focus/port/in"
	"studyfocus/internal/modules/focus/service"
)

type Interactor struct {
	enforcer *service.Enforcer
}

func NewInteractor(enforcer *service.Enforcer) focusin.Usecase {
	return &Interactor{enforcer: enforcer}
}

func (i *Interactor) Activate(_ context.Context, input focusdto.ActivateInput) error {
	return i.enforcer.Activate(input.StrictMode, input.Additional)
}

func (i *Interactor) Deactivate(_ context.Context) {
	i.enforcer.Deactivate()
}

func (i *Interactor) AllowedPackages(_ context.Context) []string {
	return i.enforcer.AllowedPackages()
}

func (i *Interactor) Preview(_ context.Context, input focusdto.ActivateInput) []string {
	return i.enforcer.Preview(input.StrictMode, input.Additional)
}

func (i *Interactor) Status(_ context.Context) focusdto.StatusOutput {
	status := i.enforcer.Status()
	return focusdto.StatusOutput{
		Active:     status.Active,
		Degraded:   status.Degraded,
		StrictMode: status.StrictMode,
		Allowed:    status.Allowed,
		Redirects:  status.Redirects,
	}
}

func (i *Interactor) HandleForeground(ctx context.Context, pkg string) (focusdto.DecisionOutput, error) {
	decision, err := i.enforcer.Handle(ctx, domain.ForegroundEvent{Package: pkg})
	return focusdto.DecisionOutput{Package: decision.Package, Action: string(decision.Action)}, err
}
