package in

import (
	"context"

	"studyfocus/internal/modules/focus/dto"
)

type Usecase interface {
	Activate(ctx context.Context, input dto.ActivateInput) error
	Deactivate(ctx context.Context)
	AllowedPackages(ctx context.Context) []string
	Preview(ctx context.Context, input dto.ActivateInput) []string
	Status(ctx context.Context) dto.StatusOutput
	HandleForeground(ctx context.Context, pkg string) (dto.DecisionOutput, error)
}
