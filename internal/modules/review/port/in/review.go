package in

import (
	"context"

	"studyfocus/internal/modules/review/dto"
)

type Usecase interface {
	Due(ctx context.Context, input dto.DueInput) ([]dto.ReviewOutput, error)
	ForSession(ctx context.Context, studySessionID string) ([]dto.ReviewOutput, error)
	Complete(ctx context.Context, reviewID string) (dto.ReviewOutput, error)
	Reopen(ctx context.Context, reviewID string) (dto.ReviewOutput, error)
}
