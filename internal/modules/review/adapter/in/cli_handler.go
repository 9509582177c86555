package in

import (
	"context"
	"time"

	reviewdto "studyfocus/internal/modules/review/dto"
	reviewin "studyfocus/internal/modules/review/port/in"
)

type CLIHandler struct {
	usecase reviewin.Usecase
}

func NewCLIHandler(usecase reviewin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Due(ctx context.Context, date time.Time) ([]reviewdto.ReviewOutput, error) {
	return h.usecase.Due(ctx, reviewdto.DueInput{Date: date})
}

func (h CLIHandler) List(ctx context.Context, sessionID string) ([]reviewdto.ReviewOutput, error) {
	return h.usecase.ForSession(ctx, sessionID)
}

func (h CLIHandler) Complete(ctx context.Context, reviewID string) (reviewdto.ReviewOutput, error) {
	return h.usecase.Complete(ctx, reviewID)
}

func (h CLIHandler) Reopen(ctx context.Context, reviewID string) (reviewdto.ReviewOutput, error) {
	return h.usecase.Reopen(ctx, reviewID)
}
