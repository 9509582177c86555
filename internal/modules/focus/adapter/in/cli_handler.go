package in

import (
	"context"

	focusdto "studyfocus/internal/modules/focus/dto"
	focusin "studyfocus/internal/modules/focus/port/in"
)

type CLIHandler struct {
	usecase focusin.Usecase
}

func NewCLIHandler(usecase focusin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Packages(ctx context.Context, strict bool, additional []string) []string {
	return h.usecase.Preview(ctx, focusdto.ActivateInput{StrictMode: strict, Additional: additional})
}

func (h CLIHandler) Status(ctx context.Context) focusdto.StatusOutput {
	return h.usecase.Status(ctx)
}
