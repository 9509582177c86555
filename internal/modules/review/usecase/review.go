package usecase

import (
	"context"

	"studyfocus/internal/modules/review/domain"
	reviewdto "studyfocus/internal/modules/review/dto"
	reviewin "studyfocus/internal/modules/review/port/in"
	"studyfocus/internal/modules/review/service"
)

type Interactor struct {
	svc *service.ReviewService
}

func NewInteractor(svc *service.ReviewService) reviewin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Due(ctx context.Context, input reviewdto.DueInput) ([]reviewdto.ReviewOutput, error) {
	records, err := i.svc.Due(ctx, input.Date)
	if err != nil {
		return nil, err
	}
	return toOutputs(records), nil
}

func (i *Interactor) ForSession(ctx context.Context, studySessionID string) ([]reviewdto.ReviewOutput, error) {
	records, err := i.svc.ForSession(ctx, studySessionID)
	if err != nil {
		return nil, err
	}
	return toOutputs(records), nil
}

func (i *Interactor) Complete(ctx context.Context, reviewID string) (reviewdto.ReviewOutput, error) {
	record, err := i.svc.Complete(ctx, reviewID)
	if err != nil {
		return reviewdto.ReviewOutput{}, err
	}
	return toOutput(record), nil
}

func (i *Interactor) Reopen(ctx context.Context, reviewID string) (reviewdto.ReviewOutput, error) {
	record, err := i.svc.Reopen(ctx, reviewID)
	if err != nil {
		return reviewdto.ReviewOutput{}, err
	}
	return toOutput(record), nil
}

func toOutputs(records []domain.ReviewRecord) []reviewdto.ReviewOutput {
	out := make([]reviewdto.ReviewOutput, 0, len(records))
	for _, record := range records {
		out = append(out, toOutput(record))
	}
	return out
}

func toOutput(record domain.ReviewRecord) reviewdto.ReviewOutput {
	return reviewdto.ReviewOutput{
		ID:             record.ID,
		StudySessionID: record.StudySessionID,
		TaskID:         record.TaskID,
		ScheduledDate:  record.ScheduledDate,
		ReviewNumber:   record.ReviewNumber,
		OffsetDays:     record.OffsetDays,
		Label:          record.Label(),
		IsCompleted:    record.IsCompleted,
		CompletedAt:    record.CompletedAt,
	}
}
