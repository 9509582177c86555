package service

import (
	"context"
	"fmt"
	"time"

	"studyfocus/internal/modules/review/domain"
	reviewout "studyfocus/internal/modules/review/port/out"
	"studyfocus/internal/platform/clock"
	apperrors "studyfocus/internal/platform/errors"
)

type ReviewService struct {
	clock clock.Clock
	store reviewout.ReviewStore
}

func NewReviewService(clock clock.Clock, store reviewout.ReviewStore) *ReviewService {
	return &ReviewService{clock: clock, store: store}
}

func (s *ReviewService) Due(ctx context.Context, date time.Time) ([]domain.ReviewRecord, error) {
	if date.IsZero() {
		date = s.clock.Now()
	}
	return s.store.ListDue(ctx, domain.StartOfDay(date))
}

func (s *ReviewService) ForSession(ctx context.Context, studySessionID string) ([]domain.ReviewRecord, error) {
	if studySessionID == "" {
		return nil, fmt.Errorf("%w: study session id is required", apperrors.ErrInvalidInput)
	}
	return s.store.ListBySession(ctx, studySessionID)
}

// Complete marks a review done. Completing an already completed review keeps its first timestamp.
func (s *ReviewService) Complete(ctx context.Context, reviewID string) (domain.ReviewRecord, error) {
	record, err := s.load(ctx, reviewID)
	if err != nil {
		return domain.ReviewRecord{}, err
	}
	if record.IsCompleted {
		return record, nil
	}
	now := s.clock.Now()
	if err := s.store.SetCompletion(ctx, reviewID, &now); err != nil {
		return domain.ReviewRecord{}, err
	}
	record.IsCompleted = true
	record.CompletedAt = &now
	return record, nil
}

func (s *ReviewService) Reopen(ctx context.Context, reviewID string) (domain.ReviewRecord, error) {
	record, err := s.load(ctx, reviewID)
	if err != nil {
		return domain.ReviewRecord{}, err
	}
	if !record.IsCompleted {
		return record, nil
	}
	if err := s.store.SetCompletion(ctx, reviewID, nil); err != nil {
		return domain.ReviewRecord{}, err
	}
	record.IsCompleted = false
	record.CompletedAt = nil
	return record, nil
}

func (s *ReviewService) load(ctx context.Context, reviewID string) (domain.ReviewRecord, error) {
	if reviewID == "" {
		return domain.ReviewRecord{}, fmt.Errorf("%w: review id is required", apperrors.ErrInvalidInput)
	}
	return s.store.Get(ctx, reviewID)
}
