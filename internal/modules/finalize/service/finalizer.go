package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"studyfocus/internal/modules/finalize/domain"
	finalizeout "studyfocus/internal/modules/finalize/port/out"
	reviewdomain "studyfocus/internal/modules/review/domain"
	"studyfocus/internal/platform/clock"
	apperrors "studyfocus/internal/platform/errors"
)

type ReviewPlan struct {
	Offsets         []int
	FreeOffsetCount int
}

func DefaultReviewPlan() ReviewPlan {
	return ReviewPlan{Offsets: reviewdomain.CanonicalOffsets, FreeOffsetCount: reviewdomain.FreeOffsetCount}
}

// Finalizer persists an ended session. Steps run in a fixed order and the first failure stops
// the run:
//  1. finish the session record
//  2. schedule reviews (completed, review-enabled sessions only)
//  3. update the task's last studied time
//  4. add the minutes to the day's statistics
type Finalizer struct {
	sessions    finalizeout.SessionWriter
	reviews     finalizeout.ReviewWriter
	tasks       finalizeout.TaskWriter
	stats       finalizeout.DailyStatsStore
	entitlement finalizeout.Entitlement
	plan        ReviewPlan
	clock       clock.Clock
	location    *time.Location
	logger      *slog.Logger
}

func NewFinalizer(
	sessions finalizeout.SessionWriter,
	reviews finalizeout.ReviewWriter,
	tasks finalizeout.TaskWriter,
	stats finalizeout.DailyStatsStore,
	entitlement finalizeout.Entitlement,
	plan ReviewPlan,
	clock clock.Clock,
	location *time.Location,
	logger *slog.Logger,
) *Finalizer {
	if location == nil {
		location = time.Local
	}
	return &Finalizer{
		sessions:    sessions,
		reviews:     reviews,
		tasks:       tasks,
		stats:       stats,
		entitlement: entitlement,
		plan:        plan,
		clock:       clock,
		location:    location,
		logger:      logger.With("component", "finalize"),
	}
}

func (f *Finalizer) Finalize(ctx context.Context, session domain.FinishedSession) (domain.Result, error) {
	result := domain.Result{SessionID: session.SessionID}
	if session.SessionID == "" || session.TaskID == "" {
		return result, fmt.Errorf("%w: session and task id are required", apperrors.ErrInvalidInput)
	}
	if session.EndedAt.IsZero() {
		session.EndedAt = f.clock.Now()
	}
	fail := func(step domain.Step, err error) (domain.Result, error) {
		return result, &domain.StepError{Step: step, SessionID: session.SessionID, Err: err}
	}

	if err := f.sessions.FinishSession(ctx, session.Record()); err != nil {
		return fail(domain.StepFinishSession, err)
	}

	completionDate := reviewdomain.StartOfDay(session.EndedAt.In(f.location))
	if session.SchedulesReviews() {
		premium, err := f.entitlement.IsPremium(ctx)
		if err != nil {
			return fail(domain.StepEntitlement, err)
		}
		offsets := reviewdomain.OffsetsFor(premium, f.plan.Offsets, f.plan.FreeOffsetCount)
		records := reviewdomain.Generate(session.SessionID, session.TaskID, completionDate, offsets)
		if err := f.reviews.InsertReviewRecords(ctx, records); err != nil {
			return fail(domain.StepInsertReviews, err)
		}
		result.ReviewsScheduled = len(records)
	}

	if err := f.tasks.UpdateLastStudiedAt(ctx, session.TaskID, session.EndedAt); err != nil {
		return fail(domain.StepUpdateLastStudied, err)
	}

	if err := f.stats.UpdateDailyStats(ctx, completionDate, session.DurationMinutes, session.SubjectLabel()); err != nil {
		return fail(domain.StepUpdateDailyStats, err)
	}

	f.logger.Info("session finalized",
		"session_id", session.SessionID,
		"interrupted", session.Interrupted,
		"minutes", session.DurationMinutes,
		"reviews", result.ReviewsScheduled,
	)
	return result, nil
}

func (f *Finalizer) DailyStats(ctx context.Context, date time.Time) (domain.DailyStats, error) {
	if date.IsZero() {
		date = f.clock.Now()
	}
	day := reviewdomain.StartOfDay(date.In(f.location))
	subjects, err := f.stats.DailyStats(ctx, day)
	if err != nil {
		return domain.DailyStats{}, err
	}
	return domain.NewDailyStats(day, subjects), nil
}
