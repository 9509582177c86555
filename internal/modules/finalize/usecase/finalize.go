package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"studyfocus/internal/modules/finalize/domain"
	finalizedto "studyfocus/internal/modules/finalize/dto"
	finalizeout "studyfocus/internal/modules/finalize/port/out"
	"studyfocus/internal/modules/finalize/service"
	"studyfocus/internal/platform/clock"
	apperrors "studyfocus/internal/platform/errors"
	"studyfocus/internal/platform/metrics"
)

const drainTimeout = 10 * time.Second

// Interactor runs finalization on a single worker fed by a bounded queue, so sessions are
// finalized in hand-off order and the timer never waits on storage.
type Interactor struct {
	finalizer *service.Finalizer
	ledger    finalizeout.FailureLedger
	clock     clock.Clock
	logger    *slog.Logger
	queue     chan domain.FinishedSession

	mu      sync.Mutex
	pending int
	waiters []chan struct{}
}

func NewInteractor(finalizer *service.Finalizer, ledger finalizeout.FailureLedger, clock clock.Clock, queueSize int, logger *slog.Logger) *Interactor {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Interactor{
		finalizer: finalizer,
		ledger:    ledger,
		clock:     clock,
		logger:    logger.With("component", "finalize"),
		queue:     make(chan domain.FinishedSession, queueSize),
	}
}

// Run processes queued sessions until ctx is cancelled, then drains what is left. A session
// already being written is not cut short by cancellation.
func (i *Interactor) Run(ctx context.Context) error {
	work := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			i.drain()
			return nil
		case session := <-i.queue:
			i.processQueued(work, session)
		}
	}
}

func (i *Interactor) Submit(ctx context.Context, input finalizedto.FinishInput) error {
	session := toSession(input)
	i.mu.Lock()
	i.pending++
	i.mu.Unlock()
	select {
	case i.queue <- session:
		return nil
	default:
		i.done()
		err := &domain.StepError{Step: domain.StepEnqueue, SessionID: session.SessionID, Err: apperrors.ErrQueueFull}
		i.recordFailure(ctx, session, err)
		return err
	}
}

func (i *Interactor) Finalize(ctx context.Context, input finalizedto.FinishInput) (finalizedto.FinishOutput, error) {
	return i.process(ctx, toSession(input))
}

// Retry re-runs the whole sequence for a session in the failure ledger. Steps that already
// succeeded are idempotent at the store level.
func (i *Interactor) Retry(ctx context.Context, sessionID string) (finalizedto.FinishOutput, error) {
	if sessionID == "" {
		return finalizedto.FinishOutput{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	failure, err := i.ledger.Get(ctx, sessionID)
	if err != nil {
		return finalizedto.FinishOutput{}, err
	}
	i.logger.Info("retrying finalize", "session_id", sessionID, "failed_step", failure.Step, "attempts", failure.Attempts)
	return i.process(ctx, failure.Session)
}

func (i *Interactor) Failures(ctx context.Context) ([]finalizedto.FailureOutput, error) {
	failures, err := i.ledger.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]finalizedto.FailureOutput, 0, len(failures))
	for _, f := range failures {
		out = append(out, finalizedto.FailureOutput{
			SessionID: f.Session.SessionID,
			TaskID:    f.Session.TaskID,
			TaskName:  f.Session.TaskName,
			Step:      string(f.Step),
			Error:     f.Error,
			FailedAt:  f.FailedAt,
			Attempts:  f.Attempts,
		})
	}
	return out, nil
}

func (i *Interactor) DailyStats(ctx context.Context, date time.Time) (finalizedto.DailyStatsOutput, error) {
	stats, err := i.finalizer.DailyStats(ctx, date)
	if err != nil {
		return finalizedto.DailyStatsOutput{}, err
	}
	out := finalizedto.DailyStatsOutput{
		Date:          stats.Date,
		Subjects:      make([]finalizedto.SubjectStatOutput, 0, len(stats.Subjects)),
		TotalMinutes:  stats.TotalMinutes,
		TotalSessions: stats.TotalSessions,
	}
	for _, s := range stats.Subjects {
		out.Subjects = append(out.Subjects, finalizedto.SubjectStatOutput{Subject: s.Subject, Minutes: s.Minutes, Sessions: s.Sessions})
	}
	return out, nil
}

func (i *Interactor) Flush(ctx context.Context) error {
	i.mu.Lock()
	if i.pending == 0 {
		i.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	i.waiters = append(i.waiters, ch)
	i.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (i *Interactor) processQueued(ctx context.Context, session domain.FinishedSession) {
	defer i.done()
	_, _ = i.process(ctx, session)
}

func (i *Interactor) process(ctx context.Context, session domain.FinishedSession) (finalizedto.FinishOutput, error) {
	started := time.Now()
	result, err := i.finalizer.Finalize(ctx, session)
	metrics.FinalizeDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		i.recordFailure(ctx, session, err)
		return finalizedto.FinishOutput{SessionID: session.SessionID}, err
	}
	metrics.ReviewsScheduled.Add(float64(result.ReviewsScheduled))
	if err := i.ledger.Remove(ctx, session.SessionID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		i.logger.Warn("remove finalize failure", "session_id", session.SessionID, "error", err)
	}
	return finalizedto.FinishOutput{SessionID: result.SessionID, ReviewsScheduled: result.ReviewsScheduled}, nil
}

func (i *Interactor) recordFailure(ctx context.Context, session domain.FinishedSession, err error) {
	step := domain.Step("unknown")
	var stepErr *domain.StepError
	if errors.As(err, &stepErr) {
		step = stepErr.Step
	}
	metrics.FinalizeFailures.WithLabelValues(string(step)).Inc()
	i.logger.Error("finalize failed", "session_id", session.SessionID, "step", step, "error", err)

	failure := domain.Failure{Session: session, Step: step, Error: err.Error(), FailedAt: i.clock.Now(), Attempts: 1}
	if previous, getErr := i.ledger.Get(ctx, session.SessionID); getErr == nil {
		failure.Attempts = previous.Attempts + 1
	}
	if err := i.ledger.Record(ctx, failure); err != nil {
		i.logger.Error("record finalize failure", "session_id", session.SessionID, "error", err)
	}
}

func (i *Interactor) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case session := <-i.queue:
			i.processQueued(ctx, session)
		default:
			return
		}
	}
}

func (i *Interactor) done() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pending--
	if i.pending > 0 {
		return
	}
	for _, ch := range i.waiters {
		close(ch)
	}
	i.waiters = nil
}

func toSession(input finalizedto.FinishInput) domain.FinishedSession {
	return domain.FinishedSession{
		SessionID:       input.SessionID,
		TaskID:          input.TaskID,
		TaskName:        input.TaskName,
		StartedAt:       input.StartedAt,
		EndedAt:         input.EndedAt,
		DurationMinutes: input.DurationMinutes,
		Cycles:          input.Cycles,
		Interrupted:     input.Interrupted,
		ReviewEnabled:   input.ReviewEnabled,
	}
}
