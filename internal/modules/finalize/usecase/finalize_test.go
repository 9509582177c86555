package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	finalizeout "studyfocus/internal/modules/finalize/adapter/out"
	"studyfocus/internal/modules/finalize/domain"
	finalizedto "studyfocus/internal/modules/finalize/dto"
	"studyfocus/internal/modules/finalize/service"
	"studyfocus/internal/modules/finalize/usecase"
	reviewout "studyfocus/internal/modules/review/adapter/out"
	reviewdomain "studyfocus/internal/modules/review/domain"
	"studyfocus/internal/platform/clock"
	"studyfocus/internal/platform/db"
	apperrors "studyfocus/internal/platform/errors"
	"studyfocus/internal/platform/logging"
)

type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }

func (c fakeClock) NewTicker(time.Duration) clock.Ticker { return nil }

var ended = time.Date(2026, 3, 10, 18, 45, 0, 0, time.UTC)

// flakyStats fails the daily stats write until healed.
type flakyStats struct {
	*finalizeout.SQLStore
	mu     sync.Mutex
	broken bool
}

func (s *flakyStats) UpdateDailyStats(ctx context.Context, date time.Time, minutes int, subject string) error {
	s.mu.Lock()
	broken := s.broken
	s.mu.Unlock()
	if broken {
		return errors.New("disk full")
	}
	return s.SQLStore.UpdateDailyStats(ctx, date, minutes, subject)
}

func (s *flakyStats) heal() {
	s.mu.Lock()
	s.broken = false
	s.mu.Unlock()
}

type harness struct {
	conn    *sqlx.DB
	store   *finalizeout.SQLStore
	reviews *reviewout.SQLReviewStore
	stats   *flakyStats
	ledger  *finalizeout.FileFailureLedger
	uc      *usecase.Interactor
}

func newHarness(t *testing.T, premium bool, queueSize int) *harness {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	conn, err := db.Open(ctx, db.DriverSQLite, filepath.Join(dir, "studyfocus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(ctx, conn, db.DriverSQLite, logging.Discard()))

	h := &harness{
		conn:    conn,
		store:   finalizeout.NewSQLStore(conn),
		reviews: reviewout.NewSQLReviewStore(conn),
		ledger:  finalizeout.NewFileFailureLedger(dir),
	}
	h.stats = &flakyStats{SQLStore: h.store}
	clk := fakeClock{now: ended.Add(time.Minute)}
	finalizer := service.NewFinalizer(h.store, h.reviews, h.store, h.stats, finalizeout.ConfigEntitlement{Premium: premium},
		service.DefaultReviewPlan(), clk, time.UTC, logging.Discard())
	h.uc = usecase.NewInteractor(finalizer, h.ledger, clk, queueSize, logging.Discard())
	return h
}

func input(sessionID string, minutes int, interrupted bool) finalizedto.FinishInput {
	return finalizedto.FinishInput{
		SessionID:       sessionID,
		TaskID:          "task-1",
		TaskName:        "Calculus",
		StartedAt:       ended.Add(-2 * time.Hour),
		EndedAt:         ended,
		DurationMinutes: minutes,
		Cycles:          4,
		Interrupted:     interrupted,
		ReviewEnabled:   true,
	}
}

func TestFinalizePersistsEverything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, true, 4)

	out, err := h.uc.Finalize(ctx, input("session-1", 100, false))
	require.NoError(t, err)
	assert.Equal(t, 6, out.ReviewsScheduled)

	records, err := h.reviews.ListBySession(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, []int{1, 3, 7, 14, 30, 60}, []int{
		records[0].OffsetDays, records[1].OffsetDays, records[2].OffsetDays,
		records[3].OffsetDays, records[4].OffsetDays, records[5].OffsetDays,
	})

	last, err := h.store.LastStudiedAt(ctx, "task-1")
	require.NoError(t, err)
	assert.True(t, ended.Equal(last))

	var interrupted int
	require.NoError(t, h.conn.GetContext(ctx, &interrupted, `SELECT interrupted FROM sessions WHERE id = ?`, "session-1"))
	assert.Zero(t, interrupted)

	stats, err := h.uc.DailyStats(ctx, ended)
	require.NoError(t, err)
	require.Len(t, stats.Subjects, 1)
	assert.Equal(t, 100, stats.TotalMinutes)
	assert.Equal(t, 1, stats.TotalSessions)
}

func TestInterruptedSessionStoresNoReviews(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, true, 4)

	out, err := h.uc.Finalize(ctx, input("session-1", 25, true))
	require.NoError(t, err)
	assert.Zero(t, out.ReviewsScheduled)

	records, err := h.reviews.ListBySession(ctx, "session-1")
	require.NoError(t, err)
	assert.Empty(t, records)

	stats, err := h.uc.DailyStats(ctx, ended)
	require.NoError(t, err)
	assert.Equal(t, 25, stats.TotalMinutes)
}

func TestStatsAccumulatePerSubject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, false, 4)

	_, err := h.uc.Finalize(ctx, input("session-1", 50, false))
	require.NoError(t, err)
	_, err = h.uc.Finalize(ctx, input("session-2", 25, true))
	require.NoError(t, err)
	physics := input("session-3", 75, false)
	physics.TaskID = "task-2"
	physics.TaskName = "Physics"
	_, err = h.uc.Finalize(ctx, physics)
	require.NoError(t, err)

	stats, err := h.uc.DailyStats(ctx, ended)
	require.NoError(t, err)
	require.Len(t, stats.Subjects, 2)
	assert.Equal(t, "Calculus", stats.Subjects[0].Subject)
	assert.Equal(t, 75, stats.Subjects[0].Minutes)
	assert.Equal(t, 2, stats.Subjects[0].Sessions)
	assert.Equal(t, 150, stats.TotalMinutes)
	assert.Equal(t, 3, stats.TotalSessions)
}

func TestLastStudiedNeverMovesBackwards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, false, 4)

	_, err := h.uc.Finalize(ctx, input("session-1", 25, true))
	require.NoError(t, err)
	older := input("session-0", 25, true)
	older.EndedAt = ended.Add(-24 * time.Hour)
	_, err = h.uc.Finalize(ctx, older)
	require.NoError(t, err)

	last, err := h.store.LastStudiedAt(ctx, "task-1")
	require.NoError(t, err)
	assert.True(t, ended.Equal(last))
}

func TestFailureIsRecordedAndRetried(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, true, 4)
	h.stats.broken = true

	_, err := h.uc.Finalize(ctx, input("session-1", 100, false))
	var stepErr *domain.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, domain.StepUpdateDailyStats, stepErr.Step)

	failures, err := h.uc.Failures(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "session-1", failures[0].SessionID)
	assert.Equal(t, string(domain.StepUpdateDailyStats), failures[0].Step)
	assert.Equal(t, 1, failures[0].Attempts)

	_, err = h.uc.Retry(ctx, "session-1")
	require.Error(t, err)
	failures, err = h.uc.Failures(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, 2, failures[0].Attempts)

	h.stats.heal()
	out, err := h.uc.Retry(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 6, out.ReviewsScheduled)

	records, err := h.reviews.ListBySession(ctx, "session-1")
	require.NoError(t, err)
	assert.Len(t, records, 6, "retry must not duplicate reviews")

	stats, err := h.uc.DailyStats(ctx, ended)
	require.NoError(t, err)
	assert.Equal(t, 100, stats.TotalMinutes)

	failures, err = h.uc.Failures(ctx)
	require.NoError(t, err)
	assert.Empty(t, failures)

	_, err = h.uc.Retry(ctx, "session-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQueuedSessionsAreProcessed(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.uc.Run(ctx)
	}()

	for _, id := range []string{"session-1", "session-2", "session-3"} {
		require.NoError(t, h.uc.Submit(ctx, input(id, 25, false)))
	}
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	require.NoError(t, h.uc.Flush(flushCtx))

	stats, err := h.uc.DailyStats(context.Background(), ended)
	require.NoError(t, err)
	assert.Equal(t, 75, stats.TotalMinutes)
	assert.Equal(t, 3, stats.TotalSessions)

	cancel()
	<-done
}

func TestSubmitDrainsOnShutdown(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false, 8)
	require.NoError(t, h.uc.Submit(context.Background(), input("session-1", 25, false)))
	require.NoError(t, h.uc.Submit(context.Background(), input("session-2", 25, false)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.uc.Run(ctx))
	require.NoError(t, h.uc.Flush(context.Background()))

	stats, err := h.uc.DailyStats(context.Background(), ended)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSessions)
}

func TestFullQueueIsRecordedAsFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, false, 1)
	require.NoError(t, h.uc.Submit(ctx, input("session-1", 25, false)))

	err := h.uc.Submit(ctx, input("session-2", 25, false))
	require.ErrorIs(t, err, apperrors.ErrQueueFull)

	failures, err := h.uc.Failures(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, string(domain.StepEnqueue), failures[0].Step)

	out, err := h.uc.Retry(ctx, "session-2")
	require.NoError(t, err)
	assert.Equal(t, 2, out.ReviewsScheduled)
	assert.Equal(t, reviewdomain.FreeOffsetCount, out.ReviewsScheduled)
}
