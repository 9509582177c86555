package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"studyfocus/internal/modules/timer/domain"
	timerout "studyfocus/internal/modules/timer/port/out"
	"studyfocus/internal/platform/clock"
	apperrors "studyfocus/internal/platform/errors"
	"studyfocus/internal/platform/id"
	"studyfocus/internal/platform/metrics"
)

type command struct {
	apply func(ctx context.Context, now time.Time) error
	ctx   context.Context
	reply chan error
}

// Engine owns the session state. Commands and ticks are serialized through the Run goroutine;
// everything else sees copies through the broadcaster.
type Engine struct {
	clock     clock.Clock
	ids       id.Generator
	focus     timerout.FocusGate
	sink      timerout.FinishSink
	snapshots timerout.ActiveSessionStore
	interval  time.Duration
	logger    *slog.Logger

	cmds        chan command
	done        chan struct{}
	broadcaster *Broadcaster
	completion  *CompletionSlot

	state domain.SessionState
}

func NewEngine(clock clock.Clock, ids id.Generator, focus timerout.FocusGate, sink timerout.FinishSink, snapshots timerout.ActiveSessionStore, interval time.Duration, logger *slog.Logger) *Engine {
	if interval <= 0 {
		interval = time.Second
	}
	state := domain.Idle()
	return &Engine{
		clock:       clock,
		ids:         ids,
		focus:       focus,
		sink:        sink,
		snapshots:   snapshots,
		interval:    interval,
		logger:      logger.With("component", "timer"),
		cmds:        make(chan command),
		done:        make(chan struct{}),
		broadcaster: NewBroadcaster(state),
		completion:  &CompletionSlot{},
		state:       state,
	}
}

// Run processes commands and ticks until ctx is cancelled. It must be called exactly once.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-e.cmds:
			cmd.reply <- cmd.apply(context.WithoutCancel(cmd.ctx), e.clock.Now())
		case <-ticker.C():
			e.tick(ctx)
		}
	}
}

func (e *Engine) Start(ctx context.Context, task domain.Task, settings domain.Settings) (domain.SessionState, error) {
	var started domain.SessionState
	err := e.do(ctx, func(ctx context.Context, now time.Time) error {
		if e.state.Active() {
			return apperrors.ErrAlreadyRunning
		}
		if task.ID == "" {
			return fmt.Errorf("%w: task id is required", apperrors.ErrInvalidInput)
		}
		if task.Name == "" {
			task.Name = task.ID
		}
		e.state = domain.Begin(e.ids.New(), task, settings, now)
		e.activateFocus(ctx)
		e.persist(ctx)
		e.publish()
		metrics.SessionsStarted.Inc()
		metrics.ActiveSession.Set(1)
		metrics.PhaseTransitions.WithLabelValues(string(domain.PhaseWork)).Inc()
		e.logger.Info("session started",
			"session_id", e.state.SessionID,
			"task_id", e.state.TaskID,
			"cycles", e.state.TotalCycles,
			"work_minutes", e.state.WorkDurationMinutes,
		)
		started = e.state.Clone()
		return nil
	})
	return started, err
}

func (e *Engine) Pause(ctx context.Context) (domain.SessionState, error) {
	return e.mutate(ctx, func(ctx context.Context, now time.Time) error {
		if !e.state.IsRunning {
			return nil
		}
		e.handle(ctx, e.state.Advance(now), now)
		if !e.state.Active() {
			return nil
		}
		e.state.Pause(now)
		e.focus.Deactivate(ctx)
		e.persist(ctx)
		e.logger.Info("session paused", "session_id", e.state.SessionID, "remaining_seconds", e.state.TimeRemainingSeconds)
		return nil
	})
}

func (e *Engine) Resume(ctx context.Context) (domain.SessionState, error) {
	return e.mutate(ctx, func(ctx context.Context, now time.Time) error {
		if !e.state.IsPaused {
			return nil
		}
		e.state.Resume(now)
		e.activateFocus(ctx)
		e.persist(ctx)
		e.logger.Info("session resumed", "session_id", e.state.SessionID)
		return nil
	})
}

func (e *Engine) Skip(ctx context.Context) (domain.SessionState, error) {
	return e.mutate(ctx, func(ctx context.Context, now time.Time) error {
		e.handle(ctx, e.state.Advance(now), now)
		if !e.state.Active() {
			return nil
		}
		from := e.state.Phase
		out := e.state.Skip(now)
		e.logger.Info("phase skipped", "session_id", e.state.SessionID, "from", from)
		e.handle(ctx, out, now)
		return nil
	})
}

// Stop interrupts the active session. Focus is released before Stop returns; persisting the
// interrupted record happens asynchronously through the finish sink.
func (e *Engine) Stop(ctx context.Context) (domain.Summary, error) {
	var summary domain.Summary
	err := e.do(ctx, func(ctx context.Context, now time.Time) error {
		if !e.state.Active() {
			return apperrors.ErrNotRunning
		}
		e.handle(ctx, e.state.Advance(now), now)
		if !e.state.Active() {
			e.publish()
			return apperrors.ErrNotRunning
		}
		e.focus.Deactivate(ctx)
		summary = e.state.Interrupted(now)
		e.state = domain.Idle()
		e.finish(ctx, summary, "interrupted")
		e.publish()
		return nil
	})
	return summary, err
}

// Snapshot reads the state through the engine loop, after every queued tick and command.
func (e *Engine) Snapshot(ctx context.Context) (domain.SessionState, error) {
	var snapshot domain.SessionState
	err := e.do(ctx, func(context.Context, time.Time) error {
		snapshot = e.state.Clone()
		return nil
	})
	return snapshot, err
}

// State returns the last published snapshot without waiting for the engine loop.
func (e *Engine) State() domain.SessionState {
	return e.broadcaster.Current()
}

func (e *Engine) Subscribe() (<-chan domain.SessionState, func()) {
	return e.broadcaster.Subscribe()
}

func (e *Engine) ConsumeCompleted() (domain.CompletedEvent, bool) {
	return e.completion.Consume()
}

// Recover finalizes a session left behind by a previous process as interrupted. Only work phases
// recorded in the snapshot are credited.
func (e *Engine) Recover(ctx context.Context) (domain.Summary, bool, error) {
	if e.snapshots == nil {
		return domain.Summary{}, false, nil
	}
	snapshot, err := e.snapshots.LoadActive(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return domain.Summary{}, false, nil
	}
	if err != nil {
		return domain.Summary{}, false, err
	}
	summary := snapshot.Interrupted(e.clock.Now())
	e.logger.Warn("recovering unfinished session", "session_id", summary.SessionID, "work_minutes", summary.DurationMinutes)
	if err := e.snapshots.ClearActive(ctx); err != nil {
		return domain.Summary{}, false, err
	}
	metrics.SessionsFinished.WithLabelValues("recovered").Inc()
	if err := e.sink.Submit(ctx, summary); err != nil {
		return summary, true, err
	}
	return summary, true, nil
}

func (e *Engine) tick(ctx context.Context) {
	if !e.state.IsRunning {
		return
	}
	now := e.clock.Now()
	e.handle(ctx, e.state.Advance(now), now)
	e.publish()
}

func (e *Engine) handle(ctx context.Context, out domain.Outcome, now time.Time) {
	for _, phase := range out.Entered {
		metrics.PhaseTransitions.WithLabelValues(string(phase)).Inc()
		e.logger.Info("phase started", "session_id", e.state.SessionID, "phase", phase, "cycle", e.state.CurrentCycle)
	}
	if out.Completed {
		e.focus.Deactivate(ctx)
		summary := e.state.Completed(now)
		e.completion.Put(domain.CompletedEvent{Summary: summary})
		e.finish(ctx, summary, "completed")
		return
	}
	if out.Changed() {
		e.persist(ctx)
	}
}

func (e *Engine) finish(ctx context.Context, summary domain.Summary, outcome string) {
	metrics.SessionsFinished.WithLabelValues(outcome).Inc()
	metrics.ActiveSession.Set(0)
	e.logger.Info("session finished",
		"session_id", summary.SessionID,
		"outcome", outcome,
		"cycles", summary.Cycles,
		"work_minutes", summary.DurationMinutes,
	)
	if e.snapshots != nil {
		if err := e.snapshots.ClearActive(ctx); err != nil {
			e.logger.Warn("clear active session snapshot", "error", err)
		}
	}
	if err := e.sink.Submit(ctx, summary); err != nil {
		e.logger.Error("hand off finished session", "session_id", summary.SessionID, "error", err)
	}
}

func (e *Engine) activateFocus(ctx context.Context) {
	if err := e.focus.Activate(ctx, e.state.StrictMode, e.state.AllowedPackages); err != nil {
		e.logger.Warn("focus mode not active for session", "session_id", e.state.SessionID, "error", err)
	}
}

func (e *Engine) persist(ctx context.Context) {
	if e.snapshots == nil {
		return
	}
	if err := e.snapshots.SaveActive(ctx, e.state.Clone()); err != nil {
		e.logger.Warn("save active session snapshot", "error", err)
	}
}

func (e *Engine) publish() {
	e.broadcaster.Publish(e.state)
}

func (e *Engine) mutate(ctx context.Context, fn func(ctx context.Context, now time.Time) error) (domain.SessionState, error) {
	var state domain.SessionState
	err := e.do(ctx, func(ctx context.Context, now time.Time) error {
		if !e.state.Active() {
			return apperrors.ErrNotRunning
		}
		if err := fn(ctx, now); err != nil {
			return err
		}
		e.publish()
		state = e.state.Clone()
		return nil
	})
	return state, err
}

func (e *Engine) do(ctx context.Context, apply func(ctx context.Context, now time.Time) error) error {
	cmd := command{apply: apply, ctx: ctx, reply: make(chan error, 1)}
	select {
	case e.cmds <- cmd:
	case <-e.done:
		return apperrors.ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-cmd.reply
}
