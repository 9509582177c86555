package domain_test

import (
	"testing"
	"time"

	"studyfocus/internal/modules/timer/domain"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func begin(settings domain.Settings) domain.SessionState {
	return domain.Begin("session-1", domain.Task{ID: "task-1", Name: "Calculus"}, settings, t0)
}

func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }

func TestBeginEntersFirstWorkPhase(t *testing.T) {
	t.Parallel()
	s := begin(domain.DefaultSettings())
	if s.Phase != domain.PhaseWork || s.CurrentCycle != 1 || s.TotalCycles != 4 {
		t.Fatalf("unexpected start state %+v", s)
	}
	if s.TotalTimeSeconds != 25*60 || s.TimeRemainingSeconds != 25*60 {
		t.Fatalf("unexpected durations %d/%d", s.TimeRemainingSeconds, s.TotalTimeSeconds)
	}
	if !s.IsRunning || s.IsPaused || s.TotalWorkMinutes != 0 || s.SessionCompleted {
		t.Fatalf("unexpected flags %+v", s)
	}
}

func TestSettingsAreClamped(t *testing.T) {
	t.Parallel()
	s := domain.Settings{WorkMinutes: 500, ShortBreakMinutes: 0, LongBreakMinutes: -3, Cycles: 99, LongBreakInterval: 0}.Clamped()
	if s.WorkMinutes != 180 || s.ShortBreakMinutes != 1 || s.LongBreakMinutes != 1 || s.Cycles != 10 || s.LongBreakInterval != 1 {
		t.Fatalf("unexpected clamped settings %+v", s)
	}
	s = domain.Settings{WorkMinutes: 50, ShortBreakMinutes: 61, LongBreakMinutes: 121, Cycles: 0, LongBreakInterval: 11}.Clamped()
	if s.WorkMinutes != 50 || s.ShortBreakMinutes != 60 || s.LongBreakMinutes != 120 || s.Cycles != 1 || s.LongBreakInterval != 10 {
		t.Fatalf("unexpected clamped settings %+v", s)
	}
}

func TestRemainingCountsDown(t *testing.T) {
	t.Parallel()
	s := begin(domain.DefaultSettings())
	out := s.Advance(t0.Add(90 * time.Second))
	if out.Changed() {
		t.Fatalf("no boundary expected")
	}
	if s.TimeRemainingSeconds != 25*60-90 {
		t.Fatalf("remaining %d", s.TimeRemainingSeconds)
	}
	s.Advance(t0.Add(90*time.Second + 400*time.Millisecond))
	if s.TimeRemainingSeconds != 25*60-90 {
		t.Fatalf("partial seconds round up, got %d", s.TimeRemainingSeconds)
	}
}

func TestWorkBeforeLastCycleNeverCompletes(t *testing.T) {
	t.Parallel()
	s := begin(domain.DefaultSettings())
	out := s.Advance(t0.Add(minutes(25)))
	if out.Completed || s.SessionCompleted {
		t.Fatalf("cycle 1 of 4 must not complete")
	}
	if s.Phase != domain.PhaseShortBreak || s.TotalWorkMinutes != 25 || s.CurrentCycle != 1 {
		t.Fatalf("unexpected state after first work %+v", s)
	}
	if s.TotalTimeSeconds != 5*60 || s.TimeRemainingSeconds != 5*60 {
		t.Fatalf("break duration not reset: %d/%d", s.TimeRemainingSeconds, s.TotalTimeSeconds)
	}
	out = s.Advance(t0.Add(minutes(30)))
	if s.Phase != domain.PhaseWork || s.CurrentCycle != 2 || len(out.Entered) != 1 {
		t.Fatalf("break should lead to cycle 2 work, got %+v", s)
	}
}

func TestFullSessionCompletesWithHundredMinutes(t *testing.T) {
	t.Parallel()
	s := begin(domain.DefaultSettings())
	var phases []domain.Phase
	for i := 0; i < 6; i++ {
		out := s.Skip(t0)
		if out.Completed {
			t.Fatalf("completed too early at step %d", i)
		}
		phases = append(phases, out.Entered...)
	}
	want := []domain.Phase{
		domain.PhaseShortBreak, domain.PhaseWork,
		domain.PhaseShortBreak, domain.PhaseWork,
		domain.PhaseShortBreak, domain.PhaseWork,
	}
	for i, p := range want {
		if phases[i] != p {
			t.Fatalf("phase %d = %s, want %s", i, phases[i], p)
		}
	}
	if s.CurrentCycle != 4 || s.Phase != domain.PhaseWork {
		t.Fatalf("expected cycle 4 work, got %+v", s)
	}
	out := s.Skip(t0)
	if !out.Completed {
		t.Fatalf("cycle 4 work should complete the session")
	}
	if s.Phase != domain.PhaseIdle || !s.SessionCompleted || s.TotalWorkMinutes != 100 || s.IsRunning {
		t.Fatalf("unexpected completed state %+v", s)
	}
	summary := s.Completed(t0)
	if summary.Cycles != 4 || summary.DurationMinutes != 100 || summary.Interrupted {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestLongBreakEveryInterval(t *testing.T) {
	t.Parallel()
	settings := domain.DefaultSettings()
	settings.Cycles = 6
	settings.LongBreakInterval = 2
	s := begin(settings)
	s.Skip(t0)
	if s.Phase != domain.PhaseShortBreak {
		t.Fatalf("cycle 1 should get a short break, got %s", s.Phase)
	}
	s.Skip(t0)
	s.Skip(t0)
	if s.Phase != domain.PhaseLongBreak || s.CurrentCycle != 2 {
		t.Fatalf("cycle 2 should get a long break, got %s at %d", s.Phase, s.CurrentCycle)
	}
	if s.TotalTimeSeconds != 15*60 {
		t.Fatalf("long break duration %d", s.TotalTimeSeconds)
	}
}

func TestLongSuspensionCrossesSeveralBoundaries(t *testing.T) {
	t.Parallel()
	s := begin(domain.DefaultSettings())
	// 25 work + 5 break + 25 work + 5 break = 60, then 7 minutes into cycle 3 work
	out := s.Advance(t0.Add(minutes(67)))
	if out.Completed {
		t.Fatalf("must not complete")
	}
	if len(out.Entered) != 4 {
		t.Fatalf("expected 4 transitions, got %v", out.Entered)
	}
	if s.Phase != domain.PhaseWork || s.CurrentCycle != 3 || s.TotalWorkMinutes != 50 {
		t.Fatalf("unexpected state %+v", s)
	}
	if s.TimeRemainingSeconds != 18*60 {
		t.Fatalf("overflow lost: remaining %d", s.TimeRemainingSeconds)
	}
}

func TestSuspensionPastTheEndCompletes(t *testing.T) {
	t.Parallel()
	settings := domain.DefaultSettings()
	settings.Cycles = 2
	s := begin(settings)
	out := s.Advance(t0.Add(10 * time.Hour))
	if !out.Completed || !s.SessionCompleted || s.TotalWorkMinutes != 50 {
		t.Fatalf("expected completion with 50 minutes, got %+v", s)
	}
}

func TestAutoLoopWrapsCycles(t *testing.T) {
	t.Parallel()
	settings := domain.DefaultSettings()
	settings.Cycles = 2
	settings.LongBreakInterval = 2
	settings.AutoLoop = true
	s := begin(settings)
	s.Skip(t0) // short break
	s.Skip(t0) // cycle 2 work
	out := s.Skip(t0)
	if out.Completed || s.Phase != domain.PhaseLongBreak {
		t.Fatalf("auto loop must not complete, got %+v", s)
	}
	s.Skip(t0)
	if s.Phase != domain.PhaseWork || s.CurrentCycle != 1 {
		t.Fatalf("cycle should wrap to 1, got %d in %s", s.CurrentCycle, s.Phase)
	}
	if s.TotalWorkMinutes != 50 {
		t.Fatalf("work minutes %d", s.TotalWorkMinutes)
	}
}

func TestPauseFreezesRemaining(t *testing.T) {
	t.Parallel()
	s := begin(domain.DefaultSettings())
	s.Advance(t0.Add(minutes(10)))
	s.Pause(t0.Add(minutes(10)))
	if s.IsRunning || !s.IsPaused {
		t.Fatalf("unexpected flags after pause %+v", s)
	}
	if out := s.Advance(t0.Add(minutes(60))); out.Changed() {
		t.Fatalf("paused session must not advance")
	}
	if s.TimeRemainingSeconds != 15*60 {
		t.Fatalf("remaining changed while paused: %d", s.TimeRemainingSeconds)
	}
	resumeAt := t0.Add(minutes(60))
	s.Resume(resumeAt)
	s.Advance(resumeAt.Add(minutes(5)))
	if s.TimeRemainingSeconds != 10*60 {
		t.Fatalf("remaining after resume %d", s.TimeRemainingSeconds)
	}
	out := s.Advance(resumeAt.Add(minutes(15)))
	if s.Phase != domain.PhaseShortBreak || len(out.Entered) != 1 {
		t.Fatalf("work should end 15 minutes after resume, got %+v", s)
	}
}

func TestInterruptedSummaryDoesNotCreditCurrentWork(t *testing.T) {
	t.Parallel()
	s := begin(domain.DefaultSettings())
	s.Advance(t0.Add(minutes(30)))
	s.Advance(t0.Add(minutes(40)))
	if s.CurrentCycle != 2 || s.Phase != domain.PhaseWork {
		t.Fatalf("expected cycle 2 work, got %+v", s)
	}
	summary := s.Interrupted(t0.Add(minutes(40)))
	if summary.Cycles != 2 || summary.DurationMinutes != 25 || !summary.Interrupted {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.SessionID != "session-1" || summary.TaskName != "Calculus" || !summary.StartedAt.Equal(t0) {
		t.Fatalf("summary lost identity %+v", summary)
	}
}

func TestCloneDoesNotShareAllowedPackages(t *testing.T) {
	t.Parallel()
	settings := domain.DefaultSettings()
	settings.AllowedPackages = []string{"org.wikipedia"}
	s := begin(settings)
	c := s.Clone()
	c.AllowedPackages[0] = "changed"
	if s.AllowedPackages[0] != "org.wikipedia" {
		t.Fatalf("clone shares allowed packages")
	}
	settings.AllowedPackages[0] = "mutated"
	if s.AllowedPackages[0] != "org.wikipedia" {
		t.Fatalf("state shares settings slice")
	}
}
