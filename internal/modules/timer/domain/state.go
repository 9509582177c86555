package domain

import (
	"slices"
	"time"
)

type Phase string

const (
	PhaseIdle       Phase = "IDLE"
	PhaseWork       Phase = "WORK"
	PhaseShortBreak Phase = "SHORT_BREAK"
	PhaseLongBreak  Phase = "LONG_BREAK"
)

func (p Phase) IsBreak() bool {
	return p == PhaseShortBreak || p == PhaseLongBreak
}

type Bounds struct {
	Min int
	Max int
}

func (b Bounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

var (
	CycleBounds             = Bounds{Min: 1, Max: 10}
	WorkBounds              = Bounds{Min: 1, Max: 180}
	ShortBreakBounds        = Bounds{Min: 1, Max: 60}
	LongBreakBounds         = Bounds{Min: 1, Max: 120}
	LongBreakIntervalBounds = Bounds{Min: 1, Max: 10}
)

type Task struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Settings struct {
	WorkMinutes       int      `json:"work_minutes"`
	ShortBreakMinutes int      `json:"short_break_minutes"`
	LongBreakMinutes  int      `json:"long_break_minutes"`
	Cycles            int      `json:"cycles"`
	LongBreakInterval int      `json:"long_break_interval"`
	AutoLoop          bool     `json:"auto_loop"`
	StrictMode        bool     `json:"strict_mode"`
	AllowedPackages   []string `json:"allowed_packages,omitempty"`
	ReviewEnabled     bool     `json:"review_enabled"`
}

func DefaultSettings() Settings {
	return Settings{
		WorkMinutes:       25,
		ShortBreakMinutes: 5,
		LongBreakMinutes:  15,
		Cycles:            4,
		LongBreakInterval: 4,
		ReviewEnabled:     true,
	}
}

// Clamped pulls every duration and count into its allowed range. Settings are never rejected.
func (s Settings) Clamped() Settings {
	s.WorkMinutes = WorkBounds.Clamp(s.WorkMinutes)
	s.ShortBreakMinutes = ShortBreakBounds.Clamp(s.ShortBreakMinutes)
	s.LongBreakMinutes = LongBreakBounds.Clamp(s.LongBreakMinutes)
	s.Cycles = CycleBounds.Clamp(s.Cycles)
	s.LongBreakInterval = LongBreakIntervalBounds.Clamp(s.LongBreakInterval)
	s.AllowedPackages = slices.Clone(s.AllowedPackages)
	return s
}

// SessionState is the single mutable record owned by the timer engine. Everything outside the
// engine works on copies.
type SessionState struct {
	Phase                Phase     `json:"phase"`
	TimeRemainingSeconds int       `json:"time_remaining_seconds"`
	TotalTimeSeconds     int       `json:"total_time_seconds"`
	CurrentCycle         int       `json:"current_cycle"`
	TotalCycles          int       `json:"total_cycles"`
	IsRunning            bool      `json:"is_running"`
	IsPaused             bool      `json:"is_paused"`
	SessionID            string    `json:"session_id"`
	TaskID               string    `json:"task_id"`
	TaskName             string    `json:"task_name"`
	TotalWorkMinutes     int       `json:"total_work_minutes"`
	WorkDurationMinutes  int       `json:"work_duration_minutes"`
	ShortBreakMinutes    int       `json:"short_break_minutes"`
	LongBreakMinutes     int       `json:"long_break_minutes"`
	LongBreakInterval    int       `json:"long_break_interval"`
	SessionCompleted     bool      `json:"session_completed"`
	AutoLoopEnabled      bool      `json:"auto_loop_enabled"`
	StrictMode           bool      `json:"strict_mode"`
	AllowedPackages      []string  `json:"allowed_packages,omitempty"`
	ReviewEnabled        bool      `json:"review_enabled"`
	StartedAt            time.Time `json:"started_at"`
	// PhaseStartedAt anchors the running phase on the wall clock; PhaseElapsed banks the time
	// spent in the phase before the last pause.
	PhaseStartedAt time.Time     `json:"phase_started_at"`
	PhaseElapsed   time.Duration `json:"phase_elapsed"`
}

func Idle() SessionState {
	return SessionState{Phase: PhaseIdle}
}

// Active reports whether a session has been started and not yet finished.
func (s SessionState) Active() bool {
	return s.Phase != PhaseIdle
}

func (s SessionState) Clone() SessionState {
	s.AllowedPackages = slices.Clone(s.AllowedPackages)
	return s
}

// Begin returns the first WORK phase of a new session.
func Begin(sessionID string, task Task, settings Settings, now time.Time) SessionState {
	settings = settings.Clamped()
	s := SessionState{
		CurrentCycle:        1,
		TotalCycles:         settings.Cycles,
		IsRunning:           true,
		SessionID:           sessionID,
		TaskID:              task.ID,
		TaskName:            task.Name,
		WorkDurationMinutes: settings.WorkMinutes,
		ShortBreakMinutes:   settings.ShortBreakMinutes,
		LongBreakMinutes:    settings.LongBreakMinutes,
		LongBreakInterval:   settings.LongBreakInterval,
		AutoLoopEnabled:     settings.AutoLoop,
		StrictMode:          settings.StrictMode,
		AllowedPackages:     settings.AllowedPackages,
		ReviewEnabled:       settings.ReviewEnabled,
		StartedAt:           now,
	}
	s.enter(PhaseWork, settings.WorkMinutes, now)
	return s
}

// Outcome lists what one advance did.
type Outcome struct {
	Entered   []Phase
	Completed bool
}

func (o Outcome) Changed() bool {
	return o.Completed || len(o.Entered) > 0
}

// Advance brings a running session up to now. Elapsed time past a phase boundary carries into the
// next phase, so a single call can cross several boundaries after a long suspension.
func (s *SessionState) Advance(now time.Time) Outcome {
	var out Outcome
	if !s.IsRunning || s.IsPaused || !s.Active() {
		return out
	}
	for {
		total := s.phaseDuration()
		elapsed := s.elapsed(now)
		if elapsed < total {
			s.TimeRemainingSeconds = ceilSeconds(total - elapsed)
			return out
		}
		s.finishPhase(now.Add(-(elapsed - total)), &out)
		if out.Completed {
			return out
		}
	}
}

// Skip ends the current phase at now as if its time had run out.
func (s *SessionState) Skip(now time.Time) Outcome {
	var out Outcome
	if !s.Active() {
		return out
	}
	s.finishPhase(now, &out)
	return out
}

func (s *SessionState) Pause(now time.Time) {
	if !s.IsRunning {
		return
	}
	s.PhaseElapsed = s.elapsed(now)
	s.PhaseStartedAt = now
	s.TimeRemainingSeconds = ceilSeconds(max(0, s.phaseDuration()-s.PhaseElapsed))
	s.IsRunning = false
	s.IsPaused = true
}

func (s *SessionState) Resume(now time.Time) {
	if !s.IsPaused {
		return
	}
	s.PhaseStartedAt = now
	s.IsPaused = false
	s.IsRunning = true
}

// Summary is the hand-off snapshot of a session that has ended.
type Summary struct {
	SessionID       string
	TaskID          string
	TaskName        string
	StartedAt       time.Time
	EndedAt         time.Time
	DurationMinutes int
	Cycles          int
	Interrupted     bool
	ReviewEnabled   bool
}

// Interrupted summarises a session stopped before completion. The WORK phase in progress is not
// credited.
func (s SessionState) Interrupted(now time.Time) Summary {
	return Summary{
		SessionID:       s.SessionID,
		TaskID:          s.TaskID,
		TaskName:        s.TaskName,
		StartedAt:       s.StartedAt,
		EndedAt:         now,
		DurationMinutes: s.TotalWorkMinutes,
		Cycles:          s.CurrentCycle,
		Interrupted:     true,
		ReviewEnabled:   s.ReviewEnabled,
	}
}

func (s SessionState) Completed(now time.Time) Summary {
	return Summary{
		SessionID:       s.SessionID,
		TaskID:          s.TaskID,
		TaskName:        s.TaskName,
		StartedAt:       s.StartedAt,
		EndedAt:         now,
		DurationMinutes: s.TotalWorkMinutes,
		Cycles:          s.TotalCycles,
		Interrupted:     false,
		ReviewEnabled:   s.ReviewEnabled,
	}
}

func (s *SessionState) finishPhase(at time.Time, out *Outcome) {
	switch s.Phase {
	case PhaseWork:
		s.TotalWorkMinutes += s.WorkDurationMinutes
		if s.CurrentCycle >= s.TotalCycles && !s.AutoLoopEnabled {
			s.complete()
			out.Completed = true
			return
		}
		if s.CurrentCycle%s.LongBreakInterval == 0 {
			s.enter(PhaseLongBreak, s.LongBreakMinutes, at)
		} else {
			s.enter(PhaseShortBreak, s.ShortBreakMinutes, at)
		}
	case PhaseShortBreak, PhaseLongBreak:
		s.CurrentCycle++
		if s.CurrentCycle > s.TotalCycles {
			s.CurrentCycle = 1
		}
		s.enter(PhaseWork, s.WorkDurationMinutes, at)
	default:
		return
	}
	out.Entered = append(out.Entered, s.Phase)
}

func (s *SessionState) enter(phase Phase, minutes int, at time.Time) {
	s.Phase = phase
	s.TotalTimeSeconds = minutes * 60
	s.TimeRemainingSeconds = s.TotalTimeSeconds
	s.PhaseStartedAt = at
	s.PhaseElapsed = 0
}

func (s *SessionState) complete() {
	s.Phase = PhaseIdle
	s.IsRunning = false
	s.IsPaused = false
	s.SessionCompleted = true
	s.TimeRemainingSeconds = 0
	s.TotalTimeSeconds = 0
	s.PhaseElapsed = 0
}

func (s SessionState) phaseDuration() time.Duration {
	return time.Duration(s.TotalTimeSeconds) * time.Second
}

func (s SessionState) elapsed(now time.Time) time.Duration {
	running := now.Sub(s.PhaseStartedAt)
	if running < 0 {
		running = 0
	}
	return s.PhaseElapsed + running
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// CompletedEvent is raised once when a session finishes all of its cycles.
type CompletedEvent struct {
	Summary Summary
}
