package domain

import (
	"fmt"
	"time"
)

type Step string

const (
	StepEnqueue           Step = "enqueue"
	StepFinishSession     Step = "finish_session"
	StepEntitlement       Step = "entitlement"
	StepInsertReviews     Step = "insert_reviews"
	StepUpdateLastStudied Step = "update_last_studied"
	StepUpdateDailyStats  Step = "update_daily_stats"
)

// FinishedSession is the snapshot handed over by the timer when a session ends.
type FinishedSession struct {
	SessionID       string    `json:"session_id"`
	TaskID          string    `json:"task_id"`
	TaskName        string    `json:"task_name"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Cycles          int       `json:"cycles"`
	Interrupted     bool      `json:"interrupted"`
	ReviewEnabled   bool      `json:"review_enabled"`
}

// SchedulesReviews reports whether the session qualifies for follow-up reviews.
func (f FinishedSession) SchedulesReviews() bool {
	return !f.Interrupted && f.ReviewEnabled
}

// SubjectLabel is the name daily statistics are grouped under.
func (f FinishedSession) SubjectLabel() string {
	if f.TaskName != "" {
		return f.TaskName
	}
	return f.TaskID
}

type SessionRecord struct {
	ID              string
	TaskID          string
	TaskName        string
	StartedAt       time.Time
	EndedAt         time.Time
	DurationMinutes int
	CyclesCompleted int
	Interrupted     bool
}

func (f FinishedSession) Record() SessionRecord {
	return SessionRecord{
		ID:              f.SessionID,
		TaskID:          f.TaskID,
		TaskName:        f.TaskName,
		StartedAt:       f.StartedAt,
		EndedAt:         f.EndedAt,
		DurationMinutes: f.DurationMinutes,
		CyclesCompleted: f.Cycles,
		Interrupted:     f.Interrupted,
	}
}

// StepError names the finalize step that failed. Steps after it were not attempted.
type StepError struct {
	Step      Step
	SessionID string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("finalize session %s: %s: %v", e.SessionID, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Result struct {
	SessionID        string
	ReviewsScheduled int
}

// Failure is a ledger entry for a session whose finalization did not complete.
type Failure struct {
	Session  FinishedSession `json:"session"`
	Step     Step            `json:"step"`
	Error    string          `json:"error"`
	FailedAt time.Time       `json:"failed_at"`
	Attempts int             `json:"attempts"`
}

type SubjectStat struct {
	Subject  string
	Minutes  int
	Sessions int
}

type DailyStats struct {
	Date          time.Time
	Subjects      []SubjectStat
	TotalMinutes  int
	TotalSessions int
}

func NewDailyStats(date time.Time, subjects []SubjectStat) DailyStats {
	stats := DailyStats{Date: date, Subjects: subjects}
	for _, s := range subjects {
		stats.TotalMinutes += s.Minutes
		stats.TotalSessions += s.Sessions
	}
	return stats
}
