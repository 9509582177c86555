package dto

import "time"

type FinishInput struct {
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

type FinishOutput struct {
	SessionID        string
	ReviewsScheduled int
}

type FailureOutput struct {
	SessionID string
	TaskID    string
	TaskName  string
	Step      string
	Error     string
	FailedAt  time.Time
	Attempts  int
}

type SubjectStatOutput struct {
	Subject  string
	Minutes  int
	Sessions int
}

type DailyStatsOutput struct {
	Date          time.Time
	Subjects      []SubjectStatOutput
	TotalMinutes  int
	TotalSessions int
}
