package dto

import "time"

type ReviewOutput struct {
	ID             string
	StudySessionID string
	TaskID         string
	ScheduledDate  time.Time
	ReviewNumber   int
	OffsetDays     int
	Label          string
	IsCompleted    bool
	CompletedAt    *time.Time
}

type DueInput struct {
	// Date is inclusive; open reviews scheduled on or before it are due.
	Date time.Time
}
