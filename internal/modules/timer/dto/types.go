package dto

import "studyfocus/internal/modules/timer/domain"

// StartInput carries per-session overrides; zero values fall back to the configured defaults.
type StartInput struct {
	TaskID            string
	TaskName          string
	WorkMinutes       int
	ShortBreakMinutes int
	LongBreakMinutes  int
	Cycles            int
	LongBreakInterval int
	AutoLoop          *bool
	StrictMode        *bool
	AllowedPackages   []string
	ReviewEnabled     *bool
}

type StateOutput = domain.SessionState

type SummaryOutput = domain.Summary

type CompletedOutput = domain.CompletedEvent
