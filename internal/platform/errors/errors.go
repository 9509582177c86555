package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyRunning      = errors.New("session already running")
	ErrNotRunning          = errors.New("no running session")
	ErrNoActiveSession     = errors.New("no active session snapshot")
	ErrObserverUnavailable = errors.New("foreground observer unavailable")
	ErrEngineStopped       = errors.New("timer engine stopped")
	ErrQueueFull           = errors.New("finalize queue is full")
)
