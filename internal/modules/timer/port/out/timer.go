package out

import (
	"context"

	"studyfocus/internal/modules/timer/domain"
)

// FocusGate switches focus enforcement for the running session.
type FocusGate interface {
	Activate(ctx context.Context, strictMode bool, additional []string) error
	Deactivate(ctx context.Context)
}

// FinishSink receives ended sessions. Submit must not block on persistence.
type FinishSink interface {
	Submit(ctx context.Context, summary domain.Summary) error
}

type ActiveSessionStore interface {
	SaveActive(ctx context.Context, state domain.SessionState) error
	LoadActive(ctx context.Context) (domain.SessionState, error)
	ClearActive(ctx context.Context) error
}
