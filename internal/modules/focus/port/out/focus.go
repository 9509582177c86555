package out

import (
	"context"

	"studyfocus/internal/modules/focus/domain"
)

// ForegroundAppObserver reports foreground application changes. Events returns
// ErrObserverUnavailable when the platform denies observation.
type ForegroundAppObserver interface {
	Events(ctx context.Context) (<-chan domain.ForegroundEvent, error)
}

type Redirector interface {
	BringToFront(ctx context.Context, blockedPackage string) error
}
