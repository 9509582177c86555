package out

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"studyfocus/internal/modules/focus/domain"
	"studyfocus/internal/platform/clock"
	apperrors "studyfocus/internal/platform/errors"
)

// LineObserver reads foreground package names from r, one per line. Blank lines and lines
// starting with # are skipped.
type LineObserver struct {
	r      io.Reader
	clock  clock.Clock
	logger *slog.Logger
}

func NewLineObserver(r io.Reader, clock clock.Clock, logger *slog.Logger) *LineObserver {
	return &LineObserver{r: r, clock: clock, logger: logger}
}

func (o *LineObserver) Events(ctx context.Context) (<-chan domain.ForegroundEvent, error) {
	if o.r == nil {
		return nil, apperrors.ErrObserverUnavailable
	}
	events := make(chan domain.ForegroundEvent)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(o.r)
		for scanner.Scan() {
			pkg := strings.TrimSpace(scanner.Text())
			if pkg == "" || strings.HasPrefix(pkg, "#") {
				continue
			}
			select {
			case events <- domain.ForegroundEvent{Package: pkg, At: o.clock.Now()}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && o.logger != nil {
			o.logger.Warn("foreground feed read failed", "error", err)
		}
	}()
	return events, nil
}

// ChannelObserver is an in-process feed. Emit blocks until the enforcer takes the event or ctx ends.
type ChannelObserver struct {
	clock  clock.Clock
	events chan domain.ForegroundEvent

	once   sync.Once
	closed chan struct{}
}

func NewChannelObserver(clock clock.Clock) *ChannelObserver {
	return &ChannelObserver{
		clock:  clock,
		events: make(chan domain.ForegroundEvent),
		closed: make(chan struct{}),
	}
}

func (o *ChannelObserver) Events(_ context.Context) (<-chan domain.ForegroundEvent, error) {
	return o.events, nil
}

func (o *ChannelObserver) Emit(ctx context.Context, pkg string) error {
	select {
	case o.events <- domain.ForegroundEvent{Package: pkg, At: o.clock.Now()}:
		return nil
	case <-o.closed:
		return apperrors.ErrObserverUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *ChannelObserver) Close() {
	o.once.Do(func() { close(o.closed) })
}

// UnavailableObserver stands in when the platform gives no foreground access.
type UnavailableObserver struct{}

func (UnavailableObserver) Events(context.Context) (<-chan domain.ForegroundEvent, error) {
	return nil, apperrors.ErrObserverUnavailable
}
