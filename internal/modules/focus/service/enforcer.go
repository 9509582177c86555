package service

import (
	"context"
	"log/slog"
	"sync"

	"studyfocus/internal/modules/focus/domain"
	focusout "studyfocus/internal/modules/focus/port/out"
	apperrors "studyfocus/internal/platform/errors"
	"studyfocus/internal/platform/metrics"
)

// Enforcer holds the active focus policy and answers foreground events against it.
// Deactivate and event handling share mu, so once Deactivate returns no later event can redirect.
type Enforcer struct {
	selfPackage string
	observer    focusout.ForegroundAppObserver
	redirector  focusout.Redirector
	logger      *slog.Logger

	mu        sync.Mutex
	active    bool
	degraded  bool
	policy    domain.Policy
	redirects int
}

func NewEnforcer(selfPackage string, observer focusout.ForegroundAppObserver, redirector focusout.Redirector, logger *slog.Logger) *Enforcer {
	return &Enforcer{
		selfPackage: selfPackage,
		observer:    observer,
		redirector:  redirector,
		logger:      logger.With("component", "focus"),
	}
}

// Activate installs the policy for the running session. A degraded enforcer stays inactive and
// reports ErrObserverUnavailable; callers treat that as a warning.
func (e *Enforcer) Activate(strict bool, additional []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.degraded {
		return apperrors.ErrObserverUnavailable
	}
	e.policy = domain.NewPolicy(strict, e.selfPackage, additional)
	e.active = true
	e.logger.Debug("focus activated", "strict", strict, "allowed", len(e.policy.Packages()))
	return nil
}

func (e *Enforcer) Deactivate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		e.logger.Debug("focus deactivated")
	}
	e.active = false
	e.policy = domain.Policy{}
}

func (e *Enforcer) AllowedPackages() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return nil
	}
	return e.policy.Packages()
}

func (e *Enforcer) Preview(strict bool, additional []string) []string {
	return domain.NewPolicy(strict, e.selfPackage, additional).Packages()
}

type Status struct {
	Active     bool
	Degraded   bool
	StrictMode bool
	Allowed    []string
	Redirects  int
}

func (e *Enforcer) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	status := Status{Active: e.active, Degraded: e.degraded, Redirects: e.redirects}
	if e.active {
		status.StrictMode = e.policy.StrictMode
		status.Allowed = e.policy.Packages()
	}
	return status
}

// Handle evaluates one foreground change. The redirect is issued while mu is held.
func (e *Enforcer) Handle(ctx context.Context, event domain.ForegroundEvent) (domain.Decision, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	decision := domain.Decision{Package: event.Package, Action: domain.ActionNone}
	if !e.active || event.Package == "" || e.policy.Allows(event.Package) {
		return decision, nil
	}
	decision.Action = domain.ActionRedirect
	e.redirects++
	metrics.FocusRedirects.Inc()
	if e.redirector == nil {
		return decision, nil
	}
	if err := e.redirector.BringToFront(ctx, event.Package); err != nil {
		e.logger.Warn("redirect failed", "package", event.Package, "error", err)
		return decision, err
	}
	return decision, nil
}

// Run consumes observer events until ctx is cancelled or the feed closes. When the observer is
// unavailable the enforcer degrades to permanently inactive and Run returns nil.
func (e *Enforcer) Run(ctx context.Context) error {
	if e.observer == nil {
		e.degrade(apperrors.ErrObserverUnavailable)
		return nil
	}
	events, err := e.observer.Events(ctx)
	if err != nil {
		e.degrade(err)
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				e.logger.Debug("foreground feed closed")
				return nil
			}
			_, _ = e.Handle(ctx, event)
		}
	}
}

func (e *Enforcer) degrade(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.degraded = true
	e.active = false
	e.policy = domain.Policy{}
	e.logger.Warn("focus enforcement unavailable, continuing without it", "error", err)
}
