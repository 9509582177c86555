package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	focusout "studyfocus/internal/modules/focus/adapter/out"
	"studyfocus/internal/modules/focus/domain"
	focusport "studyfocus/internal/modules/focus/port/out"
	"studyfocus/internal/modules/focus/service"
	"studyfocus/internal/platform/clock"
	apperrors "studyfocus/internal/platform/errors"
	"studyfocus/internal/platform/logging"
)

const self = "app.studyfocus"

type recordingRedirector struct {
	mu       sync.Mutex
	blocked  []string
	stopped  atomic.Bool
	violated atomic.Bool
}

func (r *recordingRedirector) BringToFront(_ context.Context, pkg string) error {
	if r.stopped.Load() {
		r.violated.Store(true)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocked = append(r.blocked, pkg)
	return nil
}

func (r *recordingRedirector) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.blocked...)
}

func newEnforcer(observer focusport.ForegroundAppObserver, redirector *recordingRedirector) *service.Enforcer {
	return service.NewEnforcer(self, observer, redirector, logging.Discard())
}

func TestInactiveEnforcerNeverRedirects(t *testing.T) {
	t.Parallel()
	redirector := &recordingRedirector{}
	enforcer := newEnforcer(nil, redirector)
	decision, err := enforcer.Handle(context.Background(), domain.ForegroundEvent{Package: "com.game"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if decision.Action != domain.ActionNone || len(redirector.calls()) != 0 {
		t.Fatalf("inactive enforcer redirected: %+v", decision)
	}
	enforcer.Deactivate()
	enforcer.Deactivate()
	if enforcer.AllowedPackages() != nil {
		t.Fatalf("inactive enforcer has no allowed packages")
	}
}

func TestActiveEnforcerRedirectsDisallowedApps(t *testing.T) {
	t.Parallel()
	redirector := &recordingRedirector{}
	enforcer := newEnforcer(nil, redirector)
	if err := enforcer.Activate(false, []string{"org.wikipedia"}); err != nil {
		t.Fatalf("activate: %v", err)
	}
	ctx := context.Background()
	for _, allowed := range []string{"org.wikipedia", "com.android.launcher3", self} {
		decision, _ := enforcer.Handle(ctx, domain.ForegroundEvent{Package: allowed})
		if decision.Action != domain.ActionNone {
			t.Fatalf("%s should be allowed", allowed)
		}
	}
	decision, _ := enforcer.Handle(ctx, domain.ForegroundEvent{Package: "com.social"})
	if decision.Action != domain.ActionRedirect {
		t.Fatalf("com.social should be redirected")
	}
	if got := redirector.calls(); len(got) != 1 || got[0] != "com.social" {
		t.Fatalf("unexpected redirects %v", got)
	}
	if status := enforcer.Status(); !status.Active || status.Redirects != 1 || status.StrictMode {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestStrictModeRedirectsLaunchers(t *testing.T) {
	t.Parallel()
	redirector := &recordingRedirector{}
	enforcer := newEnforcer(nil, redirector)
	if err := enforcer.Activate(true, nil); err != nil {
		t.Fatalf("activate: %v", err)
	}
	decision, _ := enforcer.Handle(context.Background(), domain.ForegroundEvent{Package: "com.android.launcher3"})
	if decision.Action != domain.ActionRedirect {
		t.Fatalf("launcher must be redirected in strict mode")
	}
	for _, pkg := range enforcer.AllowedPackages() {
		if domain.IsLauncher(pkg) {
			t.Fatalf("strict allowed list contains launcher %s", pkg)
		}
	}
}

func TestNoRedirectAfterDeactivate(t *testing.T) {
	t.Parallel()
	redirector := &recordingRedirector{}
	enforcer := newEnforcer(nil, redirector)
	if err := enforcer.Activate(true, nil); err != nil {
		t.Fatalf("activate: %v", err)
	}
	ctx := context.Background()
	var wg sync.WaitGroup
	done := make(chan struct{})
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					_, _ = enforcer.Handle(ctx, domain.ForegroundEvent{Package: "com.blocked"})
				}
			}
		}()
	}
	time.Sleep(5 * time.Millisecond)
	enforcer.Deactivate()
	redirector.stopped.Store(true)
	time.Sleep(5 * time.Millisecond)
	close(done)
	wg.Wait()
	if redirector.violated.Load() {
		t.Fatalf("redirect issued after deactivate returned")
	}
	decision, _ := enforcer.Handle(ctx, domain.ForegroundEvent{Package: "com.blocked"})
	if decision.Action != domain.ActionNone {
		t.Fatalf("deactivated enforcer must not redirect")
	}
}

func TestRunConsumesObserverEvents(t *testing.T) {
	t.Parallel()
	observer := focusout.NewChannelObserver(clock.SystemClock{})
	redirector := &recordingRedirector{}
	enforcer := newEnforcer(observer, redirector)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan error, 1)
	go func() { runDone <- enforcer.Run(ctx) }()

	if err := enforcer.Activate(false, nil); err != nil {
		t.Fatalf("activate: %v", err)
	}
	mustEmit(t, observer, "com.video")
	// the loop is sequential: once the next event is taken, the previous one was handled
	mustEmit(t, observer, self)
	if got := redirector.calls(); len(got) != 1 || got[0] != "com.video" {
		t.Fatalf("unexpected redirects %v", got)
	}

	enforcer.Deactivate()
	mustEmit(t, observer, "com.video")
	mustEmit(t, observer, self)
	if got := redirector.calls(); len(got) != 1 {
		t.Fatalf("redirect after deactivate: %v", got)
	}

	cancel()
	if err := <-runDone; err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestUnavailableObserverDegradesEnforcer(t *testing.T) {
	t.Parallel()
	redirector := &recordingRedirector{}
	enforcer := newEnforcer(focusout.UnavailableObserver{}, redirector)
	if err := enforcer.Run(context.Background()); err != nil {
		t.Fatalf("run should not fail: %v", err)
	}
	if err := enforcer.Activate(true, nil); !errors.Is(err, apperrors.ErrObserverUnavailable) {
		t.Fatalf("expected observer unavailable, got %v", err)
	}
	if status := enforcer.Status(); status.Active || !status.Degraded {
		t.Fatalf("unexpected status %+v", status)
	}
	decision, _ := enforcer.Handle(context.Background(), domain.ForegroundEvent{Package: "com.game"})
	if decision.Action != domain.ActionNone {
		t.Fatalf("degraded enforcer must not redirect")
	}
}

func TestLineObserverFeed(t *testing.T) {
	t.Parallel()
	feed := strings.NewReader("# comment\ncom.video\n\norg.wikipedia\n")
	observer := focusout.NewLineObserver(feed, clock.SystemClock{}, logging.Discard())
	redirector := &recordingRedirector{}
	enforcer := newEnforcer(observer, redirector)
	if err := enforcer.Activate(false, []string{"org.wikipedia"}); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := enforcer.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := redirector.calls(); len(got) != 1 || got[0] != "com.video" {
		t.Fatalf("unexpected redirects %v", got)
	}
}

func mustEmit(t *testing.T, observer *focusout.ChannelObserver, pkg string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := observer.Emit(ctx, pkg); err != nil {
		t.Fatalf("emit %s: %v", pkg, err)
	}
}
