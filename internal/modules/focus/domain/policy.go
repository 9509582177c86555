package domain

import (
	"slices"
	"strings"
	"time"
)

// SystemPackages stay reachable in every mode: system chrome and emergency calling.
var SystemPackages = []string{
	"android",
	"com.android.systemui",
	"com.android.phone",
	"com.android.emergency",
	"com.android.dialer",
	"com.google.android.dialer",
	"com.samsung.android.dialer",
}

// LauncherPackages are the home screens allowed only outside strict mode.
var LauncherPackages = []string{
	"com.android.launcher",
	"com.android.launcher3",
	"com.google.android.apps.nexuslauncher",
	"com.sec.android.app.launcher",
	"com.miui.home",
	"com.huawei.android.launcher",
	"com.oppo.launcher",
	"net.oneplus.launcher",
	"com.teslacoilsw.launcher",
}

type Policy struct {
	StrictMode bool
	allowed    map[string]struct{}
}

// NewPolicy computes base(strict) ∪ additional. selfPackage is always allowed so the study app can
// be brought back to the front.
func NewPolicy(strict bool, selfPackage string, additional []string) Policy {
	allowed := map[string]struct{}{}
	add := func(pkg string) {
		pkg = strings.TrimSpace(pkg)
		if pkg != "" {
			allowed[pkg] = struct{}{}
		}
	}
	for _, pkg := range SystemPackages {
		add(pkg)
	}
	add(selfPackage)
	if !strict {
		for _, pkg := range LauncherPackages {
			add(pkg)
		}
	}
	for _, pkg := range additional {
		add(pkg)
	}
	return Policy{StrictMode: strict, allowed: allowed}
}

func (p Policy) Allows(pkg string) bool {
	_, ok := p.allowed[pkg]
	return ok
}

// Packages returns the effective allow-list, sorted.
func (p Policy) Packages() []string {
	out := make([]string, 0, len(p.allowed))
	for pkg := range p.allowed {
		out = append(out, pkg)
	}
	slices.Sort(out)
	return out
}

func IsLauncher(pkg string) bool {
	return slices.Contains(LauncherPackages, pkg)
}

type Action string

const (
	ActionNone     Action = "none"
	ActionRedirect Action = "redirect"
)

type ForegroundEvent struct {
	Package string
	At      time.Time
}

type Decision struct {
	Package string
	Action  Action
}
