package out

import (
	"context"

	focusdto "studyfocus/internal/modules/focus/dto"
	focusin "studyfocus/internal/modules/focus/port/in"
)

// FocusGate lets the timer drive the focus module without knowing its internals.
type FocusGate struct {
	focus   focusin.Usecase
	enabled bool
}

func NewFocusGate(focus focusin.Usecase, enabled bool) FocusGate {
	return FocusGate{focus: focus, enabled: enabled}
}

func (g FocusGate) Activate(ctx context.Context, strictMode bool, additional []string) error {
	if !g.enabled || g.focus == nil {
		return nil
	}
	return g.focus.Activate(ctx, focusdto.ActivateInput{StrictMode: strictMode, Additional: additional})
}

func (g FocusGate) Deactivate(ctx context.Context) {
	if g.focus == nil {
		return
	}
	g.focus.Deactivate(ctx)
}
