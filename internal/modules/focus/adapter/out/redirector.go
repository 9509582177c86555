package out

import (
	"context"
	"log/slog"
)

// LogRedirector records redirects instead of driving a window manager.
type LogRedirector struct {
	selfPackage string
	logger      *slog.Logger
}

func NewLogRedirector(selfPackage string, logger *slog.Logger) *LogRedirector {
	return &LogRedirector{selfPackage: selfPackage, logger: logger.With("component", "redirector")}
}

func (r *LogRedirector) BringToFront(_ context.Context, blockedPackage string) error {
	r.logger.Info("blocked app, returning to study app", "blocked", blockedPackage, "target", r.selfPackage)
	return nil
}
