package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	finalizeinadapter "studyfocus/internal/modules/finalize/adapter/in"
	finalizeoutadapter "studyfocus/internal/modules/finalize/adapter/out"
	finalizeservice "studyfocus/internal/modules/finalize/service"
	finalizeusecase "studyfocus/internal/modules/finalize/usecase"
	focusinadapter "studyfocus/internal/modules/focus/adapter/in"
	focusoutadapter "studyfocus/internal/modules/focus/adapter/out"
	focusout "studyfocus/internal/modules/focus/port/out"
	focusservice "studyfocus/internal/modules/focus/service"
	focususecase "studyfocus/internal/modules/focus/usecase"
	reviewinadapter "studyfocus/internal/modules/review/adapter/in"
	reviewoutadapter "studyfocus/internal/modules/review/adapter/out"
	reviewservice "studyfocus/internal/modules/review/service"
	reviewusecase "studyfocus/internal/modules/review/usecase"
	timerinadapter "studyfocus/internal/modules/timer/adapter/in"
	timeroutadapter "studyfocus/internal/modules/timer/adapter/out"
	timerdomain "studyfocus/internal/modules/timer/domain"
	timerdto "studyfocus/internal/modules/timer/dto"
	timerservice "studyfocus/internal/modules/timer/service"
	timerusecase "studyfocus/internal/modules/timer/usecase"
	"studyfocus/internal/platform/clock"
	"studyfocus/internal/platform/config"
	"studyfocus/internal/platform/db"
	"studyfocus/internal/platform/id"
	"studyfocus/internal/platform/logging"
	"studyfocus/internal/platform/metrics"
	uiapp "studyfocus/internal/ui/app"
)

type Options struct {
	// Observer feeds foreground app changes to the focus enforcer. Nil means the platform offers
	// none and focus enforcement degrades.
	Observer  focusout.ForegroundAppObserver
	LogOutput io.Writer
	Location  *time.Location
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	TimerCLI    timerinadapter.CLIHandler
	FocusCLI    focusinadapter.CLIHandler
	ReviewCLI   reviewinadapter.CLIHandler
	FinalizeCLI finalizeinadapter.CLIHandler

	conn      *sqlx.DB
	engine    *timerservice.Engine
	enforcer  *focusservice.Enforcer
	finalizer *finalizeusecase.Interactor
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	logger := logging.New(cfg.Log, opts.LogOutput)
	clk := clock.SystemClock{}

	conn, err := db.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn, cfg.Storage.Driver, logger); err != nil {
		_ = conn.Close()
		return nil, err
	}

	reviewStore := reviewoutadapter.NewSQLReviewStore(conn)
	reviewUC := reviewusecase.NewInteractor(reviewservice.NewReviewService(clk, reviewStore))

	store := finalizeoutadapter.NewSQLStore(conn)
	finalizer := finalizeservice.NewFinalizer(
		store,
		reviewStore,
		store,
		store,
		finalizeoutadapter.ConfigEntitlement{Premium: cfg.Review.Premium},
		finalizeservice.ReviewPlan{Offsets: cfg.Review.Offsets, FreeOffsetCount: cfg.Review.FreeOffsetCount},
		clk,
		opts.Location,
		logger,
	)
	finalizeUC := finalizeusecase.NewInteractor(finalizer, finalizeoutadapter.NewFileFailureLedger(cfg.DataDir), clk, cfg.Finalize.QueueSize, logger)

	observer := opts.Observer
	if observer == nil {
		observer = focusoutadapter.UnavailableObserver{}
	}
	enforcer := focusservice.NewEnforcer(cfg.Focus.SelfPackage, observer, focusoutadapter.NewLogRedirector(cfg.Focus.SelfPackage, logger), logger)
	focusUC := focususecase.NewInteractor(enforcer)

	engine := timerservice.NewEngine(
		clk,
		id.UUID{},
		timeroutadapter.NewFocusGate(focusUC, cfg.Focus.Enabled),
		timeroutadapter.NewFinalizeSink(finalizeUC),
		timeroutadapter.NewFileActiveSessionStore(cfg.DataDir),
		cfg.Timer.TickInterval,
		logger,
	)
	timerUC := timerusecase.NewInteractor(engine, TimerDefaults(cfg))

	return &App{
		Config:      cfg,
		Logger:      logger,
		TimerCLI:    timerinadapter.NewCLIHandler(timerUC),
		FocusCLI:    focusinadapter.NewCLIHandler(focusUC),
		ReviewCLI:   reviewinadapter.NewCLIHandler(reviewUC),
		FinalizeCLI: finalizeinadapter.NewCLIHandler(finalizeUC),
		conn:        conn,
		engine:      engine,
		enforcer:    enforcer,
		finalizer:   finalizeUC,
	}, nil
}

// TimerDefaults maps the configured defaults onto session settings.
func TimerDefaults(cfg config.Config) timerdomain.Settings {
	return timerdomain.Settings{
		WorkMinutes:       cfg.Timer.WorkMinutes,
		ShortBreakMinutes: cfg.Timer.ShortBreakMinutes,
		LongBreakMinutes:  cfg.Timer.LongBreakMinutes,
		Cycles:            cfg.Timer.Cycles,
		LongBreakInterval: cfg.Timer.LongBreakInterval,
		AutoLoop:          cfg.Timer.AutoLoop,
		StrictMode:        cfg.Focus.StrictMode,
		AllowedPackages:   append([]string(nil), cfg.Focus.Allowed...),
		ReviewEnabled:     cfg.Review.Enabled,
	}
}

// Run starts the finalize worker, the focus enforcer, the engine and the optional metrics
// server, and blocks until ctx is cancelled. A session left over from a crashed process is
// handed to finalization before the engine accepts commands.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.finalizer.Run(gctx) })

	if summary, recovered, err := a.TimerCLI.Recover(gctx); err != nil {
		a.Logger.Error("recover unfinished session", "error", err)
	} else if recovered {
		a.Logger.Info("unfinished session recorded as interrupted", "session_id", summary.SessionID)
	}

	g.Go(func() error { return a.enforcer.Run(gctx) })
	g.Go(func() error { return a.engine.Run(gctx) })
	if a.Config.Metrics.Addr != "" {
		g.Go(func() error { return metrics.Serve(gctx, a.Config.Metrics.Addr, a.Logger) })
	}
	return g.Wait()
}

// Flush waits for queued finalizations. Used by one-shot commands before exit.
func (a *App) Flush(ctx context.Context) error {
	return a.finalizer.Flush(ctx)
}

func (a *App) Close() error {
	if err := a.conn.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// RunTUI shows the timer view for a new session. The app must already be running.
func RunTUI(ctx context.Context, app *App, input timerdto.StartInput) error {
	model := uiapp.NewModel(app.TimerCLI, app.FocusCLI, input)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
