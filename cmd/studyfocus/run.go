package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studyfocus/internal/bootstrap"
	focusoutadapter "studyfocus/internal/modules/focus/adapter/out"
	timerdto "studyfocus/internal/modules/timer/dto"
	"studyfocus/internal/platform/clock"
	apperrors "studyfocus/internal/platform/errors"
	"studyfocus/internal/ui/app"
)

const shutdownTimeout = 10 * time.Second

type sessionFlags struct {
	taskID     string
	taskName   string
	work       int
	short      int
	long       int
	cycles     int
	longEvery  int
	autoLoop   bool
	strict     bool
	noReview   bool
	allow      []string
	foreground string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.taskID, "task-id", "", "task id (default derived from --task-name)")
	cmd.Flags().StringVar(&f.taskName, "task-name", "", "task name (default task id)")
	cmd.Flags().IntVar(&f.work, "work", 0, "work minutes (1-180)")
	cmd.Flags().IntVar(&f.short, "short", 0, "short break minutes (1-60)")
	cmd.Flags().IntVar(&f.long, "long", 0, "long break minutes (1-120)")
	cmd.Flags().IntVar(&f.cycles, "cycles", 0, "work cycles (1-10)")
	cmd.Flags().IntVar(&f.longEvery, "long-every", 0, "long break every N cycles (1-10)")
	cmd.Flags().BoolVar(&f.autoLoop, "auto-loop", false, "restart at cycle 1 instead of finishing")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "strict focus mode (no launchers)")
	cmd.Flags().BoolVar(&f.noReview, "no-review", false, "do not schedule reviews for this session")
	cmd.Flags().StringSliceVar(&f.allow, "allow", nil, "additional allowed app packages")
	cmd.Flags().StringVar(&f.foreground, "foreground-feed", "", "file (or - for stdin) with foreground app package names, one per line")
}

func (f *sessionFlags) input(cmd *cobra.Command) (timerdto.StartInput, error) {
	if strings.TrimSpace(f.taskID) == "" && strings.TrimSpace(f.taskName) == "" {
		return timerdto.StartInput{}, fmt.Errorf("--task-id or --task-name is required")
	}
	input := timerdto.StartInput{
		TaskID:            f.taskID,
		TaskName:          f.taskName,
		WorkMinutes:       f.work,
		ShortBreakMinutes: f.short,
		LongBreakMinutes:  f.long,
		Cycles:            f.cycles,
		LongBreakInterval: f.longEvery,
		AllowedPackages:   f.allow,
	}
	if cmd.Flags().Changed("auto-loop") {
		input.AutoLoop = &f.autoLoop
	}
	if cmd.Flags().Changed("strict") {
		input.StrictMode = &f.strict
	}
	if cmd.Flags().Changed("no-review") {
		enabled := !f.noReview
		input.ReviewEnabled = &enabled
	}
	return input, nil
}

// options opens the foreground feed, if any. The returned closer is never nil.
func (f *sessionFlags) options(stdin io.Reader) (bootstrap.Options, func(), error) {
	opts := bootstrap.Options{}
	switch f.foreground {
	case "":
		return opts, func() {}, nil
	case "-":
		opts.Observer = focusoutadapter.NewLineObserver(stdin, clock.SystemClock{}, nil)
		return opts, func() {}, nil
	}
	file, err := os.Open(f.foreground)
	if err != nil {
		return opts, func() {}, fmt.Errorf("open foreground feed: %w", err)
	}
	opts.Observer = focusoutadapter.NewLineObserver(file, clock.SystemClock{}, nil)
	return opts, func() { _ = file.Close() }, nil
}

// session owns a running app: background workers on their own context, so the active
// session can be stopped before they shut down.
type session struct {
	app    *bootstrap.App
	cancel context.CancelFunc
	done   chan error
}

func startSession(cmd *cobra.Command, flags *globalFlags, sf *sessionFlags, logOutput io.Writer) (*session, error) {
	opts, closeFeed, err := sf.options(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	opts.LogOutput = logOutput
	a, err := loadApp(cmd.Context(), flags, opts)
	if err != nil {
		closeFeed()
		return nil, err
	}
	runCtx, cancel := context.WithCancel(context.Background())
	s := &session{app: a, cancel: cancel, done: make(chan error, 1)}
	go func() {
		err := a.Run(runCtx)
		closeFeed()
		s.done <- err
	}()
	return s, nil
}

// shutdown stops an active session, lets queued finalizations drain and closes the database.
func (s *session) shutdown(out io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	summary, err := s.app.TimerCLI.Stop(ctx)
	switch {
	case err == nil:
		_, _ = fmt.Fprintf(out, "session %s stopped: %d min, cycle %d\n", summary.SessionID, summary.DurationMinutes, summary.Cycles)
	case !errors.Is(err, apperrors.ErrNotRunning):
		s.app.Logger.Error("stop session", "error", err)
	}
	if err := s.app.Flush(ctx); err != nil {
		s.app.Logger.Warn("finalize queue not drained", "error", err)
	}
	s.cancel()
	runErr := <-s.done
	if err := s.app.Close(); err != nil {
		return err
	}
	return runErr
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	sf := &sessionFlags{}
	cmd := &cobra.Command{
		Use:   "run --task-id <id>",
		Short: "Run a study session in the terminal, printing phase changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := sf.input(cmd)
			if err != nil {
				return err
			}
			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := startSession(cmd, flags, sf, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			state, err := s.app.TimerCLI.Start(sigCtx, input)
			if err != nil {
				_ = s.shutdown(out)
				return err
			}
			_, _ = fmt.Fprintf(out, "session %s: %s, %d cycles of %d min\n", state.SessionID, state.TaskName, state.TotalCycles, state.WorkDurationMinutes)
			printPhase(out, state)

			updates, unsubscribe := s.app.TimerCLI.Watch(sigCtx)
			defer unsubscribe()
			last := state
		watch:
			for {
				select {
				case <-sigCtx.Done():
					break watch
				case next, ok := <-updates:
					if !ok {
						break watch
					}
					if !next.Active() {
						if event, ok := s.app.TimerCLI.ConsumeCompleted(sigCtx); ok {
							_, _ = fmt.Fprintf(out, "session complete: %d min over %d cycles\n", event.Summary.DurationMinutes, event.Summary.Cycles)
						}
						break watch
					}
					if next.Phase != last.Phase || next.CurrentCycle != last.CurrentCycle {
						printPhase(out, next)
					}
					last = next
				}
			}
			return s.shutdown(out)
		},
	}
	sf.register(cmd)
	return cmd
}

func printPhase(out io.Writer, state timerdto.StateOutput) {
	_, _ = fmt.Fprintf(out, "%s  %-11s cycle %d/%d  %s\n", time.Now().Format("15:04:05"), state.Phase, state.CurrentCycle, state.TotalCycles, app.Clock(state.TimeRemainingSeconds))
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	sf := &sessionFlags{}
	cmd := &cobra.Command{
		Use:   "tui --task-id <id>",
		Short: "Run a study session in the terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := sf.input(cmd)
			if err != nil {
				return err
			}
			if sf.foreground == "-" {
				return fmt.Errorf("--foreground-feed - is not supported with the terminal UI")
			}
			// the terminal belongs to the UI; logs go to a file next to the database
			if err := os.MkdirAll(flags.dataDir, 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
			logFile, err := os.OpenFile(filepath.Join(flags.dataDir, "studyfocus.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()
			s, err := startSession(cmd, flags, sf, logFile)
			if err != nil {
				return err
			}
			tuiErr := bootstrap.RunTUI(cmd.Context(), s.app, input)
			if err := s.shutdown(cmd.OutOrStdout()); err != nil {
				return err
			}
			return tuiErr
		},
	}
	sf.register(cmd)
	return cmd
}
