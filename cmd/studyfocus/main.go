package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"studyfocus/internal/bootstrap"
	reviewdomain "studyfocus/internal/modules/review/domain"
	"studyfocus/internal/platform/config"
	"studyfocus/internal/platform/db"
	"studyfocus/internal/platform/logging"
)

type globalFlags struct {
	dataDir    string
	configFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "studyfocus",
		Short:         "Pomodoro study timer with focus mode and spaced reviews",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", defaultDataDir(), "directory for the database, snapshots and config")
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default <data-dir>/"+config.FileName+")")

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newReviewsCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newFinalizeCmd(flags))
	root.AddCommand(newFocusCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	root.AddCommand(newMigrateCmd(flags))
	return root
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "studyfocus")
	}
	return ".studyfocus"
}

func loadConfig(flags *globalFlags) (config.Config, error) {
	return config.Load(flags.dataDir, flags.configFile)
}

func loadApp(ctx context.Context, flags *globalFlags, opts bootstrap.Options) (*bootstrap.App, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, opts)
}

// parseDate reads a YYYY-MM-DD flag in local time; empty means today.
func parseDate(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	date, err := time.ParseInLocation(reviewdomain.DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, want YYYY-MM-DD", value)
	}
	return date, nil
}

func newReviewsCmd(flags *globalFlags) *cobra.Command {
	reviews := &cobra.Command{Use: "reviews", Short: "Spaced-repetition reviews"}

	var date string
	due := &cobra.Command{
		Use:   "due",
		Short: "List open reviews scheduled on or before a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDate(date)
			if err != nil {
				return err
			}
			app, err := loadApp(cmd.Context(), flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			items, err := app.ReviewCLI.Due(cmd.Context(), day)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no reviews due")
				return nil
			}
			for _, r := range items {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t#%d (%s)\tsession=%s\n", r.ID, r.ScheduledDate.Format(reviewdomain.DateLayout), r.TaskID, r.ReviewNumber, r.Label, r.StudySessionID)
			}
			return nil
		},
	}
	due.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")

	var sessionID string
	list := &cobra.Command{
		Use:   "list --session <id>",
		Short: "List the reviews scheduled for a study session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(sessionID) == "" {
				return fmt.Errorf("--session is required")
			}
			app, err := loadApp(cmd.Context(), flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			items, err := app.ReviewCLI.List(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no reviews for session")
				return nil
			}
			for _, r := range items {
				state := "open"
				if r.IsCompleted {
					state = "done"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t#%d (%s)\t%s\n", r.ID, r.ScheduledDate.Format(reviewdomain.DateLayout), r.ReviewNumber, r.Label, state)
			}
			return nil
		},
	}
	list.Flags().StringVar(&sessionID, "session", "", "study session id")

	complete := &cobra.Command{
		Use:   "complete <review-id>",
		Short: "Mark a review as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			r, err := app.ReviewCLI.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "review %s completed at %s\n", r.ID, r.CompletedAt.Format(time.RFC3339))
			return nil
		},
	}

	reopen := &cobra.Command{
		Use:   "reopen <review-id>",
		Short: "Mark a review as not done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			r, err := app.ReviewCLI.Reopen(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "review %s reopened (due %s)\n", r.ID, r.ScheduledDate.Format(reviewdomain.DateLayout))
			return nil
		},
	}

	reviews.AddCommand(due, list, complete, reopen)
	return reviews
}

func newStatsCmd(flags *globalFlags) *cobra.Command {
	var date string
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show studied minutes per subject for a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDate(date)
			if err != nil {
				return err
			}
			app, err := loadApp(cmd.Context(), flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.FinalizeCLI.Stats(cmd.Context(), day)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d min in %d sessions\n", out.Date.Format(reviewdomain.DateLayout), out.TotalMinutes, out.TotalSessions)
			for _, s := range out.Subjects {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\t%d min\t%d sessions\n", s.Subject, s.Minutes, s.Sessions)
			}
			return nil
		},
	}
	stats.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	return stats
}

func newFinalizeCmd(flags *globalFlags) *cobra.Command {
	finalize := &cobra.Command{Use: "finalize", Short: "Inspect and retry failed session finalization"}

	finalize.AddCommand(&cobra.Command{
		Use:   "failures",
		Short: "List sessions whose finalization failed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			failures, err := app.FinalizeCLI.Failures(cmd.Context())
			if err != nil {
				return err
			}
			if len(failures) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no failures")
				return nil
			}
			for _, f := range failures {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tstep=%s\tattempts=%d\tat=%s\t%s\n", f.SessionID, f.TaskID, f.Step, f.Attempts, f.FailedAt.Format(time.RFC3339), f.Error)
			}
			return nil
		},
	})

	finalize.AddCommand(&cobra.Command{
		Use:   "retry <session-id>",
		Short: "Re-run finalization for a failed session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.FinalizeCLI.Retry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %s finalized, %d reviews scheduled\n", out.SessionID, out.ReviewsScheduled)
			return nil
		},
	})
	return finalize
}

func newFocusCmd(flags *globalFlags) *cobra.Command {
	focus := &cobra.Command{Use: "focus", Short: "Focus mode policy"}

	var strict bool
	var allow []string
	packages := &cobra.Command{
		Use:   "packages",
		Short: "Print the apps a session would allow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			if !cmd.Flags().Changed("strict") {
				strict = app.Config.Focus.StrictMode
			}
			additional := append(append([]string(nil), app.Config.Focus.Allowed...), allow...)
			for _, pkg := range app.FocusCLI.Packages(cmd.Context(), strict, additional) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), pkg)
			}
			return nil
		},
	}
	packages.Flags().BoolVar(&strict, "strict", false, "strict mode (no launchers)")
	packages.Flags().StringSliceVar(&allow, "allow", nil, "additional allowed packages")

	focus.AddCommand(packages)
	return focus
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags.configFile
			if path == "" {
				path = filepath.Join(flags.dataDir, config.FileName)
			}
			if err := config.WriteFile(path, config.Default(flags.dataDir), force); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "data_dir: %s\nstorage: %s %s\ntimer: %d/%d/%d min x%d, long break every %d, auto_loop=%t\nfocus: enabled=%t strict=%t allowed=%v\nreview: enabled=%t premium=%t offsets=%v\n",
				cfg.DataDir, cfg.Storage.Driver, cfg.Storage.DSN,
				cfg.Timer.WorkMinutes, cfg.Timer.ShortBreakMinutes, cfg.Timer.LongBreakMinutes, cfg.Timer.Cycles, cfg.Timer.LongBreakInterval, cfg.Timer.AutoLoop,
				cfg.Focus.Enabled, cfg.Focus.StrictMode, cfg.Focus.Allowed,
				cfg.Review.Enabled, cfg.Review.Premium, cfg.Review.Offsets,
			)
			return nil
		},
	}

	cfgCmd.AddCommand(initCmd, show)
	return cfgCmd
}

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Log, cmd.ErrOrStderr())
			conn, err := db.Open(cmd.Context(), cfg.Storage.Driver, cfg.Storage.DSN)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := db.Migrate(cmd.Context(), conn, cfg.Storage.Driver, logger); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
