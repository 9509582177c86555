package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionsStarted counts sessions accepted by the timer engine
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studyfocus_sessions_started_total",
			Help: "Total number of study sessions started",
		},
	)

	// SessionsFinished counts terminal transitions by outcome (completed, interrupted, recovered)
	SessionsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyfocus_sessions_finished_total",
			Help: "Total number of study sessions that reached a terminal state",
		},
		[]string{"outcome"},
	)

	// PhaseTransitions counts phases entered by the timer engine
	PhaseTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyfocus_phase_transitions_total",
			Help: "Total number of timer phases entered",
		},
		[]string{"phase"},
	)

	// ActiveSession is 1 while a session is running or paused
	ActiveSession = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studyfocus_active_session",
			Help: "Whether a study session is currently active",
		},
	)

	// FinalizeDuration tracks how long one finalize pipeline run takes
	FinalizeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studyfocus_finalize_duration_seconds",
			Help:    "Finalize pipeline latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// FinalizeFailures counts failed finalize runs by the step that failed
	FinalizeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyfocus_finalize_failures_total",
			Help: "Total number of finalize failures",
		},
		[]string{"step"},
	)

	// ReviewsScheduled counts review records written by the finalizer
	ReviewsScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studyfocus_reviews_scheduled_total",
			Help: "Total number of review records scheduled",
		},
	)

	// FocusRedirects counts foreground apps that were pushed back to the study app
	FocusRedirects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studyfocus_focus_redirects_total",
			Help: "Total number of focus redirects",
		},
	)
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
