package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime"
	"sync/atomic"
	"time"
)

// Lifecycle owns graceful HTTP shutdown around an *http.Server, adapted
// from the teacher's App type: readiness flip on SIGINT/SIGTERM, a short
// pre-shutdown delay, and a bounded drain window before a forced close.
type Lifecycle struct {
	preShutdownDelay time.Duration
	shutdownTimeout  time.Duration
	shuttingDown     atomic.Bool
	log              *slog.Logger
}

type LifecycleOption func(*Lifecycle)

func WithPreShutdownDelay(d time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		if d >= 0 {
			l.preShutdownDelay = d
		}
	}
}

func WithShutdownTimeout(d time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		if d > 0 {
			l.shutdownTimeout = d
		}
	}
}

func WithLifecycleLogger(log *slog.Logger) LifecycleOption {
	return func(l *Lifecycle) { l.log = log }
}

func NewLifecycle(opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		preShutdownDelay: time.Second,
		shutdownTimeout:  15 * time.Second,
		log:              slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// HealthzHandler reports 200 while serving and 503 once shutdown begins.
func (l *Lifecycle) HealthzHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if l.shuttingDown.Load() {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
}

// Listen starts srv and blocks until SIGINT/SIGTERM triggers a graceful
// drain (platform dispatch in lifecycle_unix.go / lifecycle_windows.go).
func (l *Lifecycle) Listen(srv *http.Server) error {
	return l.serveWithSignals(srv, func() error { return srv.ListenAndServe() })
}

// ServeContext runs serveFn until ctx is canceled, then drains srv within
// the configured shutdown timeout, force-closing if the drain overruns.
func (l *Lifecycle) ServeContext(ctx context.Context, srv *http.Server, serveFn func() error) error {
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	srv.BaseContext = func(net.Listener) context.Context { return baseCtx }

	log := l.log.With("addr", srv.Addr, "pid", os.Getpid(), "go_version", runtime.Version())
	log.Info("server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := serveFn(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server start failed", "error", err)
		}
		return err

	case <-ctx.Done():
		start := time.Now()
		l.shuttingDown.Store(true)
		log.Info("shutdown initiated")

		if l.preShutdownDelay > 0 {
			time.Sleep(l.preShutdownDelay)
		}

		drainCtx, cancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(drainCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("graceful shutdown incomplete", "error", err)
			srv.Close()
			cancelBase()
		} else {
			cancelBase()
		}

		if err := <-errCh; err != nil {
			log.Error("server exit error after shutdown", "error", err)
			return err
		}
		log.Info("server stopped gracefully", "duration", time.Since(start))
		return nil
	}
}
