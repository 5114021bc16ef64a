// Package server runs the local preview: it serves the generated output tree
// over HTTP and rebuilds the site when content changes on disk or on a
// configured schedule.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogbuilder/internal/buildlog"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/notify"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// Server serves the output directory and keeps it current.
type Server struct {
	cfg       *config.Config
	assembler *site.Assembler
	registry  *prom.Registry

	log      *buildlog.Log
	notifier *notify.Publisher

	mu           sync.Mutex
	fingerprints content.FingerprintSet
	lastOutcome  site.BuildOutcome
	building     bool
}

// New wires a Server from configuration. The assembler should already carry
// any drafts or output overrides.
func New(cfg *config.Config, assembler *site.Assembler) (*Server, error) {
	s := &Server{cfg: cfg, assembler: assembler}

	if cfg.Serve.Metrics {
		s.registry = prom.NewRegistry()
		assembler.SetRecorder(metrics.NewPrometheusRecorder(s.registry))
	}
	if cfg.Serve.HistoryDB != "" {
		l, err := buildlog.Open(cfg.Serve.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("open build history: %w", err)
		}
		s.log = l
	}
	if cfg.Notifications != nil && cfg.Notifications.NATS != nil {
		p, err := notify.NewPublisher(cfg.Notifications.NATS)
		if err != nil {
			return nil, err
		}
		s.notifier = p
	}
	return s, nil
}

// Run builds once, then serves and watches until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	defer s.cleanup()

	if err := s.rebuild(ctx, "startup"); err != nil {
		// Keep serving; the watcher may recover the build after an edit.
		slog.Error("initial build failed", logfields.Error(err))
	}

	httpServer := s.newHTTPServer()
	errCh := make(chan error, 1)
	go func() {
		slog.Info("preview server listening",
			slog.String("addr", s.cfg.Serve.Addr),
			logfields.Output(s.assembler.OutputDir()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stopWatch, err := s.startWatcher(ctx)
	if err != nil {
		slog.Warn("content watcher unavailable", logfields.Error(err))
	} else {
		defer stopWatch()
	}

	scheduler, err := s.startScheduler(ctx)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http server shutdown error", logfields.Error(err))
		}
		return nil
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Server) newHTTPServer() *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	if s.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}
	mux.Handle("/", http.FileServer(http.Dir(s.assembler.OutputDir())))

	return &http.Server{
		Addr:              s.cfg.Serve.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	outcome := s.lastOutcome
	s.mu.Unlock()

	if outcome == site.OutcomeFailed || outcome == "" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_, _ = fmt.Fprintf(w, "%s\n", outcome)
}

// startScheduler sets up the periodic rebuild that publishes posts whose date
// has passed since the last build.
func (s *Server) startScheduler(ctx context.Context) (gocron.Scheduler, error) {
	interval := s.cfg.Serve.RebuildInterval.Std()
	if interval <= 0 {
		return nil, nil
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := s.rebuild(ctx, "schedule"); err != nil {
				slog.Warn("scheduled rebuild failed", logfields.Error(err))
			}
		}),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return nil, fmt.Errorf("create periodic rebuild job: %w", err)
	}
	scheduler.Start()
	slog.Info("periodic rebuild enabled", slog.Duration("interval", interval))
	return scheduler, nil
}

// rebuild runs one build unless the content fingerprints are unchanged since
// the previous successful build. Scheduled rebuilds always run so that
// future-dated posts get published when their time comes.
func (s *Server) rebuild(ctx context.Context, reason string) error {
	s.mu.Lock()
	if s.building {
		s.mu.Unlock()
		return nil
	}
	s.building = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.building = false
		s.mu.Unlock()
	}()

	if reason == "watch" && s.unchanged() {
		slog.Debug("content unchanged, skipping rebuild")
		return nil
	}

	report, err := s.assembler.Build(ctx)
	s.mu.Lock()
	s.lastOutcome = report.Outcome
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.rememberFingerprints()

	summary := report.Summary()
	if s.log != nil {
		if lerr := s.log.Record(ctx, summary); lerr != nil {
			slog.Warn("failed to record build history", logfields.Error(lerr))
		}
	}
	if s.notifier != nil {
		if nerr := s.notifier.Publish(summary); nerr != nil {
			slog.Warn("failed to publish build summary", logfields.Error(nerr))
		}
	}
	return nil
}

// unchanged compares current content fingerprints against the last build.
func (s *Server) unchanged() bool {
	docs, err := s.assembler.Documents()
	if err != nil {
		return false
	}
	current := content.Fingerprints(docs)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fingerprints != nil && s.fingerprints.Equal(current)
}

func (s *Server) rememberFingerprints() {
	docs, err := s.assembler.Documents()
	if err != nil {
		return
	}
	current := content.Fingerprints(docs)
	s.mu.Lock()
	s.fingerprints = current
	s.mu.Unlock()
}

func (s *Server) cleanup() {
	if s.log != nil {
		_ = s.log.Close()
	}
	if s.notifier != nil {
		s.notifier.Close()
	}
}
