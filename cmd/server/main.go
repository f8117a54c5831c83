// Command server runs the SmartTime HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smarttime/smarttime-api/internal/cache"
	"github.com/smarttime/smarttime-api/internal/config"
	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/job"
	"github.com/smarttime/smarttime-api/internal/parsing"
	"github.com/smarttime/smarttime-api/internal/platform/gemini"
	"github.com/smarttime/smarttime-api/internal/platform/logger"
	"github.com/smarttime/smarttime-api/internal/platform/scheduler"
	"github.com/smarttime/smarttime-api/internal/platform/sqlite"
	"github.com/smarttime/smarttime-api/internal/schedule"
	"github.com/smarttime/smarttime-api/internal/service"
	"github.com/smarttime/smarttime-api/internal/service/auth"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApplication(ctx, cfg, log)
	if err != nil {
		return err
	}

	return app.serve(ctx)
}

// application holds the wired dependencies for the HTTP server.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	tasks     *service.TaskService
	schedule  *service.ScheduleService
	reminders *service.ReminderService
	verifier  auth.CredentialVerifier
	queue     *job.Queue
	scheduler *scheduler.Scheduler
}

func buildApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	taskStore := sqlite.NewTaskStore(db, log)

	jwtVerifier, err := auth.NewJWTVerifier(cfg.Auth, log)
	if err != nil {
		return nil, fmt.Errorf("create token verifier: %w", err)
	}
	verifier := auth.NewCachedVerifier(
		jwtVerifier,
		time.Duration(cfg.Auth.VerificationCacheTTLSeconds)*time.Second,
		cfg.Cache.MaxEntries,
	)

	var extractor parsing.Extractor
	var matcher parsing.Matcher
	if cfg.LLM.GeminiAPIKey != "" {
		ex, err := gemini.NewExtractor(ctx, log, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("create extractor: %w", err)
		}
		extractor = ex
		matcher = ex
	} else {
		log.Warn("no Gemini API key configured, text extraction and matching use the keyword parser only")
	}

	listCache := cache.New[[]*domain.Task](
		time.Duration(cfg.Cache.TaskTTLSeconds)*time.Second,
		cache.WithMaxEntries[[]*domain.Task](cfg.Cache.MaxEntries),
	)
	slotCache := cache.New[[]domain.TimeSlot](
		time.Duration(cfg.Cache.ScheduleTTLSeconds)*time.Second,
		cache.WithMaxEntries[[]domain.TimeSlot](cfg.Cache.MaxEntries),
	)
	extractCache := cache.New[parsing.Result](
		time.Duration(cfg.Cache.ExtractionTTLSeconds)*time.Second,
		cache.WithMaxEntries[parsing.Result](cfg.Cache.MaxEntries),
	)

	tasks := service.NewTaskService(taskStore, extractor, listCache, log,
		service.WithInvalidators(slotCache),
		service.WithExtractCache(extractCache),
		service.WithMatcher(matcher))
	scheduleSvc := service.NewScheduleService(taskStore, tasks, schedule.NewRecommender(), slotCache, log)
	reminders := service.NewReminderService(taskStore, log,
		service.WithReminderInvalidators(listCache, slotCache))

	queue := job.NewQueue(job.QueueConfig{
		WorkerCount: cfg.Jobs.WorkerCount,
		QueueSize:   cfg.Jobs.QueueSize,
	}, log)

	sched := scheduler.New(time.UTC, log)
	if _, err := sched.Add("reminder-scan", cfg.Reminder.ScanCron, func() {
		if _, err := reminders.Scan(context.Background()); err != nil {
			log.Error("reminder scan failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule reminder scan: %w", err)
	}

	retention := time.Duration(cfg.Jobs.RetentionMinutes) * time.Minute
	if _, err := sched.Add("job-cleanup", cfg.Reminder.CleanupCron, func() {
		queue.Cleanup(retention)
	}); err != nil {
		return nil, fmt.Errorf("schedule job cleanup: %w", err)
	}

	return &application{
		config:    cfg,
		logger:    log,
		tasks:     tasks,
		schedule:  scheduleSvc,
		reminders: reminders,
		verifier:  verifier,
		queue:     queue,
		scheduler: sched,
	}, nil
}

// serve starts the background workers and the HTTP server, blocking until
// ctx is cancelled, then shuts everything down in order.
func (app *application) serve(ctx context.Context) error {
	app.queue.Start()
	app.scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
	}

	app.scheduler.Stop()
	app.queue.Stop()

	app.logger.Info("shutdown complete")
	return nil
}
