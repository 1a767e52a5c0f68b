package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studyflow/studyflow/internal/api"
	"github.com/studyflow/studyflow/internal/config"
	"github.com/studyflow/studyflow/internal/db"
	"github.com/studyflow/studyflow/internal/jobs"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/reminder"
	"github.com/studyflow/studyflow/internal/repository/sqldb"
	"github.com/studyflow/studyflow/internal/services"
	"github.com/studyflow/studyflow/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("StudyFlow Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("timezone=%s", cfg.Timezone)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("worker_count=%d", cfg.WorkerCount)
	log.Debug("worker_queue_size=%d", cfg.WorkerQueueSize)
	log.Debug("reminder_interval=%s", cfg.ReminderInterval)
	log.Debug("reminder_window=%02d-%02d", cfg.ReminderStartHour, cfg.ReminderEndHour)

	database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	loc := cfg.Location()

	userRepo := sqldb.NewUserRepository(database)
	tokenRepo := sqldb.NewTokenRepository(database)
	subjectRepo := sqldb.NewSubjectRepository(database)
	sessionRepo := sqldb.NewSessionRepository(database)
	reviewRepo := sqldb.NewReviewRepository(database)

	authService := services.NewAuthService(userRepo, tokenRepo, cfg.TokenTTL)

	srv := &api.Server{
		AuthService:    authService,
		UserService:    services.NewUserService(userRepo),
		SubjectService: services.NewSubjectService(subjectRepo),
		SessionService: services.NewSessionService(sessionRepo, subjectRepo),
		ReviewService:  services.NewReviewService(reviewRepo, subjectRepo, loc),
		StatsService:   services.NewStatsService(sessionRepo, subjectRepo, reviewRepo, loc),
		DB:             database,
		Location:       loc,
	}

	var notifier worker.Notifier = reminder.LogNotifier{}
	if cfg.TelegramBotToken != "" {
		tg, err := reminder.NewTelegramNotifier(cfg.TelegramBotToken)
		if err != nil {
			log.Warn("telegram disabled, falling back to log reminders: %v", err)
		} else {
			notifier = tg
		}
	}

	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	queue := jobs.NewWorkerQueue(pool, notifier, authService)
	scheduler := reminder.New(reminder.Config{
		Interval:  cfg.ReminderInterval,
		StartHour: cfg.ReminderStartHour,
		EndHour:   cfg.ReminderEndHour,
		Location:  loc,
	}, userRepo, queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	if err := scheduler.Start(ctx); err != nil {
		log.Error("failed to start scheduler: %v", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping scheduler")
	scheduler.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping worker pool")
	pool.Stop()

	log.Info("===========================================")
	log.Info("StudyFlow Server Stopped")
	log.Info("===========================================")
}
