package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexcase_api_go/config"
	"lexcase_api_go/db"
	"lexcase_api_go/handlers"
	"lexcase_api_go/logger"
	"lexcase_api_go/middleware"
	"lexcase_api_go/models"
	"lexcase_api_go/services"
	"lexcase_api_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Environment)

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	mailer := services.NewMailer(cfg)
	h := handlers.New(cfg, db.DB, services.NewStorage(ctx, cfg), mailer, nil)

	loc, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		log.Warnf("Unknown SCHEDULER_TIMEZONE %q, using UTC", cfg.SchedulerTimezone)
		loc = time.UTC
	}
	poller := jobs.NewReminderPoller(db.DB, h.Notifications, h.Activity,
		jobs.WithSchedule(cfg.PollSchedule),
		jobs.WithLocation(loc),
		jobs.WithMailer(mailer, cfg.AppURL),
	)
	h.Poller = poller
	if cfg.PollerEnabled {
		if err := poller.Start(); err != nil {
			log.Fatalf("Failed to start reminder poller: %v", err)
		}
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.RequestMeta())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit("12M"))

	handlers.RegisterRoutes(e, h)

	go func() {
		log.Infof("Starting server on :%s (%s)", cfg.ServerPort, cfg.Environment)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	if err := poller.Stop(); err != nil && !errors.Is(err, jobs.ErrPollerStopped) {
		log.Warnf("Failed to stop reminder poller: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
}
