package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"student_request_triage/internal/app"
	"student_request_triage/internal/domain/submission"
	domainTelegram "student_request_triage/internal/domain/telegram"
	"student_request_triage/internal/infra/config"
	idb "student_request_triage/internal/infra/database"
	"student_request_triage/internal/infra/gateway"
	"student_request_triage/internal/infra/httpapi"
	"student_request_triage/internal/infra/logger"
	"student_request_triage/internal/infra/scheduler"
	"student_request_triage/internal/infra/telegram"
)

func main() {
	fmt.Println("Student Request Triage Service starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithField("environment", cfg.Environment).Info("Configuration loaded")

	// Database connection and request repository (source-of-record).
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	log.Info("Database connection established")

	if err := idb.CreateSchema(db); err != nil {
		log.WithError(err).Fatal("Could not create database schema")
	}

	requestRepo := idb.NewPostgresRequestRepository(db)

	// Outbound webhook gateways.
	docClient := gateway.NewWebhookDocumentClient(cfg.DocumentWebhookURL)
	emailClient := gateway.NewWebhookEmailClient(cfg.EmailWebhookURL)

	pipeline := submission.NewPipeline(docClient, emailClient, cfg.SentDisplay, log.WithField("component", "pipeline"))

	// Optional ops notifications via Telegram.
	var notifier domainTelegram.Client
	if cfg.TelegramToken != "" {
		telebotNotifier, err := telegram.NewTelebotNotifier(cfg.TelegramToken)
		if err != nil {
			log.WithError(err).Fatal("Could not create Telegram notifier")
		}
		notifier = telebotNotifier
		log.Info("Telegram ops notifier enabled")
	}

	triageService := app.NewTriageService(requestRepo, pipeline, notifier, cfg.AdminTelegramID, log.WithField("component", "triage"))

	// Initial load of the request list.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := triageService.Refresh(loadCtx); err != nil {
		cancelLoad()
		log.WithError(err).Fatal("Could not load initial request list")
	}
	cancelLoad()

	refreshScheduler := scheduler.NewRefreshScheduler(triageService, log.WithField("component", "scheduler"), cfg.CronSpecRefresh)
	if err := refreshScheduler.Start(); err != nil {
		log.WithError(err).Fatal("Could not start refresh scheduler")
	}

	mux := http.NewServeMux()
	httpapi.NewHandler(triageService, log.WithField("component", "httpapi")).Register(mux)

	server := &http.Server{
		Addr:    cfg.HTTPListenAddr,
		Handler: mux,
	}

	go func() {
		log.WithField("addr", cfg.HTTPListenAddr).Info("HTTP API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	refreshScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	log.Info("Application shut down gracefully")
}
