package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"journalbot/internal/ai"
	"journalbot/internal/conversation"
	"journalbot/internal/feedback"
	"journalbot/internal/graphviz"
	"journalbot/internal/input"
	"journalbot/internal/journal"
	"journalbot/internal/prompts"
	"journalbot/internal/telegram"
	"journalbot/internal/tokens"
	"journalbot/internal/users"
	"journalbot/pkg/config"
	"journalbot/pkg/db"

	"github.com/sirupsen/logrus"
)

func main() {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	cfg := config.LoadConfig()

	if err := cfg.EnsureDirs(); err != nil {
		logrus.Fatalf("Failed to create data directories: %v", err)
	}

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to the database: %v", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		logrus.Fatalf("Failed to ensure database schema: %v", err)
	}

	tracker, err := tokens.NewTracker(cfg.TokenUsageFile)
	if err != nil {
		logrus.Fatalf("Failed to initialize token tracker: %v", err)
	}

	aiService := ai.NewService(cfg, tracker)
	userRepo := users.NewRepository(database)
	userService := users.NewService(userRepo)
	feedbackRepo := feedback.NewRepository(database)
	journalRepo := journal.NewRepository(database)
	promptRepo := prompts.NewRepository(database)
	modeStore := conversation.NewStore()
	renderer := graphviz.NewRenderer(cfg.VisualizationsDir)

	if err := promptRepo.SeedStarterPrompts(context.Background()); err != nil {
		logrus.Errorf("Failed to seed starter prompts: %v", err)
	}

	telegramHandler, err := telegram.NewHandler(cfg, modeStore, userService, feedbackRepo, tracker, aiService)
	if err != nil {
		logrus.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	normalizer := input.NewNormalizer(aiService, telegramHandler, cfg.TempDir)
	pipeline := journal.NewPipeline(journalRepo, aiService, renderer, telegramHandler, cfg.HistoryLimit)
	telegramHandler.Attach(normalizer, pipeline)

	if err := telegramHandler.SetupWebhook(); err != nil {
		logrus.Fatalf("Failed to set up webhook: %v", err)
	}
	if err := telegramHandler.RegisterCommands(); err != nil {
		logrus.Errorf("Failed to register bot commands: %v", err)
	}

	scheduler := prompts.NewScheduler(userService, promptRepo, telegramHandler)
	if err := scheduler.Start(); err != nil {
		logrus.Fatalf("Failed to start daily prompt scheduler: %v", err)
	}
	defer scheduler.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", telegramHandler.HandleWebhook)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: mux,
	}

	go func() {
		logrus.Infof("Server started on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Failed to stop server: %v", err)
	}

	logrus.Info("Server stopped")
}
