// cmd/readlex/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-telegram/bot"

	"github.com/readlex/readlex/pkg/config"
	"github.com/readlex/readlex/pkg/db"
	"github.com/readlex/readlex/pkg/extract"
	"github.com/readlex/readlex/pkg/logger"
	"github.com/readlex/readlex/pkg/reminders"
	"github.com/readlex/readlex/pkg/server"
	"github.com/readlex/readlex/pkg/study"
	"github.com/readlex/readlex/pkg/translate"
)

func main() {
	if err := config.LoadConfig("config.json"); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}

	if err := db.InitDB(config.AppConfig.Database); err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	store := db.NewStore(db.DB)
	fetcher := extract.NewPageFetcher(30 * time.Second)
	translator := translate.NewAggregator(
		translate.DefaultProviders(config.AppConfig.Translation),
		time.Duration(config.AppConfig.Translation.TimeoutSeconds)*time.Second,
	)
	session := study.NewSession(store, fetcher, translator)

	if config.AppConfig.Telegram.Token != "" && config.AppConfig.Telegram.ChatID != 0 {
		b, err := bot.New(config.AppConfig.Telegram.Token)
		if err != nil {
			logger.Error("failed to create telegram bot", "error", err)
			os.Exit(1)
		}
		notifier := reminders.NewNotifier(store, &reminders.TelegramSender{Bot: b}, config.AppConfig.Telegram.ChatID)
		go notifier.Run(ctx)
		logger.Info("review reminders enabled", "chat_id", config.AppConfig.Telegram.ChatID)
	}

	srv := &http.Server{
		Addr:    config.AppConfig.Server.ListenAddr,
		Handler: server.NewHandler(session).Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("Starting server...", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
