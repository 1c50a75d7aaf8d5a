package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aryanma11ick/Neura/internal/assistant"
	"github.com/aryanma11ick/Neura/internal/config"
	"github.com/aryanma11ick/Neura/internal/database"
	"github.com/aryanma11ick/Neura/internal/extract"
	"github.com/aryanma11ick/Neura/internal/gcal"
	"github.com/aryanma11ick/Neura/internal/intent"
	"github.com/aryanma11ick/Neura/internal/llm"
	"github.com/aryanma11ick/Neura/internal/reminder"
	"github.com/aryanma11ick/Neura/internal/server"
	"github.com/aryanma11ick/Neura/internal/timeparse"
	"github.com/aryanma11ick/Neura/internal/whatsapp"
)

func main() {
	cfg := config.LoadFromEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		fatal("creating logger", err)
	}
	defer logger.Sync()

	if cfg.GroqAPIKey == "" {
		logger.Warn("GROQ_API_KEY not set, intent routing falls back to keywords and chat uses canned replies")
	}

	loc, ok := timeparse.ResolveLocation(cfg.Timezone)
	if !ok {
		logger.Warn("unknown timezone, falling back to UTC", zap.String("timezone", cfg.Timezone))
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		fatal("creating database", err)
	}
	defer db.Close()

	oauthConfig, err := gcal.LoadOAuthConfig(cfg.GoogleCredentialsFile, cfg.BaseURL+"/oauth/callback")
	if err != nil {
		fatal("loading google credentials", err)
	}

	llmClient := llm.NewClient(cfg.GroqAPIKey, cfg.LLMBaseURL, cfg.Model, logger)

	handler := whatsapp.NewHandler(logger)
	waClient, err := whatsapp.NewClient(handler, cfg.WhatsAppDBPath, logger)
	if err != nil {
		fatal("creating whatsapp client", err)
	}
	if err := waClient.Connect(context.Background()); err != nil {
		fatal("connecting to whatsapp", err)
	}

	calendar := gcal.NewClient(oauthConfig, cfg.Timezone, loc, cfg.CalendarTimeout, logger)
	reminders := reminder.NewScheduler(waClient, logger)

	proc := assistant.NewProcessor(assistant.ProcessorConfig{
		DB:           db,
		Calendar:     calendar,
		Classifier:   intent.NewClassifier(llmClient, cfg.LLMTimeout, logger),
		Extractor:    extract.NewExtractor(llmClient, cfg.LLMTemperature, cfg.LLMTimeout, logger),
		Completer:    llmClient,
		Sender:       waClient,
		Reminders:    reminders,
		MsgChan:      handler.MessageChan(),
		Logger:       logger,
		Location:     loc,
		BaseURL:      cfg.BaseURL,
		ReminderLead: time.Duration(cfg.ReminderLeadMin) * time.Minute,
		ChatTimeout:  cfg.LLMTimeout,
	})
	proc.Start()

	digest := assistant.NewDigest(proc, loc, logger)
	if cfg.DigestCron != "" {
		if err := digest.Start(cfg.DigestCron); err != nil {
			logger.Warn("failed to schedule daily digest", zap.Error(err))
		}
	}

	srv := server.New(server.Config{
		DB:          db,
		OAuthConfig: oauthConfig,
		States:      server.NewStateCache(),
		Notifier:    waClient,
		Logger:      logger,
		Port:        cfg.HTTPPort,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	waitForShutdown(logger, proc, digest, reminders, srv, waClient)
}

func waitForShutdown(logger *zap.Logger, proc *assistant.Processor, digest *assistant.Digest, reminders *reminder.Scheduler, srv *server.Server, waClient *whatsapp.Client) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}
	digest.Stop()
	proc.Stop()
	reminders.Stop()
	waClient.Disconnect()
}

func fatal(action string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", action, err)
	os.Exit(1)
}
