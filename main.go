package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	telego "github.com/mymmrac/telego"

	appBot "github.com/OleksandrShchur/FindIFBot/bot"
	"github.com/OleksandrShchur/FindIFBot/internal/auth"
	"github.com/OleksandrShchur/FindIFBot/internal/config"
	"github.com/OleksandrShchur/FindIFBot/internal/database"
	"github.com/OleksandrShchur/FindIFBot/internal/dispatch"
	"github.com/OleksandrShchur/FindIFBot/internal/locales"
	"github.com/OleksandrShchur/FindIFBot/internal/moderation"
	"github.com/OleksandrShchur/FindIFBot/internal/session"
	"github.com/OleksandrShchur/FindIFBot/internal/submission"
	"github.com/OleksandrShchur/FindIFBot/pkg/telegoapi"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize localization bundle
	locales.Init(cfg.DefaultLanguage)

	// Initialize Sentry (if DSN is provided)
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	// Audit logging is optional and falls back to no-ops when MongoDB
	// is not configured.
	var postLogger database.PostLogger = database.NewNopLogger()
	var actionLogger database.UserActionLogger = database.NewNopLogger()
	if cfg.MongoDBURI != "" {
		client, db, err := database.ConnectDB(cfg)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal(err)
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Printf("Error disconnecting from MongoDB: %v", err)
				sentry.CaptureException(err)
			} else {
				log.Println("Disconnected from MongoDB.")
			}
		}()
		mongoLogger := database.NewMongoLogger(db)
		postLogger = mongoLogger
		actionLogger = mongoLogger
	}

	// Creating context for application lifecycle
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Bot Initialization ---
	var bot *telego.Bot
	if cfg.Debug {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultDebugLogger())
	} else {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultLogger(false, false))
	}
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create telego bot: %v", err)
	}

	updatesChan, err := bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to start long polling: %v", err)
	}

	adminChecker, err := auth.NewAdminChecker(cfg.AdminID)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create admin checker: %v", err)
	}

	sessions := session.NewStore()
	submissions := submission.NewStore()

	workflow, err := moderation.NewWorkflow(moderation.Deps{
		Bot:          telegoapi.Wrap(bot),
		Submissions:  submissions,
		AdminChecker: adminChecker,
		AdminID:      cfg.AdminID,
		ChannelID:    cfg.ChannelID,
		ChannelLink:  cfg.ChannelLink,
		PostLogger:   postLogger,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}

	dispatcher, err := dispatch.NewDispatcher(dispatch.Deps{
		Bot:          telegoapi.Wrap(bot),
		Sessions:     sessions,
		Submissions:  submissions,
		Workflow:     workflow,
		ActionLogger: actionLogger,
		Debug:        cfg.Debug,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}

	if err := dispatcher.SetupCommands(ctx); err != nil {
		log.Printf("Failed to register bot commands: %v", err)
		sentry.CaptureException(err)
	}

	app, err := appBot.New(appBot.Deps{
		UpdatesChan: updatesChan,
		Dispatcher:  dispatcher,
		Debug:       cfg.Debug,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}

	go app.Start(ctx)

	// Wait for context cancellation (e.g., SIGINT, SIGTERM)
	<-ctx.Done()

	log.Println("Shutting down bot...")
	app.Stop()

	log.Println("Bot shutdown complete.")
}
