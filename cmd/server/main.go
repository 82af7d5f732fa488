package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/sheetlease/command"
	"github.com/example/sheetlease/lease"
	"github.com/example/sheetlease/logger"
	"github.com/example/sheetlease/notify"
	"github.com/example/sheetlease/server"
	"github.com/example/sheetlease/store"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to a YAML server config file")
		listenAddr    = flag.String("listen", "", "HTTP listen address (overrides config)")
		token         = flag.String("token", os.Getenv("SLACK_TOKEN"), "slash command verification token")
		spreadsheetID = flag.String("spreadsheet", os.Getenv("SPREADSHEET_ID"), "Google Sheets spreadsheet ID (empty runs the in-memory store)")
		sheetName     = flag.String("sheet", store.DefaultSheetName, "sheet tab holding the connection rows")
		credsFile     = flag.String("credentials", os.Getenv("GOOGLE_CREDENTIALS_FILE"), "service account credentials JSON file")
		webhookURL    = flag.String("webhook", os.Getenv("SLACK_WEBHOOK_URL"), "webhook used to notify waiting users (empty disables notifications)")
		logLevel      = flag.String("log-level", "info", "minimum log level (debug, info, warn, error)")
	)
	flag.Parse()

	log := logger.NewStdLogger(*logLevel)

	if err := run(log, *configPath, *listenAddr, *token, *spreadsheetID, *sheetName, *credsFile, *webhookURL); err != nil {
		log.Fatalw("server exited", "error", err)
	}
}

func run(log logger.Logger, configPath, listenAddr, token, spreadsheetID, sheetName, credsFile, webhookURL string) error {
	cfg := server.DefaultConfig()
	if configPath != "" {
		loaded, err := server.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if listenAddr != "" {
		cfg.ListenAddress = listenAddr
	}
	if token != "" {
		cfg.VerificationToken = token
	}

	rowStore, err := buildStore(spreadsheetID, sheetName, credsFile, log)
	if err != nil {
		return err
	}

	notifier, err := buildNotifier(webhookURL, log)
	if err != nil {
		return err
	}

	repo := lease.NewRepository(rowStore, lease.DefaultStoreCallTimeout, log)
	coord := lease.NewCoordinator(repo,
		lease.WithLogger(log),
		lease.WithNotifier(notifier),
	)
	router := command.NewRouter(coord, log)

	srv, err := server.NewSlashServer(cfg, router, server.WithLogger(log))
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Infow("signal received, shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Std())
	defer cancel()
	return srv.Stop(ctx)
}

// buildStore picks the sheet-backed store when a spreadsheet is configured,
// the in-memory store otherwise (useful for local runs).
func buildStore(spreadsheetID, sheetName, credsFile string, log logger.Logger) (store.RowStore, error) {
	if spreadsheetID == "" {
		log.Infow("no spreadsheet configured, using in-memory store")
		return store.NewMemoryStore(), nil
	}

	if credsFile == "" {
		return nil, fmt.Errorf("a credentials file is required with a spreadsheet ID")
	}
	creds, err := os.ReadFile(credsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	svc, err := store.NewSheetsService(ctx, creds)
	if err != nil {
		return nil, err
	}
	return store.NewSheetStore(svc, spreadsheetID, sheetName, log)
}

func buildNotifier(webhookURL string, log logger.Logger) (notify.Notifier, error) {
	if webhookURL == "" {
		log.Warnw("no webhook configured, waiter notifications disabled")
		return notify.NewNoOpNotifier(), nil
	}
	return notify.NewSlackNotifier(webhookURL, nil, log)
}
