package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/flow"
	"github.com/RomaniumSSS/My-first-project/internal/genai"
	"github.com/RomaniumSSS/My-first-project/internal/messaging"
	"github.com/RomaniumSSS/My-first-project/internal/models"
	"github.com/RomaniumSSS/My-first-project/internal/store"
	"github.com/RomaniumSSS/My-first-project/internal/twiliowhatsapp"
	"github.com/RomaniumSSS/My-first-project/internal/util"
	"github.com/RomaniumSSS/My-first-project/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for coach bot state data
	DefaultStateDir = "/var/lib/coachbot"
	// DefaultDBFileName is the default SQLite database filename for bot data
	DefaultDBFileName = "coachbot.db"
	// DefaultWhatsAppDBFileName is the default SQLite filename for the
	// whatsmeow session store
	DefaultWhatsAppDBFileName = "whatsmeow.db"
	// DefaultWebhookAddr is the default listen address for the Twilio webhook
	DefaultWebhookAddr = ":8080"
	// TransportWhatsApp selects the whatsmeow transport
	TransportWhatsApp = "whatsapp"
	// TransportTwilio selects the Twilio WhatsApp API transport
	TransportTwilio = "twilio"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	slog.Info("Bootstrapping coach bot with configured modules")
	slog.Debug("Final configuration",
		"transport", *flags.transport,
		"state_dir", *flags.stateDir,
		"dsn_set", *flags.dbDSN != "",
		"allowlist_entries", len(config.Allowlist))
	if err := run(config, flags); err != nil {
		slog.Error("Coach bot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Coach bot exited successfully")
}

// Config holds environment configuration
type Config struct {
	Transport   string
	DatabaseURL string
	WhatsAppDSN string
	StateDir    string
	MediaDir    string
	OpenAIKey   string
	OpenAIModel string
	WebhookAddr string
	NumericCode bool
	Allowlist   []string
}

// Flags holds command line flag values
type Flags struct {
	qrOutput    *string
	numeric     *bool
	transport   *string
	stateDir    *string
	dbDSN       *string
	waDSN       *string
	mediaDir    *string
	openaiKey   *string
	openaiModel *string
	webhookAddr *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		Transport:   os.Getenv("COACHBOT_TRANSPORT"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		WhatsAppDSN: os.Getenv("WHATSAPP_DB_DSN"),
		StateDir:    os.Getenv("COACHBOT_STATE_DIR"),
		MediaDir:    os.Getenv("COACHBOT_MEDIA_DIR"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: os.Getenv("OPENAI_MODEL"),
		WebhookAddr: os.Getenv("WEBHOOK_ADDR"),
		NumericCode: util.ParseBoolEnv("WHATSAPP_NUMERIC_CODE", false),
		Allowlist:   util.ParseListEnv("COACHBOT_ALLOWLIST"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No COACHBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	} else {
		slog.Debug("COACHBOT_STATE_DIR found in environment", "state_dir", config.StateDir)
	}

	if config.Transport == "" {
		config.Transport = TransportWhatsApp
	}
	if config.WebhookAddr == "" {
		config.WebhookAddr = DefaultWebhookAddr
	}

	// If no database URLs are provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No DATABASE_URL provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = filepath.Join(config.StateDir, DefaultWhatsAppDBFileName)
		slog.Debug("No WHATSAPP_DB_DSN provided, defaulting to SQLite", "sqlite_path", config.WhatsAppDSN)
	}
	if config.MediaDir == "" {
		config.MediaDir = filepath.Join(config.StateDir, "media")
	}

	slog.Debug("environment variables loaded",
		"COACHBOT_TRANSPORT", config.Transport,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDSN != "",
		"COACHBOT_STATE_DIR", config.StateDir,
		"COACHBOT_MEDIA_DIR", config.MediaDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"WEBHOOK_ADDR", config.WebhookAddr,
		"WHATSAPP_NUMERIC_CODE", config.NumericCode,
		"ALLOWLIST_ENTRIES", len(config.Allowlist))

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:    flag.String("qr-output", "", "path to write login QR code"),
		numeric:     flag.Bool("numeric-code", config.NumericCode, "use numeric login code instead of QR code (overrides $WHATSAPP_NUMERIC_CODE)"),
		transport:   flag.String("transport", config.Transport, "message transport, whatsapp or twilio (overrides $COACHBOT_TRANSPORT)"),
		stateDir:    flag.String("state-dir", config.StateDir, "state directory for coach bot data (overrides $COACHBOT_STATE_DIR)"),
		dbDSN:       flag.String("db-dsn", config.DatabaseURL, "database DSN for the bot store (overrides $DATABASE_URL)"),
		waDSN:       flag.String("wa-db-dsn", config.WhatsAppDSN, "database DSN for the WhatsApp session store (overrides $WHATSAPP_DB_DSN)"),
		mediaDir:    flag.String("media-dir", config.MediaDir, "directory of animation media files (overrides $COACHBOT_MEDIA_DIR)"),
		openaiKey:   flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel: flag.String("openai-model", config.OpenAIModel, "OpenAI model name (overrides $OPENAI_MODEL)"),
		webhookAddr: flag.String("webhook-addr", config.WebhookAddr, "listen address for the Twilio webhook (overrides $WEBHOOK_ADDR)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"transport", *flags.transport,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"waDSN_set", *flags.waDSN != "",
		"mediaDir", *flags.mediaDir,
		"openaiKeySet", *flags.openaiKey != "",
		"webhookAddr", *flags.webhookAddr)

	// Follow a relocated state directory for DSNs still at their defaults
	if *flags.stateDir != config.StateDir {
		if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) {
			*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		}
		if *flags.waDSN == filepath.Join(config.StateDir, DefaultWhatsAppDBFileName) {
			*flags.waDSN = filepath.Join(*flags.stateDir, DefaultWhatsAppDBFileName)
		}
		if *flags.mediaDir == filepath.Join(config.StateDir, "media") {
			*flags.mediaDir = filepath.Join(*flags.stateDir, "media")
		}
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	for _, dsn := range []string{*flags.dbDSN, *flags.waDSN} {
		if store.DetectDSNType(dsn) == "postgres" {
			continue
		}
		dir := filepath.Dir(dsn)
		slog.Debug("Creating state directory for file-based database", "state_dir", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", dir)
			return err
		}
	}
	return nil
}

// buildWhatsAppOptions constructs WhatsApp configuration options
func buildWhatsAppOptions(flags Flags) []whatsapp.Option {
	var waOpts []whatsapp.Option
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	if *flags.waDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.waDSN))
	}
	return waOpts
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql")
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	}
	return storeOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.openaiModel != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.openaiModel))
	}
	return genaiOpts
}

// buildStore opens the bot store selected by the DSN.
func buildStore(flags Flags) (store.Store, error) {
	opts := buildStoreOptions(flags)
	if len(opts) == 0 {
		slog.Warn("No database DSN provided, using in-memory store; data is lost on restart")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		return store.NewPostgresStore(opts...)
	}
	return store.NewSQLiteStore(opts...)
}

// buildService creates the messaging transport selected by the transport flag.
func buildService(flags Flags) (messaging.Service, error) {
	switch *flags.transport {
	case TransportWhatsApp:
		waClient, err := whatsapp.NewClient(buildWhatsAppOptions(flags)...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize WhatsApp client: %w", err)
		}
		return messaging.NewWhatsAppService(waClient, *flags.mediaDir), nil
	case TransportTwilio:
		twClient, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Twilio client: %w", err)
		}
		return messaging.NewTwilioService(twClient), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", *flags.transport)
	}
}

// botCommands is the command catalogue registered with the transport.
func botCommands() []models.BotCommand {
	return []models.BotCommand{
		{Name: "start", Description: "Начать работу с ботом"},
		{Name: "menu", Description: "Главное меню"},
		{Name: "new_goal", Description: "Поставить новую цель"},
		{Name: "checkin", Description: "Отметить прогресс по цели"},
		{Name: "reflect", Description: "Вечерняя рефлексия"},
		{Name: "crisis", Description: "Мне сейчас тяжело"},
		{Name: "normal", Description: "Вернуться в обычный режим"},
		{Name: "skip", Description: "Пропустить текущий шаг"},
	}
}

// run wires the modules together and blocks until shutdown.
func run(config Config, flags Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := buildStore(flags)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			slog.Error("Failed to close store", "error", cerr)
		}
	}()

	ai, err := genai.NewClient(buildGenAIOptions(flags)...)
	if err != nil {
		return fmt.Errorf("failed to initialize GenAI client: %w", err)
	}

	svc, err := buildService(flags)
	if err != nil {
		return err
	}

	engine := flow.NewEngine(flow.Config{
		Store:     st,
		AI:        ai,
		Messenger: svc,
	})
	dispatcher := messaging.NewDispatcher(svc, engine, config.Allowlist)

	if err := svc.SetCommands(ctx, botCommands()); err != nil {
		slog.Warn("Failed to register bot commands", "error", err)
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start messaging service: %w", err)
	}

	// The Twilio transport receives inbound messages over HTTP.
	var webhookSrv *http.Server
	if twSvc, ok := svc.(*messaging.TwilioService); ok {
		mux := http.NewServeMux()
		mux.HandleFunc("/webhook", twSvc.WebhookHandler)
		webhookSrv = &http.Server{Addr: *flags.webhookAddr, Handler: mux}
		go func() {
			slog.Info("Twilio webhook server listening", "addr", webhookSrv.Addr)
			if serveErr := webhookSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				slog.Error("Webhook server failed", "error", serveErr)
				stop()
			}
		}()
	}

	slog.Info("Coach bot running", "transport", *flags.transport)
	runErr := dispatcher.Run(ctx)

	// Dispatcher has drained in-flight events; tear the transport down.
	if webhookSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := webhookSrv.Shutdown(shutdownCtx); serr != nil {
			slog.Error("Webhook server shutdown failed", "error", serr)
		}
	}
	if serr := svc.Stop(); serr != nil {
		slog.Error("Failed to stop messaging service", "error", serr)
	}
	return runErr
}
